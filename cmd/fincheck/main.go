// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

// Command fincheck ranks a stored results document offline, without the
// server or the inference backend.
//
//	fincheck report result.json
//	fincheck rank --metric latency_ms --format table result.json
//	fincheck recommend --policy weighted result.json
//	curl -s .../api/v1/results/ID | fincheck report --strict -
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tomtom215/fincheck/internal/ranking"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitError       = 2 // usage, I/O or parse failure
	ExitMissingData = 3 // --strict and the document has gaps
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ranking.ErrMissingMetricData) {
			os.Exit(ExitMissingData)
		}
		os.Exit(ExitError)
	}
}
