// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fincheck/internal/ranking"
)

// maxUnwrap bounds how many "data" wrappers loadDocument strips: the API
// envelope around a stored result around the model map.
const maxUnwrap = 2

// inputPath returns the results path argument, or "-" (stdin) when none
// was given.
func inputPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// readInput reads path, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseDocument accepts a bare model map, a {"data": ...} document, a stored
// result or an API envelope around one.
func parseDocument(raw []byte) (*ranking.Document, error) {
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("parse results document: %w", err)
	}

	for i := 0; i < maxUnwrap; i++ {
		inner, ok := top["data"].(map[string]any)
		if !ok {
			break
		}
		top = inner
		if _, nested := top["data"].(map[string]any); !nested {
			break
		}
	}

	doc := &ranking.Document{Data: make(map[string]map[string]any, len(top))}
	for model, v := range top {
		metrics, ok := v.(map[string]any)
		if !ok {
			// Envelope or result fields such as "id" or "status".
			continue
		}
		doc.Data[model] = metrics
	}
	return doc, nil
}

func loadDocument(path string, stdin io.Reader) (*ranking.Document, error) {
	raw, err := readInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseDocument(raw)
}

// analyze builds the full report, failing first under --strict.
func analyze(catalog *ranking.Catalog, doc *ranking.Document, opts *globalOptions) (ranking.Report, error) {
	rankOpts, err := opts.rankingOptions()
	if err != nil {
		return ranking.Report{}, err
	}
	if opts.strict {
		if _, err := catalog.NormalizeStrict(doc, opts.models); err != nil {
			return ranking.Report{}, err
		}
	}
	return catalog.Analyze(doc, opts.models, rankOpts), nil
}
