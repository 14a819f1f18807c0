// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeService fails the first failures calls to Serve, then runs until
// its context is canceled.
type fakeService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *fakeService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) String() string { return s.name }
