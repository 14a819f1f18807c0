// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "test_table"))

	RecordDBQuery("SELECT", "test_table", 5*time.Millisecond, nil)
	RecordDBQuery("INSERT", "test_table", 5*time.Millisecond, errors.New("constraint"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "test_table"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
	if n := testutil.CollectAndCount(DBQueryDuration); n < 2 {
		t.Errorf("expected histogram series for both operations, got %d", n)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/api/v1/test", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordInference(t *testing.T) {
	ok := InferenceRequests.WithLabelValues("run_test", "ok")
	rejected := InferenceRequests.WithLabelValues("run_test", "rejected")
	okBefore, rejBefore := testutil.ToFloat64(ok), testutil.ToFloat64(rejected)

	RecordInference("run_test", "ok", time.Second)
	RecordInference("run_test", "rejected", 0)

	if testutil.ToFloat64(ok)-okBefore != 1 || testutil.ToFloat64(rejected)-rejBefore != 1 {
		t.Error("inference counters not incremented")
	}

	SetBreakerState(2)
	if testutil.ToFloat64(InferenceBreakerState) != 2 {
		t.Error("breaker gauge not set")
	}
	SetBreakerState(0)
}

func TestRecordRanking(t *testing.T) {
	reports := RankingsComputed.WithLabelValues("report")
	before, missingBefore := testutil.ToFloat64(reports), testutil.ToFloat64(RankingMissingValues)

	RecordRanking("report", 4)
	RecordRanking("report", 0)

	if testutil.ToFloat64(reports)-before != 2 {
		t.Error("rankings counter should count both calls")
	}
	if testutil.ToFloat64(RankingMissingValues)-missingBefore != 4 {
		t.Error("missing counter should add 4")
	}
}

func TestRecordAuthAttempt(t *testing.T) {
	success := AuthAttempts.WithLabelValues("sign_in", "success")
	failure := AuthAttempts.WithLabelValues("sign_in", "failure")
	s0, f0 := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	RecordAuthAttempt("sign_in", true)
	RecordAuthAttempt("sign_in", false)
	RecordAuthAttempt("sign_in", false)

	if testutil.ToFloat64(success)-s0 != 1 || testutil.ToFloat64(failure)-f0 != 2 {
		t.Error("auth attempt counters mismatch")
	}
}
