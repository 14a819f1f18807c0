// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/metrics"
)

// maxResponseBytes bounds backend response bodies.
const maxResponseBytes = 8 << 20

const breakerName = "inference-backend"

// Client calls the inference backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.InferenceConfig) *Client {
	return newClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

func newClient(cfg *config.InferenceConfig, httpClient *http.Client) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	metrics.SetBreakerState(stateToInt(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening inference circuit breaker")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.SetBreakerState(stateToInt(to))
		},
		IsSuccessful: isBreakerSuccess,
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
	}
}

// isBreakerSuccess keeps caller-side problems from tripping the breaker:
// rejected input and cancelled requests say nothing about backend health.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode < http.StatusInternalServerError
	}
	return false
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

// Run posts one image and returns per-model metrics.
func (c *Client) Run(ctx context.Context, image []byte, filename string) (*RunResult, error) {
	body, contentType, err := buildMultipart(nil, filePart{field: "image", name: filename, data: image})
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, "run", http.MethodPost, "/run", body, contentType)
	if err != nil {
		return nil, err
	}

	var models map[string]map[string]any
	if err := decode(raw, &models); err != nil {
		return nil, err
	}
	return &RunResult{Models: canonicalize(models)}, nil
}

// RunDataset runs every model over a named dataset or an uploaded zip.
func (c *Client) RunDataset(ctx context.Context, req DatasetRequest) (*DatasetResult, error) {
	var (
		fields map[string]string
		files  []filePart
	)
	switch {
	case len(req.ZipFile) > 0:
		name := req.ZipFileName
		if name == "" {
			name = "dataset.zip"
		}
		files = append(files, filePart{field: "zip_file", name: name, data: req.ZipFile})
	case req.DatasetName != "":
		if !IsKnownDataset(req.DatasetName) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, req.DatasetName)
		}
		fields = map[string]string{"dataset_name": req.DatasetName}
	default:
		return nil, ErrNoInput
	}

	body, contentType, err := buildMultipart(fields, files...)
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, "run_dataset", http.MethodPost, "/run-dataset", body, contentType)
	if err != nil {
		return nil, err
	}

	var resp struct {
		DatasetType string                    `json:"dataset_type"`
		NumImages   int                       `json:"num_images"`
		Models      map[string]map[string]any `json:"models"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	return &DatasetResult{
		DatasetType: resp.DatasetType,
		NumImages:   resp.NumImages,
		Models:      canonicalize(resp.Models),
	}, nil
}

// Verify compares typed text with the digits recognised in image.
func (c *Client) Verify(ctx context.Context, image []byte, filename, rawText string) (*VerifyResult, error) {
	body, contentType, err := buildMultipart(
		map[string]string{"raw_text": rawText},
		filePart{field: "image", name: filename, data: image},
	)
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, "verify", http.MethodPost, "/verify", body, contentType)
	if err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := decode(raw, &result); err != nil {
		return nil, err
	}
	if result.Errors == nil {
		result.Errors = []VerifyError{}
	}
	return &result, nil
}

// Health fetches the backend health document.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	raw, err := c.do(ctx, "health", http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}

	var status HealthStatus
	if err := decode(raw, &status); err != nil {
		return nil, err
	}
	if status.Status != "ok" {
		return &status, fmt.Errorf("%w: status %q", ErrBackendUnavailable, status.Status)
	}
	return &status, nil
}

// do throttles, then sends one request through the circuit breaker and
// returns the response body.
func (c *Client) do(ctx context.Context, operation, method, path string, body []byte, contentType string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordInference(operation, "rejected", 0)
		return nil, fmt.Errorf("inference rate limit: %w", err)
	}

	start := time.Now()
	raw, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, body, contentType)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordInference(operation, "rejected", 0)
		logging.Ctx(ctx).Warn().Str("operation", operation).Msg("Inference request rejected by circuit breaker")
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	case err != nil:
		metrics.RecordInference(operation, "error", time.Since(start))
		return nil, err
	}

	metrics.RecordInference(operation, "ok", time.Since(start))
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrBackendUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable,
			&BackendError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)})
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}

	// The backend reports bad input as 200 {"error": "..."}.
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}
	return raw, nil
}

// errorMessage extracts "error" or "detail" from an error body.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != nil {
			return fmt.Sprint(body.Detail)
		}
	}
	return fallback
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	return nil
}

type filePart struct {
	field string
	name  string
	data  []byte
}

func buildMultipart(fields map[string]string, files ...filePart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		name := f.name
		if name == "" {
			name = f.field
		}
		part, err := w.CreateFormFile(f.field, name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// stateToInt converts circuit breaker state to the gauge value.
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
