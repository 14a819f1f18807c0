// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package inference

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrBackendUnavailable is returned when the backend cannot be reached
	// or the circuit breaker is open.
	ErrBackendUnavailable = errors.New("inference backend unavailable")

	// ErrUnknownDataset is returned for dataset names the backend does not serve.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrNoInput is returned when a dataset run names neither a dataset nor a zip.
	ErrNoInput = errors.New("either a dataset name or a zip file is required")
)

// BackendError is a request the backend rejected.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("inference backend error (status %d): %s", e.StatusCode, e.Message)
}

// Named evaluation datasets served by the backend.
const (
	DatasetMNIST100          = "MNIST_100"
	DatasetMNIST500          = "MNIST_500"
	DatasetMNISTNoisy100     = "MNIST_NOISY_100"
	DatasetMNISTBlur100      = "MNIST_BLUR_100"
	DatasetMNISTNoisyBlur100 = "MNIST_NOISY_BLUR_100"

	// DatasetCustomZip is the dataset type the backend reports for zip uploads.
	DatasetCustomZip = "CUSTOM_ZIP"
)

// Dataset describes one named evaluation dataset.
type Dataset struct {
	Name        string `json:"name"`
	Images      int    `json:"images"`
	Description string `json:"description"`
}

var datasets = []Dataset{
	{DatasetMNIST100, 100, "First 100 MNIST test digits"},
	{DatasetMNIST500, 500, "First 500 MNIST test digits"},
	{DatasetMNISTNoisy100, 100, "100 test digits with Gaussian noise"},
	{DatasetMNISTBlur100, 100, "100 test digits with Gaussian blur"},
	{DatasetMNISTNoisyBlur100, 100, "100 test digits with noise and blur"},
}

// Datasets returns the named datasets in display order.
func Datasets() []Dataset {
	return slices.Clone(datasets)
}

// IsKnownDataset reports whether name is a dataset the backend serves.
func IsKnownDataset(name string) bool {
	return slices.ContainsFunc(datasets, func(d Dataset) bool { return d.Name == name })
}

// CanonicalModelID maps a backend model key to its canonical ID:
// "baseline_mnist.pth" becomes "baseline". Unrecognised keys pass through.
func CanonicalModelID(key string) string {
	id := strings.TrimSuffix(key, ".pth")
	id = strings.TrimSuffix(id, "_mnist")
	return id
}

// Metrics is a per-model metric document keyed by canonical model ID.
type Metrics map[string]map[string]any

func canonicalize(raw map[string]map[string]any) Metrics {
	out := make(Metrics, len(raw))
	for key, values := range raw {
		out[CanonicalModelID(key)] = values
	}
	return out
}

// RunResult is the outcome of a single-image run.
type RunResult struct {
	Models Metrics `json:"models"`
}

// DatasetRequest selects a named dataset or carries a zip upload.
type DatasetRequest struct {
	DatasetName string
	ZipFile     []byte
	ZipFileName string
}

// DatasetResult is the outcome of a dataset run.
type DatasetResult struct {
	DatasetType string  `json:"dataset_type"`
	NumImages   int     `json:"num_images"`
	Models      Metrics `json:"models"`
}

// Verdicts returned by Verify.
const (
	VerdictValid   = "VALID_TYPED_TEXT"
	VerdictInvalid = "INVALID_OR_AMBIGUOUS"
	VerdictError   = "ERROR"
)

// VerifyError marks a 1-based character position where the typed text and
// the recognised text differ.
type VerifyError struct {
	Position int `json:"position"`
}

// VerifyResult is the backend's comparison of typed text against an image.
type VerifyResult struct {
	Verdict     string        `json:"verdict"`
	FinalOutput *string       `json:"final_output"`
	Errors      []VerifyError `json:"errors"`
}

// HealthStatus is the backend health document.
type HealthStatus struct {
	Status      string `json:"status"`
	MNISTLoaded bool   `json:"mnist_loaded"`
}
