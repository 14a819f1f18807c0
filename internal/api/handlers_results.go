// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/inference"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/metrics"
	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/validation"
)

// multipartMemory is how much of a multipart body ParseMultipartForm keeps
// in memory before spilling to temp files.
const multipartMemory = 8 << 20

// StoredRun identifies a result created by an upload or dataset run.
type StoredRun struct {
	ID          string `json:"id"`
	DatasetType string `json:"dataset_type,omitempty"`
	NumImages   int    `json:"num_images"`
	Models      int    `json:"models"`
}

// DatasetRunResponse lists the results created by one dataset request, in
// request order.
type DatasetRunResponse struct {
	Results []StoredRun `json:"results"`
}

// caller returns the authenticated user's claims. Routes using it sit
// behind auth.Middleware.Authenticate.
func caller(r *http.Request) (*auth.Claims, bool) {
	return auth.ClaimsFromContext(r.Context())
}

// readUpload parses a multipart body capped at MaxUploadBytes and returns
// the named file. ok is false when a response has already been written.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, field string) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.respondUploadError(w, r, err)
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("multipart field %q is required", field), nil)
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		h.respondUploadError(w, r, err)
		return nil, "", false
	}
	if len(data) == 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("multipart field %q is empty", field), nil)
		return nil, "", false
	}
	return data, header.Filename, true
}

func (h *Handler) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
			fmt.Sprintf("Upload exceeds %d bytes", h.config.Server.MaxUploadBytes), nil)
		return
	}
	respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid multipart upload", err)
}

// storeRun persists backend metrics as a result owned by owner.
func (h *Handler) storeRun(ctx context.Context, owner, source, datasetType string, numImages int, data inference.Metrics) (StoredRun, error) {
	result := &models.ModelResult{
		Owner:       owner,
		Source:      source,
		DatasetType: datasetType,
		NumImages:   numImages,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := h.store.InsertResult(ctx, result)
	if err != nil {
		return StoredRun{}, fmt.Errorf("failed to store result: %w", err)
	}
	metrics.RecordResultStored(source)
	return StoredRun{ID: id, DatasetType: datasetType, NumImages: numImages, Models: len(data)}, nil
}

// Upload runs every model over one digit image and stores the metrics.
//
// POST /api/v1/upload (multipart field "image")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(r)
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	image, filename, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	if ct := http.DetectContentType(image); !strings.HasPrefix(ct, "image/") {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Uploaded file is not an image", nil)
		return
	}

	run, err := h.backend.Run(r.Context(), image, filename)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	stored, err := h.storeRun(r.Context(), claims.Username, models.SourceImage, "", 1, run.Models)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to store result", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("result_id", stored.ID).
		Int("models", stored.Models).
		Msg("Image result stored")
	respondSuccess(w, r, http.StatusCreated, stored)
}

// ListDatasets returns the named evaluation datasets.
//
// GET /api/v1/datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, inference.Datasets())
}

// DatasetsRun evaluates named datasets or an uploaded zip of digit images.
//
// POST /api/v1/datasets/run
//
//	application/json:     {"dataset_names":["MNIST_100","MNIST_BLUR_100"]}
//	multipart/form-data:  zip_file=<archive> or dataset_name=<name>
//
// Named datasets run concurrently, bounded by inference.max_concurrent_runs,
// and each one is stored as its own result.
func (h *Handler) DatasetsRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(r)
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")) //nolint:errcheck // empty type falls through to JSON
	if mediaType == "multipart/form-data" {
		h.datasetsRunMultipart(w, r, claims.Username)
		return
	}

	var req DatasetRunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	h.runNamedDatasets(w, r, claims.Username, req.DatasetNames)
}

func (h *Handler) datasetsRunMultipart(w http.ResponseWriter, r *http.Request, owner string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.respondUploadError(w, r, err)
		return
	}

	if name := r.FormValue("dataset_name"); name != "" {
		if _, _, err := r.FormFile("zip_file"); err == nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Send either zip_file or dataset_name, not both", nil)
			return
		}
		h.runNamedDatasets(w, r, owner, []string{name})
		return
	}

	file, header, err := r.FormFile("zip_file")
	if err != nil {
		respondServiceError(w, r, inference.ErrNoInput)
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(file)
	if err != nil {
		h.respondUploadError(w, r, err)
		return
	}
	if ct := http.DetectContentType(archive); ct != "application/zip" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "zip_file is not a zip archive", nil)
		return
	}

	result, err := h.backend.RunDataset(r.Context(), inference.DatasetRequest{
		ZipFile:     archive,
		ZipFileName: header.Filename,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	stored, err := h.storeRun(r.Context(), owner, models.SourceZip, result.DatasetType, result.NumImages, result.Models)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to store result", err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, DatasetRunResponse{Results: []StoredRun{stored}})
}

func (h *Handler) runNamedDatasets(w http.ResponseWriter, r *http.Request, owner string, names []string) {
	for _, name := range names {
		if !inference.IsKnownDataset(name) {
			respondServiceError(w, r, fmt.Errorf("%w: %s", inference.ErrUnknownDataset, name))
			return
		}
	}

	runs := make([]StoredRun, len(names))
	g, ctx := errgroup.WithContext(r.Context())
	if limit := h.config.Inference.MaxConcurrentRuns; limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range names {
		g.Go(func() error {
			result, err := h.backend.RunDataset(ctx, inference.DatasetRequest{DatasetName: name})
			if err != nil {
				return fmt.Errorf("dataset %s: %w", name, err)
			}
			stored, err := h.storeRun(ctx, owner, models.SourceDataset, result.DatasetType, result.NumImages, result.Models)
			if err != nil {
				return err
			}
			runs[i] = stored
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Strs("datasets", names).
		Msg("Dataset results stored")
	respondSuccess(w, r, http.StatusCreated, DatasetRunResponse{Results: runs})
}

// ListResults returns the caller's results, newest first. Admins may pass
// ?owner= to list another user's results, or omit it to list everyone's.
//
// GET /api/v1/results?limit=&offset=&owner=
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(r)
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	limit, err := getIntParam(r, "limit", h.config.Server.DefaultPageSize)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	offset, err := getIntParam(r, "offset", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	req := ListResultsRequest{
		Limit:  limit,
		Offset: offset,
		Owner:  r.URL.Query().Get("owner"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	req.Limit = h.pageBounds(req.Limit)

	owner := claims.Username
	if claims.Role == models.RoleAdmin {
		owner = req.Owner
	}

	start := time.Now()
	total, err := h.store.CountResults(r.Context(), owner)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to list results", err)
		return
	}
	items, err := h.store.ListResults(r.Context(), owner, req.Limit, req.Offset)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to list results", err)
		return
	}
	if items == nil {
		items = []models.ResultSummary{}
	}

	logging.Ctx(r.Context()).Debug().
		Int("count", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Listed results")
	respondPage(w, r, items, &models.PaginationInfo{
		Limit:      req.Limit,
		Offset:     req.Offset,
		TotalCount: total,
		HasMore:    req.Offset+len(items) < total,
	})
}

// loadResult fetches the result named by the {id} URL parameter. Results
// owned by someone else look the same as missing ones, except to admins.
func (h *Handler) loadResult(w http.ResponseWriter, r *http.Request) (*models.ModelResult, bool) {
	claims, ok := caller(r)
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return nil, false
	}

	result, err := h.store.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	if result.Owner != claims.Username && claims.Role != models.RoleAdmin {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Result not found", nil)
		return nil, false
	}
	return result, true
}

// GetResult returns one stored result document.
//
// GET /api/v1/results/{id}
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadResult(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, result)
}
