// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/validation"
)

// Verify compares typed digits against the digits recognised in an image.
// Nothing is stored.
//
// POST /api/v1/verify (multipart fields "image" and "raw_text")
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	image, filename, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	if ct := http.DetectContentType(image); !strings.HasPrefix(ct, "image/") {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Uploaded file is not an image", nil)
		return
	}

	req := VerifyRequest{RawText: strings.TrimSpace(r.FormValue("raw_text"))}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	result, err := h.backend.Verify(r.Context(), image, filename, req.RawText)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("verdict", result.Verdict).
		Int("mismatches", len(result.Errors)).
		Msg("Verification completed")
	respondSuccess(w, r, http.StatusOK, result)
}
