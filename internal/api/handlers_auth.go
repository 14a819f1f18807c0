// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/database"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/metrics"
	"github.com/tomtom215/fincheck/internal/models"
	"github.com/tomtom215/fincheck/internal/validation"
)

// invalidCredentialsMessage is the same for unknown users and wrong
// passwords so sign-in does not reveal which usernames exist.
const invalidCredentialsMessage = "Invalid username or password"

// SignInResponse is returned by a successful sign-in. The token is also set
// as an HttpOnly cookie.
type SignInResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserInfo describes the authenticated caller.
type UserInfo struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeTiming burns one bcrypt comparison for unknown usernames.
func (h *Handler) equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		hash, err := auth.HashPassword("fincheck-timing-equalizer", h.config.Security.BcryptCost)
		if err == nil {
			dummyHash = hash
		}
	})
	if dummyHash != "" {
		_ = auth.CheckPassword(dummyHash, password) //nolint:errcheck // result intentionally unused
	}
}

// SignUp creates a new account.
//
// POST /api/v1/auth/sign-up {"username","password"}
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordAuthAttempt("sign_up", false)
		respondValidation(w, r, verr)
		return
	}
	if problems := h.policy.Validate(req.Password, req.Username); len(problems) > 0 {
		metrics.RecordAuthAttempt("sign_up", false)
		respondErrorWithDetails(w, r, http.StatusBadRequest, ErrCodeValidation,
			"Password does not meet requirements",
			map[string]interface{}{"password": problems}, nil)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to create account", err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		metrics.RecordAuthAttempt("sign_up", false)
		if errors.Is(err, database.ErrUserExists) {
			h.recordAudit(r, audit.EventSignUp, audit.OutcomeFailure, req.Username, "username_taken")
			respondError(w, r, http.StatusConflict, ErrCodeUsernameTaken, "Username already taken", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to create account", err)
		return
	}

	metrics.RecordAuthAttempt("sign_up", true)
	h.recordAudit(r, audit.EventSignUp, audit.OutcomeSuccess, user.Username, "")
	logging.Ctx(r.Context()).Info().Str("username", user.Username).Msg("Account created")
	respondSuccess(w, r, http.StatusCreated, user)
}

// SignIn checks credentials and issues a token.
//
// POST /api/v1/auth/sign-in {"username","password"}
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	// Only presence is checked here; length rules apply at sign-up.
	if req.Username == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Username and password are required", nil)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to sign in", err)
			return
		}
		h.equalizeTiming(req.Password)
		metrics.RecordAuthAttempt("sign_in", false)
		h.recordAudit(r, audit.EventSignIn, audit.OutcomeFailure, req.Username, "unknown_user")
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, invalidCredentialsMessage, nil)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		metrics.RecordAuthAttempt("sign_in", false)
		h.recordAudit(r, audit.EventSignIn, audit.OutcomeFailure, req.Username, "invalid_password")
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Password comparison failed")
		}
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, invalidCredentialsMessage, nil)
		return
	}

	token, claims, err := h.jwtManager.GenerateToken(user.Username, user.Role)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to sign in", err)
		return
	}

	metrics.RecordAuthAttempt("sign_in", true)
	h.recordAudit(r, audit.EventSignIn, audit.OutcomeSuccess, user.Username, "")
	auth.SetTokenCookie(w, token, claims.Expiry(), h.config.Security.CookieSecure)
	logging.Ctx(r.Context()).Info().Str("username", user.Username).Msg("User signed in")

	respondSuccess(w, r, http.StatusOK, SignInResponse{
		Token:     token,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: claims.Expiry(),
	})
}

// SignOut revokes the caller's token and clears the cookie.
//
// POST /api/v1/auth/sign-out (authenticated)
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	if err := auth.RevokeClaims(r.Context(), h.revocations, claims); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to sign out", err)
		return
	}

	auth.ClearTokenCookie(w, h.config.Security.CookieSecure)
	h.recordAudit(r, audit.EventSignOut, audit.OutcomeSuccess, claims.Username, "")
	logging.Ctx(r.Context()).Info().Str("username", claims.Username).Msg("User signed out")
	respondSuccess(w, r, http.StatusOK, map[string]bool{"signed_out": true})
}

// Me returns the caller's identity.
//
// GET /api/v1/auth/me (authenticated)
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, UserInfo{
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.Expiry(),
	})
}
