// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/tomtom215/fincheck/internal/logging"
)

// EventType categorizes audit events.
type EventType string

const (
	EventSignUp       EventType = "auth.sign_up"
	EventSignIn       EventType = "auth.sign_in"
	EventSignOut      EventType = "auth.sign_out"
	EventAdminCreated EventType = "user.admin_bootstrap"
	EventAdminAccess  EventType = "admin.access"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Outcome   Outcome   `json:"outcome"`

	// Actor is the username the event concerns. For a failed sign-in it is
	// the name that was tried.
	Actor string `json:"actor"`

	SourceIP  string `json:"source_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Resource  string `json:"resource,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewEvent starts an event; ID and Timestamp are filled in by Logger.Log.
func NewEvent(eventType EventType, outcome Outcome, actor string) *Event {
	return &Event{Type: eventType, Outcome: outcome, Actor: actor}
}

// WithRequest copies the client address, user agent, request path and
// request ID from r.
func (e *Event) WithRequest(r *http.Request) *Event {
	e.SourceIP = clientIP(r.RemoteAddr)
	e.UserAgent = r.UserAgent()
	if e.Resource == "" {
		e.Resource = r.Method + " " + r.URL.Path
	}
	e.RequestID = logging.RequestIDFromContext(r.Context())
	return e
}

// WithReason records why an action failed.
func (e *Event) WithReason(reason string) *Event {
	e.Reason = reason
	return e
}

// clientIP strips the port from a RemoteAddr. chi's RealIP middleware has
// already replaced it with the forwarded address when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
