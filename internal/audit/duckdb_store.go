// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/fincheck/internal/metrics"
)

const auditTable = "audit_events"

// DuckDBStore implements Store on the audit_events table. The table is
// created by the database migrations.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a DuckDB-backed audit store.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// Save persists an audit event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) (err error) {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	defer observe("INSERT", time.Now(), &err)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, timestamp, type, outcome, actor, source_ip, user_agent, resource, reason, request_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), string(event.Outcome), event.Actor,
		nullIfEmpty(event.SourceIP), nullIfEmpty(event.UserAgent), nullIfEmpty(event.Resource),
		nullIfEmpty(event.Reason), nullIfEmpty(event.RequestID))
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query returns events matching the filter, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) (_ []Event, err error) {
	defer observe("SELECT", time.Now(), &err)

	where, args := buildConditions(filter)
	query := `SELECT id, timestamp, type, outcome, actor, source_ip, user_agent, resource, reason, request_id
		FROM audit_events` + where + ` ORDER BY timestamp DESC, id`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e                                          Event
			eventType, outcome                         string
			sourceIP, userAgent, resource, reason, rid sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &eventType, &outcome, &e.Actor,
			&sourceIP, &userAgent, &resource, &reason, &rid); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Type, e.Outcome = EventType(eventType), Outcome(outcome)
		e.SourceIP, e.UserAgent, e.Resource = sourceIP.String, userAgent.String, resource.String
		e.Reason, e.RequestID = reason.String, rid.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (n int64, err error) {
	defer observe("SELECT", time.Now(), &err)

	where, args := buildConditions(filter)
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

// Delete removes events older than the cutoff.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (_ int64, err error) {
	defer observe("DELETE", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

// buildConditions turns a filter into a WHERE clause with placeholders.
func buildConditions(filter QueryFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, "type IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Actor != "" {
		conditions = append(conditions, "actor = ?")
		args = append(args, filter.Actor)
	}
	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordDBQuery(operation, auditTable, time.Since(start), *err)
}
