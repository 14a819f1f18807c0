// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/fincheck/internal/models"
)

const resultColumns = `id, owner, source, dataset_type, num_images, data, created_at`

// InsertResult stores a result document. ID and CreatedAt are assigned when
// empty; the assigned ID is returned.
func (db *DB) InsertResult(ctx context.Context, result *models.ModelResult) (_ string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "model_results", start, err) }(time.Now())

	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	if result.Data == nil {
		result.Data = map[string]map[string]any{}
	}

	payload, err := json.Marshal(result.Data)
	if err != nil {
		return "", fmt.Errorf("failed to encode result data: %w", err)
	}

	var datasetType sql.NullString
	if result.DatasetType != "" {
		datasetType = sql.NullString{String: result.DatasetType, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO model_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.Owner, result.Source, datasetType, result.NumImages, string(payload), result.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert result: %w", err)
	}
	return result.ID, nil
}

// GetResult returns one stored result or ErrNotFound.
func (db *DB) GetResult(ctx context.Context, id string) (_ *models.ModelResult, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "model_results", start, err) }(time.Now())

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM model_results WHERE id = ?`, id)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

// ListResults returns result summaries newest first. An empty owner lists
// every owner's results.
func (db *DB) ListResults(ctx context.Context, owner string, limit, offset int) (_ []models.ResultSummary, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "model_results", start, err) }(time.Now())

	query := `SELECT ` + resultColumns + ` FROM model_results`
	args := make([]any, 0, 3)
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ResultSummary, 0, limit)
	for rows.Next() {
		result, scanErr := scanResult(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan result: %w", scanErr)
		}
		summaries = append(summaries, result.Summary())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return summaries, nil
}

// CountResults counts stored results; an empty owner counts all.
func (db *DB) CountResults(ctx context.Context, owner string) (n int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "model_results", start, err) }(time.Now())

	query := `SELECT COUNT(*) FROM model_results`
	var args []any
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	if err = db.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*models.ModelResult, error) {
	var (
		r           models.ModelResult
		datasetType sql.NullString
		payload     string
	)
	if err := row.Scan(&r.ID, &r.Owner, &r.Source, &datasetType, &r.NumImages, &payload, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.DatasetType = datasetType.String
	if err := json.Unmarshal([]byte(payload), &r.Data); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", r.ID, err)
	}
	if r.Data == nil {
		r.Data = map[string]map[string]any{}
	}
	return &r, nil
}
