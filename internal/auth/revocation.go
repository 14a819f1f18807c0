// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/metrics"
)

// ErrRevocationStoreClosed indicates the store has been closed.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// RevocationStore remembers revoked token IDs until their expiry.
type RevocationStore interface {
	// Revoke marks jti as revoked until expiresAt. Revoking an already
	// expired token is a no-op.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether jti has been revoked and not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Close releases resources.
	Close() error
}

// NewRevocationStore builds the store selected by configuration.
func NewRevocationStore(cfg *config.SecurityConfig) (RevocationStore, error) {
	switch cfg.RevocationStore {
	case "memory":
		return NewMemoryRevocationStore(), nil
	case "badger", "":
		return OpenBadgerRevocationStore(cfg.RevocationStorePath, false)
	default:
		return nil, fmt.Errorf("unknown revocation store %q", cfg.RevocationStore)
	}
}

// MemoryRevocationStore is an in-process store; entries are lost on restart.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	closed  bool
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke implements RevocationStore.
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRevocationStoreClosed
	}

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}

	// Expired entries are dropped lazily on write.
	for id, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, id)
		}
	}
	s.entries[jti] = expiresAt
	return nil
}

// IsRevoked implements RevocationStore.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrRevocationStoreClosed
	}
	exp, ok := s.entries[jti]
	return ok && exp.After(s.now()), nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close implements RevocationStore.
func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// revokedKeyPrefix namespaces revocation keys in badger.
const revokedKeyPrefix = "revoked_jti:"

// BadgerRevocationStore persists revocations in BadgerDB. Entries carry a
// TTL so badger drops them once the token would have expired anyway.
type BadgerRevocationStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenBadgerRevocationStore opens (or creates) a store at path. inMemory
// keeps everything in RAM and ignores path.
func OpenBadgerRevocationStore(path string, inMemory bool) (*BadgerRevocationStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open revocation store: %w", err)
	}

	logging.Info().Str("path", path).Bool("in_memory", inMemory).Msg("Token revocation store opened")
	return &BadgerRevocationStore{db: db}, nil
}

func revokedKey(jti string) []byte {
	return []byte(revokedKeyPrefix + jti)
}

// Revoke implements RevocationStore.
func (s *BadgerRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrRevocationStoreClosed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	value, err := expiresAt.UTC().MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode expiry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(revokedKey(jti), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements RevocationStore.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrRevocationStoreClosed
	}

	revoked := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(revokedKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// Badger hides expired items; the stored expiry is a second check
		// against clock granularity.
		return item.Value(func(val []byte) error {
			var exp time.Time
			if err := exp.UnmarshalBinary(val); err != nil {
				return err
			}
			revoked = time.Now().Before(exp)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// RunValueLogGC reclaims value log space. Called periodically by the
// supervisor; badger.ErrNoRewrite means there was nothing to do.
func (s *BadgerRevocationStore) RunValueLogGC(discardRatio float64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrRevocationStoreClosed
	}

	err := s.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close implements RevocationStore.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// RevokeClaims revokes the token described by claims and records the metric.
func RevokeClaims(ctx context.Context, store RevocationStore, claims *Claims) error {
	if claims == nil || claims.TokenID() == "" {
		return fmt.Errorf("%w: token has no id", ErrInvalidToken)
	}
	if err := store.Revoke(ctx, claims.TokenID(), claims.Expiry()); err != nil {
		return err
	}
	metrics.RecordTokenRevoked()
	return nil
}
