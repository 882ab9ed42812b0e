// Package storage is dayglow's persistence layer: a key/value store that never
// fails loudly, JSON helpers on top of it, and one-time migration of values
// written under legacy keys.
package storage

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/julianstephens/dayglow/internal/logger"
)

var (
	// ErrUnavailable is returned by backends that cannot be used in the current environment
	ErrUnavailable = errors.New("storage is unavailable")
	// ErrQuotaExceeded is returned by backends that refuse a write for lack of space
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Backend is a raw key/value store. Implementations report failures as errors;
// Store turns them into the degraded results callers rely on.
type Backend interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// KV is the storage capability the rest of dayglow depends on. Implementations
// never return errors: an unusable store reads as empty and rejects writes.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) bool
	Remove(key string) bool
}

// Store adapts a Backend to KV.
type Store struct {
	backend Backend
}

var _ KV = (*Store)(nil)

// New wraps backend. A nil backend yields a store where every read misses and
// every write is rejected.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	if s == nil || s.backend == nil {
		return "", false
	}
	value, ok, err := s.backend.GetItem(key)
	if err != nil {
		logger.Debug("Storage read failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// Set stores value under key and reports whether the write was accepted.
func (s *Store) Set(key, value string) bool {
	if s == nil || s.backend == nil {
		return false
	}
	if err := s.backend.SetItem(key, value); err != nil {
		logger.Debug("Storage write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key and reports whether the backend accepted the delete.
// Removing a missing key succeeds.
func (s *Store) Remove(key string) bool {
	if s == nil || s.backend == nil {
		return false
	}
	if err := s.backend.RemoveItem(key); err != nil {
		logger.Debug("Storage delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// Backend returns the wrapped backend, or nil.
func (s *Store) Backend() Backend {
	if s == nil {
		return nil
	}
	return s.backend
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// GetJSON decodes the JSON value stored under key. A missing or malformed
// value yields fallback.
func GetJSON[T any](kv KV, key string, fallback T) T {
	raw, ok := kv.Get(key)
	if !ok {
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.Debug("Discarding malformed JSON value", "key", key, "error", err)
		return fallback
	}
	return v
}

// SetJSON encodes value as JSON and stores it under key. It returns false
// when the value cannot be encoded or the write is rejected.
func SetJSON(kv KV, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Debug("Failed to encode JSON value", "key", key, "error", err)
		return false
	}
	return kv.Set(key, string(data))
}
