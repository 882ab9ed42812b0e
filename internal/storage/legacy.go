package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/logger"
)

// Legacy describes a canonical key and the keys older builds stored the same
// value under, in lookup priority order.
type Legacy[T any] struct {
	Key        string
	LegacyKeys []string
	// Parse converts the raw stored string. When nil, T must be string.
	Parse func(raw string) (T, error)
}

// ResolveLegacyValue reads l.Key, migrating from the legacy keys on first use.
//
// If the canonical key holds a value it wins. Otherwise the first legacy key
// holding a value is copied to the canonical key. In every case all legacy
// keys are deleted afterwards, so a second call never migrates again.
// The boolean is false when no value exists or the value does not parse.
func ResolveLegacyValue[T any](kv KV, l Legacy[T]) (T, bool) {
	if raw, ok := kv.Get(l.Key); ok {
		removeKeys(kv, l.LegacyKeys)
		return parseValue(l, raw)
	}

	for _, legacyKey := range l.LegacyKeys {
		raw, ok := kv.Get(legacyKey)
		if !ok {
			continue
		}
		if !kv.Set(l.Key, raw) {
			logger.Warn("Failed to persist migrated value", "key", l.Key, "legacy_key", legacyKey)
		}
		removeKeys(kv, l.LegacyKeys)
		return parseValue(l, raw)
	}

	removeKeys(kv, l.LegacyKeys)
	var zero T
	return zero, false
}

// ResolveLegacyJSON is ResolveLegacyValue for JSON values. Missing or
// malformed values yield fallback.
func ResolveLegacyJSON[T any](kv KV, key string, legacyKeys []string, fallback T) T {
	v, ok := ResolveLegacyValue(kv, Legacy[T]{
		Key:        key,
		LegacyKeys: legacyKeys,
		Parse: func(raw string) (T, error) {
			var v T
			err := json.Unmarshal([]byte(raw), &v)
			return v, err
		},
	})
	if !ok {
		return fallback
	}
	return v
}

// ResolveKey resolves a string value for one of the canonical keys in
// constants.LegacyKeys.
func ResolveKey(kv KV, key string) (string, bool) {
	return ResolveLegacyValue(kv, Legacy[string]{Key: key, LegacyKeys: constants.LegacyKeys[key]})
}

// MigrateLegacyKeys resolves every canonical key that has legacy aliases and
// returns how many values were moved from a legacy key.
func MigrateLegacyKeys(kv KV) int {
	keys := make([]string, 0, len(constants.LegacyKeys))
	for key := range constants.LegacyKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	migrated := 0
	for _, key := range keys {
		_, existed := kv.Get(key)
		if _, found := ResolveKey(kv, key); found && !existed {
			logger.Info("Migrated legacy key", "key", key)
			migrated++
		}
	}
	return migrated
}

func removeKeys(kv KV, keys []string) {
	for _, key := range keys {
		if !kv.Remove(key) {
			logger.Debug("Failed to remove legacy key", "key", key)
		}
	}
}

func parseValue[T any](l Legacy[T], raw string) (T, bool) {
	if l.Parse == nil {
		v, ok := any(raw).(T)
		if !ok {
			logger.Error("Legacy value has no parser", "key", l.Key, "type", fmt.Sprintf("%T", v))
		}
		return v, ok
	}
	v, err := l.Parse(raw)
	if err != nil {
		logger.Debug("Failed to parse stored value", "key", l.Key, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}
