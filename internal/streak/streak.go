// Package streak decides which streak count the UI may show, gated on whether
// the user has logged today.
package streak

import (
	"time"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/storage"
)

// Resolver reads and writes the daily log marker.
type Resolver struct {
	kv  storage.KV
	now func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

func New(kv storage.KV, opts ...Option) *Resolver {
	r := &Resolver{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TodayKey returns the current date as YYYY-MM-DD.
//
// The date is taken in UTC, not the local calendar, so near local midnight it
// can name a different day than the user's clock does.
func (r *Resolver) TodayKey() string {
	return r.now().UTC().Format(constants.DateFormat)
}

// LastLogDate returns the persisted marker, migrating it from its legacy key
// on first read.
func (r *Resolver) LastLogDate() (string, bool) {
	return storage.ResolveKey(r.kv, constants.KeyLastLogDate)
}

// HasLoggedToday reports whether the marker equals TodayKey.
func (r *Resolver) HasLoggedToday() bool {
	last, ok := r.LastLogDate()
	return ok && last == r.TodayKey()
}

// DisplayedStreak returns raw once today is logged, and 0 before that so a
// stale server count never shows for a day that has not been confirmed.
func (r *Resolver) DisplayedStreak(raw int) int {
	if !r.HasLoggedToday() || raw < 0 {
		return 0
	}
	return raw
}

// MarkLoggedToday records today as logged.
func (r *Resolver) MarkLoggedToday() bool {
	return r.kv.Set(constants.KeyLastLogDate, r.TodayKey())
}
