// Package store defines the persistence boundary for weather readings.
//
// Implementations must provide an atomic insert-if-absent keyed on
// (village, period start) — a plain check-then-insert at the application
// level is a known race — and a linearizable conditional update for the
// guaranteed-special sentinel.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rootsofthewild/village-weather/internal/domain"
)

// ErrNotFound is returned when no reading matches a lookup.
var ErrNotFound = errors.New("weather reading not found")

// SpecialConflictError reports that a guaranteed special is already
// scheduled for the targeted reading. It is an expected business condition
// surfaced to the caller, not a system fault.
type SpecialConflictError struct {
	Village     domain.Village
	PeriodStart time.Time
	Existing    string
}

func (e *SpecialConflictError) Error() string {
	return fmt.Sprintf("guaranteed special %q already scheduled for %s at %s",
		e.Existing, e.Village, e.PeriodStart.Format(time.RFC3339))
}

// Store persists weather readings. All operations honor the context
// deadline; timeouts surface as ordinary errors for the caller to retry.
type Store interface {
	// CreateIfAbsent atomically inserts r keyed on (village, period
	// start). When another writer got there first it re-fetches and
	// returns the existing reading with created=false; the uniqueness
	// race is recovered here, never surfaced as an error.
	CreateIfAbsent(ctx context.Context, r domain.WeatherReading) (reading domain.WeatherReading, created bool, err error)

	// FindForPeriod returns the reading whose period start falls in
	// [start, end). With onlyPosted set, unposted readings are excluded
	// even when otherwise in range. Returns ErrNotFound when absent.
	FindForPeriod(ctx context.Context, v domain.Village, start, end time.Time, onlyPosted bool) (domain.WeatherReading, error)

	// RecentBefore returns up to limit readings with period start before
	// the given instant, newest first. Feeds the history smoother.
	RecentBefore(ctx context.Context, v domain.Village, before time.Time, limit int) ([]domain.WeatherReading, error)

	// SetGuaranteedSpecial sets the guaranteed special on the reading for
	// (village, periodStart) in a single conditional update: it succeeds
	// when no special or a rolled (non-guaranteed) special is present,
	// and fails with *SpecialConflictError when the guaranteed sentinel
	// is already set. Returns ErrNotFound when the reading is absent.
	SetGuaranteedSpecial(ctx context.Context, v domain.Village, periodStart time.Time, sp domain.Special) (domain.WeatherReading, error)

	// MarkPosted flips the posted flag on an existing reading.
	MarkPosted(ctx context.Context, v domain.Village, periodStart time.Time) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
