// Package memory provides an in-memory Store used by tests and cmd/simulate.
// It mirrors the SQLite store's contract under a single mutex, including the
// atomic insert-if-absent and the guaranteed-special compare-and-swap.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/store"
)

// Store is a concurrency-safe in-memory weather store.
type Store struct {
	mu       sync.RWMutex
	readings map[string]domain.WeatherReading
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{readings: make(map[string]domain.WeatherReading)}
}

func key(v domain.Village, periodStart time.Time) string {
	return fmt.Sprintf("%s|%d", v, periodStart.UTC().UnixMilli())
}

// CreateIfAbsent implements store.Store.
func (s *Store) CreateIfAbsent(ctx context.Context, r domain.WeatherReading) (domain.WeatherReading, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.WeatherReading{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(r.Village, r.PeriodStart)
	if existing, ok := s.readings[k]; ok {
		return existing, false, nil
	}
	s.readings[k] = r
	return r, true, nil
}

// FindForPeriod implements store.Store.
func (s *Store) FindForPeriod(ctx context.Context, v domain.Village, start, end time.Time, onlyPosted bool) (domain.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return domain.WeatherReading{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.readings {
		if r.Village != v {
			continue
		}
		if r.PeriodStart.Before(start) || !r.PeriodStart.Before(end) {
			continue
		}
		if onlyPosted && !r.Posted {
			continue
		}
		return r, nil
	}
	return domain.WeatherReading{}, store.ErrNotFound
}

// RecentBefore implements store.Store.
func (s *Store) RecentBefore(ctx context.Context, v domain.Village, before time.Time, limit int) ([]domain.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.WeatherReading
	for _, r := range s.readings {
		if r.Village == v && r.PeriodStart.Before(before) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodStart.After(out[j].PeriodStart)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetGuaranteedSpecial implements store.Store. The check and the write
// happen under one lock, matching the SQLite store's single conditional
// update.
func (s *Store) SetGuaranteedSpecial(ctx context.Context, v domain.Village, periodStart time.Time, sp domain.Special) (domain.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return domain.WeatherReading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(v, periodStart)
	r, ok := s.readings[k]
	if !ok {
		return domain.WeatherReading{}, store.ErrNotFound
	}
	if r.Special.Guaranteed() {
		return domain.WeatherReading{}, &store.SpecialConflictError{
			Village:     v,
			PeriodStart: periodStart,
			Existing:    r.Special.Label,
		}
	}

	sp.Probability = domain.GuaranteedProbability
	r.Special = &sp
	s.readings[k] = r
	return r, nil
}

// MarkPosted implements store.Store.
func (s *Store) MarkPosted(ctx context.Context, v domain.Village, periodStart time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(v, periodStart)
	r, ok := s.readings[k]
	if !ok {
		return store.ErrNotFound
	}
	r.Posted = true
	s.readings[k] = r
	return nil
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}
