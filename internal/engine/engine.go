// Package engine orchestrates the weather simulation: read-through
// generation of the current period's reading, posted-visibility gating, and
// guaranteed-special scheduling against the next period.
package engine

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/observability"
	"github.com/rootsofthewild/village-weather/internal/store"
)

// Options tunes an Engine. Zero values fall back to defaults.
type Options struct {
	Clock         clockwork.Clock // defaults to the real clock
	Rand          domain.Rand     // defaults to a seeded, mutex-guarded PRNG
	Timezone *time.Location // defaults to domain.DefaultTimezone

	// CutoverHour is the reference-local hour at which the weather day
	// rolls over. Zero means unset and falls back to
	// domain.DefaultCutoverHour; a midnight cutover is deliberately not
	// configurable (config validation bounds it to 1..23 as well).
	CutoverHour int
	SpecialChance float64         // defaults to domain.DefaultSpecialChance
	StoreTimeout  time.Duration   // per-operation bound, defaults to 5s
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

// Engine generates, reads, and schedules weather readings. Each village is
// independent; same-period creation races are resolved entirely by the
// store's atomic insert-if-absent, so multiple engines may share one store.
type Engine struct {
	store         store.Store
	catalog       domain.Catalog
	clock         clockwork.Clock
	rng           domain.Rand
	loc           *time.Location
	cutoverHour   int
	specialChance float64
	storeTimeout  time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// New creates an Engine over the given store and catalog.
func New(st store.Store, catalog domain.Catalog, opts Options) (*Engine, error) {
	if st == nil {
		return nil, errors.New("engine: store is required")
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("engine: %w", domain.ErrNoCandidates)
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = newLockedRand()
	}
	if opts.Timezone == nil {
		loc, err := time.LoadLocation(domain.DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("engine: load timezone: %w", err)
		}
		opts.Timezone = loc
	}
	if opts.CutoverHour == 0 {
		opts.CutoverHour = domain.DefaultCutoverHour
	}
	if opts.SpecialChance == 0 {
		opts.SpecialChance = domain.DefaultSpecialChance
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}

	return &Engine{
		store:         st,
		catalog:       catalog,
		clock:         opts.Clock,
		rng:           opts.Rand,
		loc:           opts.Timezone,
		cutoverHour:   opts.CutoverHour,
		specialChance: opts.SpecialChance,
		storeTimeout:  opts.StoreTimeout,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}, nil
}

// PeriodBounds returns the period containing now. Pure utility for
// collaborators that align their own scheduling with the engine's windows.
func (e *Engine) PeriodBounds(now time.Time) (domain.Period, error) {
	return domain.PeriodAt(now, e.loc, e.cutoverHour)
}

// NextPeriodBounds returns the period after the one containing now.
func (e *Engine) NextPeriodBounds(now time.Time) (domain.Period, error) {
	return domain.NextPeriodAt(now, e.loc, e.cutoverHour)
}

// CurrentWeather returns the reading for the current period, generating and
// persisting it if absent. A pre-scheduled reading whose period has begun is
// marked posted on the way out: it is being surfaced now.
func (e *Engine) CurrentWeather(ctx context.Context, v domain.Village) (domain.WeatherReading, error) {
	period, err := e.PeriodBounds(e.clock.Now())
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("current weather %s: %w", v, err)
	}

	r, err := e.findForPeriod(ctx, v, period, false)
	switch {
	case err == nil:
		if !r.Posted {
			if err := e.markPosted(ctx, v, r.PeriodStart); err != nil {
				return domain.WeatherReading{}, fmt.Errorf("current weather %s: %w", v, err)
			}
			r.Posted = true
		}
		return r, nil
	case errors.Is(err, store.ErrNotFound):
		return e.generateForPeriod(ctx, v, period, true)
	default:
		return domain.WeatherReading{}, fmt.Errorf("current weather %s: %w", v, err)
	}
}

// PostedWeather returns the current period's reading only if it has been
// surfaced to end users. Pre-scheduled, not-yet-active readings are never
// returned; absence is store.ErrNotFound.
func (e *Engine) PostedWeather(ctx context.Context, v domain.Village) (domain.WeatherReading, error) {
	period, err := e.PeriodBounds(e.clock.Now())
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("posted weather %s: %w", v, err)
	}
	return e.findForPeriod(ctx, v, period, true)
}

// ScheduleGuaranteedSpecial injects a guaranteed special condition into the
// next period's reading, creating the baseline (unposted) reading first when
// none exists. It never touches the already-active period, so weather
// players have observed is never retroactively changed.
//
// A *store.SpecialConflictError reports an existing guaranteed special; a
// naturally rolled special is replaced without error.
func (e *Engine) ScheduleGuaranteedSpecial(ctx context.Context, v domain.Village, label string) (domain.WeatherReading, error) {
	next, err := e.NextPeriodBounds(e.clock.Now())
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("schedule special %s: %w", v, err)
	}

	season := domain.SeasonOn(next.Start)
	candidate, err := e.catalog.FindSpecial(v, season, label)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("schedule special %s: %w", v, err)
	}

	// Baseline reading for the next period, created unposted so it stays
	// invisible to current-weather reads until its period begins.
	if _, err := e.findForPeriod(ctx, v, next, false); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.WeatherReading{}, fmt.Errorf("schedule special %s: %w", v, err)
		}
		if _, err := e.generateForPeriod(ctx, v, next, false); err != nil {
			return domain.WeatherReading{}, err
		}
	}

	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	updated, err := e.store.SetGuaranteedSpecial(sctx, v, next.Start, domain.Special{
		Label:       candidate.Label,
		Symbol:      candidate.Symbol,
		Probability: domain.GuaranteedProbability,
	})
	if err != nil {
		var conflict *store.SpecialConflictError
		if errors.As(err, &conflict) {
			e.metrics.SchedulerCollisions.Inc()
			e.logger.Info("guaranteed special collision",
				"village", v, "requested", label, "existing", conflict.Existing)
		}
		return domain.WeatherReading{}, err
	}

	e.metrics.GuaranteedScheduled.WithLabelValues(string(v)).Inc()
	e.logger.Info("guaranteed special scheduled",
		"village", v, "label", label, "period_start", updated.PeriodStart)
	return updated, nil
}

// MarkPosted flips the posted flag on the reading for the given period
// start. Used by the announcement trigger once a reading has been surfaced.
func (e *Engine) MarkPosted(ctx context.Context, v domain.Village, periodStart time.Time) error {
	return e.markPosted(ctx, v, periodStart)
}

// CheckReadiness reports whether the store is reachable.
func (e *Engine) CheckReadiness(ctx context.Context) error {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	return e.store.Ping(sctx)
}

// Villages returns the villages the engine's catalog covers, in stable order.
func (e *Engine) Villages() []domain.Village {
	var out []domain.Village
	for _, v := range domain.Villages() {
		if _, ok := e.catalog[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (e *Engine) generateForPeriod(ctx context.Context, v domain.Village, period domain.Period, posted bool) (domain.WeatherReading, error) {
	start := e.clock.Now()

	season := domain.SeasonOn(period.Start)
	table, err := e.catalog.Table(v, season)
	if err != nil {
		return domain.WeatherReading{}, err
	}

	sctx, cancel := e.storeContext(ctx)
	history, err := e.store.RecentBefore(sctx, v, period.Start, 3)
	cancel()
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("load history %s: %w", v, err)
	}

	reading, err := domain.Generate(domain.GenerateInput{
		Village:       v,
		Period:        period,
		Season:        season,
		Table:         table,
		History:       history,
		SpecialChance: e.specialChance,
		Posted:        posted,
	}, e.rng)
	if err != nil {
		return domain.WeatherReading{}, err
	}

	sctx, cancel = e.storeContext(ctx)
	stored, created, err := e.store.CreateIfAbsent(sctx, reading)
	cancel()
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("persist reading %s: %w", v, err)
	}

	if created {
		e.metrics.ReadingsGenerated.WithLabelValues(string(v)).Inc()
		if stored.Special != nil && !stored.Special.Guaranteed() {
			e.metrics.SpecialsRolled.WithLabelValues(string(v)).Inc()
		}
		e.metrics.GenerationDuration.Observe(e.clock.Since(start).Seconds())
		e.logger.Info("weather generated",
			"village", v,
			"season", season,
			"period_start", stored.PeriodStart,
			"temperature", stored.Temperature.Label,
			"wind", stored.Wind.Label,
			"precipitation", stored.Precipitation.Label,
			"special", specialLabel(stored.Special),
		)
	} else {
		// Lost the creation race; the winner's reading is authoritative.
		e.metrics.InsertRaces.Inc()
		e.logger.Debug("creation race recovered", "village", v, "period_start", stored.PeriodStart)
	}
	return stored, nil
}

func (e *Engine) findForPeriod(ctx context.Context, v domain.Village, period domain.Period, onlyPosted bool) (domain.WeatherReading, error) {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	return e.store.FindForPeriod(sctx, v, period.Start, period.End, onlyPosted)
}

func (e *Engine) markPosted(ctx context.Context, v domain.Village, periodStart time.Time) error {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	return e.store.MarkPosted(sctx, v, periodStart)
}

func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.storeTimeout)
}

func specialLabel(sp *domain.Special) string {
	if sp == nil {
		return ""
	}
	return sp.Label
}

// lockedRand guards a PRNG for use from concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

func newLockedRand() *lockedRand {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// Extremely unlikely; fall back to a time-derived seed.
		binary.LittleEndian.PutUint64(seed[:8], uint64(time.Now().UnixNano()))
	}
	return &lockedRand{
		rng: mathrand.New(mathrand.NewPCG(
			binary.LittleEndian.Uint64(seed[:8]),
			binary.LittleEndian.Uint64(seed[8:]),
		)),
	}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}
