// Package sqlite provides the durable SQLite-backed weather store.
//
// Race-free creation relies on the (village, period_start) primary key plus
// INSERT ... ON CONFLICT DO NOTHING; the guaranteed-special check-then-set
// is a single conditional UPDATE guarded on the sentinel, so both contested
// operations are atomic at the database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/store"
	"github.com/rootsofthewild/village-weather/internal/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists weather readings in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite store at path and applies
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	// modernc.org/sqlite only understands _pragma=name(value) parameters;
	// WAL keeps readers unblocked and the busy timeout makes concurrent
	// writers queue instead of failing with SQLITE_BUSY.
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

const readingColumns = `village, period_start, season,
	temp_label, temp_symbol, temp_value, temp_probability,
	wind_label, wind_symbol, wind_value, wind_probability,
	precip_label, precip_symbol, precip_probability,
	special_label, special_symbol, special_probability,
	posted, created_at`

// CreateIfAbsent implements store.Store. The conflict target is the
// composite primary key; a lost race returns the winner's row.
func (s *Store) CreateIfAbsent(ctx context.Context, r domain.WeatherReading) (domain.WeatherReading, bool, error) {
	var specialLabel, specialSymbol, specialProbability sql.NullString
	if r.Special != nil {
		specialLabel = sql.NullString{String: r.Special.Label, Valid: true}
		specialSymbol = sql.NullString{String: r.Special.Symbol, Valid: true}
		specialProbability = sql.NullString{String: r.Special.Probability, Valid: true}
	}

	res, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO weather_readings (`+readingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (village, period_start) DO NOTHING`,
		string(r.Village), toMillis(r.PeriodStart), string(r.Season),
		r.Temperature.Label, r.Temperature.Symbol, r.Temperature.Value, r.Temperature.Probability,
		r.Wind.Label, r.Wind.Symbol, r.Wind.Value, r.Wind.Probability,
		r.Precipitation.Label, r.Precipitation.Symbol, r.Precipitation.Probability,
		specialLabel, specialSymbol, specialProbability,
		boolToInt(r.Posted), toMillis(r.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.findByKey(ctx, r.Village, r.PeriodStart)
			if ferr != nil {
				return domain.WeatherReading{}, false, ferr
			}
			return existing, false, nil
		}
		return domain.WeatherReading{}, false, fmt.Errorf("insert weather reading: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WeatherReading{}, false, fmt.Errorf("insert weather reading: %w", err)
	}
	if affected == 0 {
		existing, err := s.findByKey(ctx, r.Village, r.PeriodStart)
		if err != nil {
			return domain.WeatherReading{}, false, err
		}
		return existing, false, nil
	}
	return r, true, nil
}

// FindForPeriod implements store.Store.
func (s *Store) FindForPeriod(ctx context.Context, v domain.Village, start, end time.Time, onlyPosted bool) (domain.WeatherReading, error) {
	query := `SELECT ` + readingColumns + `
		FROM weather_readings
		WHERE village = ? AND period_start >= ? AND period_start < ?`
	args := []any{string(v), toMillis(start), toMillis(end)}
	if onlyPosted {
		query += ` AND posted = 1`
	}
	query += ` ORDER BY period_start DESC LIMIT 1`

	row := s.sqlDB.QueryRowContext(ctx, query, args...)
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeatherReading{}, store.ErrNotFound
	}
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("find weather reading: %w", err)
	}
	return r, nil
}

// RecentBefore implements store.Store.
func (s *Store) RecentBefore(ctx context.Context, v domain.Village, before time.Time, limit int) ([]domain.WeatherReading, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM weather_readings
		WHERE village = ? AND period_start < ?
		ORDER BY period_start DESC
		LIMIT ?`,
		string(v), toMillis(before), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent readings: %w", err)
	}
	defer rows.Close()

	var out []domain.WeatherReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent reading: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent readings: %w", err)
	}
	return out, nil
}

// SetGuaranteedSpecial implements store.Store. The guard on the sentinel
// lives in the WHERE clause so the check and the write are one statement.
func (s *Store) SetGuaranteedSpecial(ctx context.Context, v domain.Village, periodStart time.Time, sp domain.Special) (domain.WeatherReading, error) {
	res, err := s.sqlDB.ExecContext(ctx, `
		UPDATE weather_readings
		SET special_label = ?, special_symbol = ?, special_probability = ?
		WHERE village = ? AND period_start = ?
		  AND (special_probability IS NULL OR special_probability <> ?)`,
		sp.Label, sp.Symbol, domain.GuaranteedProbability,
		string(v), toMillis(periodStart),
		domain.GuaranteedProbability,
	)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("set guaranteed special: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("set guaranteed special: %w", err)
	}
	if affected > 0 {
		return s.findByKey(ctx, v, periodStart)
	}

	// Nothing updated: either the row is missing or a guaranteed special
	// already holds it. Distinguish by fetching.
	existing, err := s.findByKey(ctx, v, periodStart)
	if err != nil {
		return domain.WeatherReading{}, err
	}
	return domain.WeatherReading{}, &store.SpecialConflictError{
		Village:     v,
		PeriodStart: periodStart,
		Existing:    existing.Special.Label,
	}
}

// MarkPosted implements store.Store.
func (s *Store) MarkPosted(ctx context.Context, v domain.Village, periodStart time.Time) error {
	res, err := s.sqlDB.ExecContext(ctx, `
		UPDATE weather_readings SET posted = 1
		WHERE village = ? AND period_start = ?`,
		string(v), toMillis(periodStart),
	)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) findByKey(ctx context.Context, v domain.Village, periodStart time.Time) (domain.WeatherReading, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM weather_readings
		WHERE village = ? AND period_start = ?`,
		string(v), toMillis(periodStart),
	)
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeatherReading{}, store.ErrNotFound
	}
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("find weather reading: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (domain.WeatherReading, error) {
	var (
		village, season                                  string
		periodStart, createdAt                           int64
		posted                                           int
		specialLabel, specialSymbol, specialProbability  sql.NullString
		r                                                domain.WeatherReading
	)
	err := row.Scan(
		&village, &periodStart, &season,
		&r.Temperature.Label, &r.Temperature.Symbol, &r.Temperature.Value, &r.Temperature.Probability,
		&r.Wind.Label, &r.Wind.Symbol, &r.Wind.Value, &r.Wind.Probability,
		&r.Precipitation.Label, &r.Precipitation.Symbol, &r.Precipitation.Probability,
		&specialLabel, &specialSymbol, &specialProbability,
		&posted, &createdAt,
	)
	if err != nil {
		return domain.WeatherReading{}, err
	}

	r.Village = domain.Village(village)
	r.Season = domain.Season(season)
	r.PeriodStart = fromMillis(periodStart)
	r.CreatedAt = fromMillis(createdAt)
	r.Posted = posted != 0
	if specialLabel.Valid {
		r.Special = &domain.Special{
			Label:       specialLabel.String,
			Symbol:      specialSymbol.String,
			Probability: specialProbability.String,
		}
	}
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
