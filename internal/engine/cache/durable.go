package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/flightwx/flightwx/internal/weather"
)

// schema is the single-table layout of the durable tier. One row per
// airport code; timestamps are stored as RFC3339 strings.
const schema = `
CREATE TABLE IF NOT EXISTS weather_cache (
	code          TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	temperature_c REAL NOT NULL,
	condition     TEXT NOT NULL,
	humidity      INTEGER NOT NULL,
	wind_speed_ms REAL NOT NULL,
	fetched_at    TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	expires_at    TEXT NOT NULL
);`

// durableTier is the SQLite-backed persistent tier. database/sql plus a
// single connection serializes in-process writers; cross-process locking
// is out of scope.
type durableTier struct {
	db *sql.DB
}

// openDurableTier opens (creating if absent) the cache database at path.
func openDurableTier(path string) (*durableTier, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return &durableTier{db: db}, nil
}

// get returns the stored entry for key. Expired rows are deleted and
// reported as absent.
func (d *durableTier) get(key string) (Entry, bool, error) {
	row := d.db.QueryRow(`
		SELECT name, temperature_c, condition, humidity, wind_speed_ms,
		       fetched_at, created_at, expires_at
		FROM weather_cache WHERE code = ?`, key)

	var rec weather.Record
	var fetchedAt, createdAt, expiresAt string
	err := row.Scan(&rec.Name, &rec.TemperatureC, &rec.Condition, &rec.Humidity,
		&rec.WindSpeedMS, &fetchedAt, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache row: %w", err)
	}

	entry := Entry{Key: key, Record: rec}
	entry.Record.Code = key
	if entry.Record.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
		return Entry{}, false, fmt.Errorf("parse fetched_at: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Entry{}, false, fmt.Errorf("parse created_at: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return Entry{}, false, fmt.Errorf("parse expires_at: %w", err)
	}

	if entry.IsExpired() {
		_ = d.delete(key)
		return Entry{}, false, nil
	}

	return entry, true, nil
}

// put inserts or replaces the row for the entry's key.
func (d *durableTier) put(entry Entry) error {
	_, err := d.db.Exec(`
		INSERT INTO weather_cache
			(code, name, temperature_c, condition, humidity, wind_speed_ms,
			 fetched_at, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			temperature_c = excluded.temperature_c,
			condition = excluded.condition,
			humidity = excluded.humidity,
			wind_speed_ms = excluded.wind_speed_ms,
			fetched_at = excluded.fetched_at,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		entry.Key, entry.Record.Name, entry.Record.TemperatureC, entry.Record.Condition,
		entry.Record.Humidity, entry.Record.WindSpeedMS,
		entry.Record.FetchedAt.Format(time.RFC3339),
		entry.CreatedAt.Format(time.RFC3339),
		entry.ExpiresAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write cache row: %w", err)
	}
	return nil
}

func (d *durableTier) delete(key string) error {
	if _, err := d.db.Exec(`DELETE FROM weather_cache WHERE code = ?`, key); err != nil {
		return fmt.Errorf("delete cache row: %w", err)
	}
	return nil
}

func (d *durableTier) clear() error {
	if _, err := d.db.Exec(`DELETE FROM weather_cache`); err != nil {
		return fmt.Errorf("clear cache table: %w", err)
	}
	return nil
}

func (d *durableTier) close() error {
	return d.db.Close()
}
