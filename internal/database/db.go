package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a summary row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the database connection
type DB struct {
	*sql.DB
	driver string
}

// Connect establishes a connection to the database. driver is "postgres" or
// "sqlite3".
func Connect(driver, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	if driver == "sqlite3" {
		// a second connection to ":memory:" would see an empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	// Read all migration files
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Filter and sort SQL files
	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	// Execute each migration
	for _, filename := range sqlFiles {
		slog.Info("running migration", "file", filename)

		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	slog.Info("migrations completed", "count", len(sqlFiles))
	return nil
}

// InsertReadings inserts a batch of readings in one transaction.
func (db *DB) InsertReadings(ctx context.Context, rs []*StoredReading) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings (station_id, ts, temperature, humidity, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.StationID, r.Timestamp, r.Temperature, r.Humidity, r.ReceivedAt); err != nil {
			return fmt.Errorf("failed to insert reading at %d: %w", r.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit readings: %w", err)
	}
	return nil
}

// GetReadings returns readings with from <= ts < to in arrival order.
func (db *DB) GetReadings(ctx context.Context, from, to int64) ([]*StoredReading, error) {
	query := `
		SELECT id, station_id, ts, temperature, humidity, received_at
		FROM readings
		WHERE ts >= $1 AND ts < $2
		ORDER BY id
	`

	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*StoredReading
	for rows.Next() {
		var r StoredReading
		if err := rows.Scan(
			&r.ID,
			&r.StationID,
			&r.Timestamp,
			&r.Temperature,
			&r.Humidity,
			&r.ReceivedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, &r)
	}

	return readings, rows.Err()
}

// UpsertDailySummaries inserts or replaces daily summary rows by date.
func (db *DB) UpsertDailySummaries(ctx context.Context, rows []*DailyRow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO daily_summary (date, is_valid, data_point_count, document, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE
		SET is_valid = EXCLUDED.is_valid,
		    data_point_count = EXCLUDED.data_point_count,
		    document = EXCLUDED.document,
		    run_id = EXCLUDED.run_id,
		    updated_at = EXCLUDED.updated_at
	`

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, query,
			r.Date,
			r.IsValid,
			r.DataPointCount,
			string(r.Document),
			r.RunID,
			r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert daily summary %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily summaries: %w", err)
	}
	return nil
}

// UpsertOverallSummary inserts or replaces the named overall summary.
func (db *DB) UpsertOverallSummary(ctx context.Context, r *OverallRow) error {
	query := `
		INSERT INTO overall_summary (name, document, run_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document,
		    run_id = EXCLUDED.run_id,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := db.ExecContext(ctx, query, r.Name, string(r.Document), r.RunID, r.UpdatedAt)
	return err
}

// GetDailySummary retrieves the summary for one date.
func (db *DB) GetDailySummary(ctx context.Context, date string) (*DailyRow, error) {
	query := `
		SELECT date, is_valid, data_point_count, document, run_id, updated_at
		FROM daily_summary
		WHERE date = $1
	`

	var r DailyRow
	var doc string
	err := db.QueryRowContext(ctx, query, date).Scan(
		&r.Date,
		&r.IsValid,
		&r.DataPointCount,
		&doc,
		&r.RunID,
		&r.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("daily summary %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	r.Document = []byte(doc)
	return &r, nil
}

// ListDailySummaries returns all daily summaries ordered by date.
func (db *DB) ListDailySummaries(ctx context.Context) ([]*DailyRow, error) {
	query := `
		SELECT date, is_valid, data_point_count, document, run_id, updated_at
		FROM daily_summary
		ORDER BY date
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DailyRow
	for rows.Next() {
		var r DailyRow
		var doc string
		if err := rows.Scan(
			&r.Date,
			&r.IsValid,
			&r.DataPointCount,
			&doc,
			&r.RunID,
			&r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		r.Document = []byte(doc)
		out = append(out, &r)
	}

	return out, rows.Err()
}

// GetOverallSummary retrieves the named overall summary.
func (db *DB) GetOverallSummary(ctx context.Context, name string) (*OverallRow, error) {
	query := `
		SELECT name, document, run_id, updated_at
		FROM overall_summary
		WHERE name = $1
	`

	var r OverallRow
	var doc string
	err := db.QueryRowContext(ctx, query, name).Scan(&r.Name, &doc, &r.RunID, &r.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("overall summary %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	r.Document = []byte(doc)
	return &r, nil
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }
