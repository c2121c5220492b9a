package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// SaveCounts replaces the cached counts with counts in a single transaction.
func (db *DB) SaveCounts(ctx context.Context, counts models.CountsByDate) error {
	if err := counts.Validate(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM counts_cache"); err != nil {
		return fmt.Errorf("failed to clear counts cache: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO counts_cache (date_key, count, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(timeLayout)
	for _, key := range counts.Keys() {
		if _, err := stmt.ExecContext(ctx, key, counts[key], now); err != nil {
			return fmt.Errorf("failed to cache %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit counts: %w", err)
	}
	return nil
}

// LoadCounts returns the cached counts. An empty cache yields an empty map.
func (db *DB) LoadCounts(ctx context.Context) (models.CountsByDate, error) {
	rows, err := db.QueryContext(ctx, "SELECT date_key, count FROM counts_cache")
	if err != nil {
		return nil, fmt.Errorf("failed to query counts cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(models.CountsByDate)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan cached count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// CachedAt returns when the counts cache was last replaced.
func (db *DB) CachedAt(ctx context.Context) (time.Time, bool, error) {
	var updated sql.NullString
	err := db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM counts_cache").Scan(&updated)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query cache time: %w", err)
	}
	if !updated.Valid {
		return time.Time{}, false, nil
	}
	t, ok := parseTimeString(updated.String)
	return t, ok, nil
}

// InsertRefresh appends a record to the refresh log, assigning an ID if empty.
func (db *DB) InsertRefresh(ctx context.Context, rec *models.RefreshRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RefreshedAt.IsZero() {
		rec.RefreshedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO refresh_log (id, refreshed_at, origin, entries, total, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.RefreshedAt.UTC().Format(timeLayout),
		rec.Origin.String(),
		rec.Entries,
		rec.Total,
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh: %w", err)
	}
	return nil
}

// GetRecentRefreshes returns up to limit refresh records, newest first.
func (db *DB) GetRecentRefreshes(ctx context.Context, limit int) ([]models.RefreshRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, refreshed_at, origin, entries, total, error
		FROM refresh_log
		ORDER BY refreshed_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refreshes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.RefreshRecord
	for rows.Next() {
		var rec models.RefreshRecord
		var refreshedAt, origin string
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &refreshedAt, &origin, &rec.Entries, &rec.Total, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan refresh: %w", err)
		}
		if t, ok := parseTimeString(refreshedAt); ok {
			rec.RefreshedAt = t
		}
		rec.Origin = models.ParseOrigin(origin)
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetDailyTotals returns one total per day for the days-long window ending
// on end. Days without cached counts are reported as zero.
func (db *DB) GetDailyTotals(ctx context.Context, end time.Time, days int) ([]models.DailyTotal, error) {
	if days <= 0 {
		return nil, nil
	}

	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, 0, -(days - 1))
	fromKey := calendar.DateKey(first.Year(), int(first.Month()), first.Day())
	toKey := calendar.DateKey(last.Year(), int(last.Month()), last.Day())

	rows, err := db.QueryContext(ctx, `
		SELECT date_key, count
		FROM counts_cache
		WHERE date_key BETWEEN ? AND ?`, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		found[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totals := make([]models.DailyTotal, 0, days)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := calendar.DateKey(d.Year(), int(d.Month()), d.Day())
		totals = append(totals, models.DailyTotal{Date: key, Total: found[key]})
	}
	return totals, nil
}

// PruneRefreshes deletes refresh records older than before.
func (db *DB) PruneRefreshes(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM refresh_log WHERE refreshed_at < ?",
		before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune refreshes: %w", err)
	}
	return res.RowsAffected()
}
