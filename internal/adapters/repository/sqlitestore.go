package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/edupredict/internal/domain/model"
	"github.com/okian/edupredict/pkg/metrics"

	_ "modernc.org/sqlite" // driver: sqlite
)

const (
	driverName         = "sqlite"
	defaultMaxLimit    = 500
	defaultBusyTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id                 TEXT PRIMARY KEY,
	user_id            TEXT    NOT NULL,
	ts                 INTEGER NOT NULL,
	predicted_score    REAL    NOT NULL,
	risk_label         TEXT    NOT NULL,
	study_hours        REAL    NOT NULL,
	attendance_percent REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS history_user_ts ON history (user_id, ts);
`

// Newest rows first inside, then flipped so callers get a time series.
const listByUserQuery = `
SELECT id, user_id, ts, predicted_score, risk_label, study_hours, attendance_percent
FROM (
	SELECT rowid AS seq, id, user_id, ts, predicted_score, risk_label, study_hours, attendance_percent
	FROM history
	WHERE user_id = ?
	ORDER BY ts DESC, seq DESC
	LIMIT ?
)
ORDER BY ts ASC, seq ASC`

const insertQuery = `
INSERT INTO history (id, user_id, ts, predicted_score, risk_label, study_hours, attendance_percent)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

// SQLiteStore keeps history in a SQLite database. All user supplied values
// are bound parameters.
type SQLiteStore struct {
	db          *sql.DB
	maxLimit    int
	busyTimeout time.Duration
}

// Compile-time check.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// schema. Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	s := &SQLiteStore{
		maxLimit:    defaultMaxLimit,
		busyTimeout: defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One writer; an in-memory database also lives only on its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	pragmas := fmt.Sprintf("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = %d;", s.busyTimeout.Milliseconds())
	if _, err := db.ExecContext(ctx, pragmas); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

// Save inserts rec unless its ID is already stored.
func (s *SQLiteStore) Save(ctx context.Context, rec model.HistoryRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	start := time.Now()
	res, err := s.db.ExecContext(ctx, insertQuery,
		rec.ID,
		rec.UserID,
		rec.Timestamp.UTC().UnixNano(),
		rec.PredictedScore,
		rec.RiskLabel,
		rec.StudyHours,
		rec.AttendancePercent,
	)
	if err != nil {
		metrics.RecordHistoryWriteError()
		metrics.RecordErrorByComponent("repository", "insert_failed")
		return false, fmt.Errorf("insert history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert history: %w", err)
	}
	if n == 0 {
		metrics.RecordHistoryDuplicate()
		return false, nil
	}
	metrics.RecordHistoryWrite(float64(time.Since(start).Microseconds()) / 1000)
	return true, nil
}

// ListByUser returns the newest limit records of userID, oldest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error) {
	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if limit == 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordHistoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rows, err := s.db.QueryContext(ctx, listByUserQuery, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.HistoryRecord, 0, limit)
	for rows.Next() {
		var (
			rec model.HistoryRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &ts, &rec.PredictedScore, &rec.RiskLabel, &rec.StudyHours, &rec.AttendancePercent); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
