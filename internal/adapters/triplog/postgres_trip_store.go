package triplog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/platform/obs"
)

// PostgresTripStore persists trip summaries. Recording happens once per
// session, on stop; nothing about a live session is ever written here.
type PostgresTripStore struct {
	DB *sql.DB
}

func NewPostgresTripStore(db *sql.DB) *PostgresTripStore {
	return &PostgresTripStore{DB: db}
}

// InitSchema creates the trips table if needed. Run once at startup.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS trips (
		session_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL,
		fix_count INTEGER NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL
	);
	`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init schema: create trips table: %w", err)
	}

	idx := `CREATE INDEX IF NOT EXISTS idx_trips_ended_at ON trips(ended_at DESC);`
	if _, err := db.Exec(idx); err != nil {
		return fmt.Errorf("init schema: create trips index: %w", err)
	}

	return nil
}

func (s *PostgresTripStore) Record(ctx context.Context, summary domain.TripSummary) (err error) {
	defer obs.Time(ctx, "triplog.Record")(&err)

	if s.DB == nil {
		return errors.New("record trip: db is nil")
	}
	if summary.SessionID == "" {
		return errors.New("record trip: session id is empty")
	}

	q := `
	INSERT INTO trips (session_id, mode, started_at, ended_at, fix_count, distance_meters)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id) DO UPDATE SET
		ended_at = EXCLUDED.ended_at,
		fix_count = EXCLUDED.fix_count,
		distance_meters = EXCLUDED.distance_meters;
	`

	_, err = s.DB.ExecContext(ctx, q,
		summary.SessionID, string(summary.Mode),
		summary.StartedAt, summary.EndedAt,
		summary.FixCount, summary.DistanceMeters,
	)
	if err != nil {
		return fmt.Errorf("record trip %q: %w", summary.SessionID, err)
	}
	return nil
}

func (s *PostgresTripStore) Recent(ctx context.Context, limit int) (_ []domain.TripSummary, err error) {
	defer obs.Time(ctx, "triplog.Recent")(&err)

	if s.DB == nil {
		return nil, errors.New("recent trips: db is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	q := `
	SELECT session_id, mode, started_at, ended_at, fix_count, distance_meters
	FROM trips
	ORDER BY ended_at DESC
	LIMIT $1;
	`

	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent trips: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TripSummary, 0, limit)
	for rows.Next() {
		var t domain.TripSummary
		var mode string
		if err := rows.Scan(&t.SessionID, &mode, &t.StartedAt, &t.EndedAt, &t.FixCount, &t.DistanceMeters); err != nil {
			return nil, fmt.Errorf("recent trips: scan: %w", err)
		}
		t.Mode = domain.TravelMode(mode)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent trips: rows: %w", err)
	}

	return out, nil
}
