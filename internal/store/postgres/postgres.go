// Package postgres implements the event store on PostgreSQL via the pgx
// stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const ddl = `
CREATE TABLE IF NOT EXISTS events (
    id              TEXT PRIMARY KEY,
    owner_id        TEXT NOT NULL,
    workspace_id    TEXT,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    start_time      TIMESTAMPTZ NOT NULL,
    end_time        TIMESTAMPTZ NOT NULL,
    location        TEXT,
    priority        TEXT NOT NULL DEFAULT 'medium',
    is_flexible     BOOLEAN NOT NULL DEFAULT FALSE,
    is_immutable    BOOLEAN NOT NULL DEFAULT FALSE,
    recurrence_rule TEXT,
    creation_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_events_owner_start ON events(owner_id, start_time);
`

// EnsureSchema creates the events table when missing.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}

// NewWithDB constructs a postgres-backed store over db.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Events() store.Events { return &events{db: s.db} }

// HealthPing reports database connectivity.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type events struct{ db *sql.DB }

func (e *events) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	out := *ev
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO events (id, owner_id, workspace_id, title, description, start_time, end_time,
                            location, priority, is_flexible, is_immutable, recurrence_rule)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING creation_time
    `, out.ID, out.OwnerID, out.WorkspaceID, out.Title, out.Description, out.Start, out.End,
		out.Location, string(out.Priority), out.IsFlexible, out.IsImmutable, out.RecurrenceRule)
	if err := row.Scan(&out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) Get(ctx context.Context, ownerID, eventID string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT id, owner_id, workspace_id, title, description, start_time, end_time,
               location, priority, is_flexible, is_immutable, recurrence_rule, creation_time
        FROM events WHERE owner_id=$1 AND id=$2
    `, ownerID, eventID)
	return scanEvent(row)
}

func (e *events) ListWindow(ctx context.Context, req model.ListEventsRequest) ([]model.Event, error) {
	query := `
        SELECT id, owner_id, workspace_id, title, description, start_time, end_time,
               location, priority, is_flexible, is_immutable, recurrence_rule, creation_time
        FROM events WHERE owner_id=$1 AND start_time>=$2 AND start_time<=$3`
	args := []any{req.OwnerID, req.WindowStart, req.WindowEnd}
	if req.WorkspaceID != nil {
		query += ` AND workspace_id=$4`
		args = append(args, *req.WorkspaceID)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (e *events) UpdateTimes(ctx context.Context, ownerID, eventID string, start, end time.Time) error {
	res, err := e.db.ExecContext(ctx,
		`UPDATE events SET start_time=$1, end_time=$2 WHERE owner_id=$3 AND id=$4`,
		start, end, ownerID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res, eventID)
}

func (e *events) Delete(ctx context.Context, ownerID, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE owner_id=$1 AND id=$2`, ownerID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res, eventID)
}

type scanner interface{ Scan(dest ...any) error }

func scanEvent(row scanner) (*model.Event, error) {
	var ev model.Event
	var priority string
	err := row.Scan(&ev.ID, &ev.OwnerID, &ev.WorkspaceID, &ev.Title, &ev.Description,
		&ev.Start, &ev.End, &ev.Location, &priority, &ev.IsFlexible, &ev.IsImmutable,
		&ev.RecurrenceRule, &ev.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ev.Priority = model.ParsePriority(priority)
	return &ev, nil
}

func requireRow(res sql.Result, eventID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", eventID, model.ErrNotFound)
	}
	return nil
}
