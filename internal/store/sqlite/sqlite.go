// Package sqlite implements the event store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/store"
)

// Open opens (or creates) the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is single-writer; serialize through one connection.
	db.SetMaxOpenConns(1)
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
    start_time      TEXT NOT NULL,
    end_time        TEXT NOT NULL,
    location        TEXT,
    priority        TEXT NOT NULL DEFAULT 'medium',
    is_flexible     INTEGER NOT NULL DEFAULT 0,
    is_immutable    INTEGER NOT NULL DEFAULT 0,
    recurrence_rule TEXT,
    creation_time   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_owner_start ON events(owner_id, start_time);
`

// EnsureSchema creates the events table when missing.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}

// NewWithDB constructs a sqlite-backed store over db.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Events() store.Events { return &events{db: s.db} }

// HealthPing reports database connectivity.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type events struct{ db *sql.DB }

func (e *events) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	out := *ev
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := e.db.ExecContext(ctx, `
        INSERT INTO events (id, owner_id, workspace_id, title, description, start_time, end_time,
                            location, priority, is_flexible, is_immutable, recurrence_rule, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.ID, out.OwnerID, out.WorkspaceID, out.Title, out.Description,
		encodeTime(out.Start), encodeTime(out.End), out.Location, string(out.Priority),
		boolToInt(out.IsFlexible), boolToInt(out.IsImmutable), out.RecurrenceRule, encodeTime(out.CreationTime))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) Get(ctx context.Context, ownerID, eventID string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT id, owner_id, workspace_id, title, description, start_time, end_time,
               location, priority, is_flexible, is_immutable, recurrence_rule, creation_time
        FROM events WHERE owner_id=? AND id=?
    `, ownerID, eventID)
	return scanEvent(row)
}

func (e *events) ListWindow(ctx context.Context, req model.ListEventsRequest) ([]model.Event, error) {
	query := `
        SELECT id, owner_id, workspace_id, title, description, start_time, end_time,
               location, priority, is_flexible, is_immutable, recurrence_rule, creation_time
        FROM events WHERE owner_id=? AND start_time>=? AND start_time<=?`
	args := []any{req.OwnerID, encodeTime(req.WindowStart), encodeTime(req.WindowEnd)}
	if req.WorkspaceID != nil {
		query += ` AND workspace_id=?`
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
		`UPDATE events SET start_time=?, end_time=? WHERE owner_id=? AND id=?`,
		encodeTime(start), encodeTime(end), ownerID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res, eventID)
}

func (e *events) Delete(ctx context.Context, ownerID, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE owner_id=? AND id=?`, ownerID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res, eventID)
}

type scanner interface{ Scan(dest ...any) error }

func scanEvent(row scanner) (*model.Event, error) {
	var (
		ev                      model.Event
		start, end, created     string
		priority                string
		isFlexible, isImmutable int
	)
	err := row.Scan(&ev.ID, &ev.OwnerID, &ev.WorkspaceID, &ev.Title, &ev.Description,
		&start, &end, &ev.Location, &priority, &isFlexible, &isImmutable,
		&ev.RecurrenceRule, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ev.Start, err = decodeTime(start); err != nil {
		return nil, err
	}
	if ev.End, err = decodeTime(end); err != nil {
		return nil, err
	}
	if ev.CreationTime, err = decodeTime(created); err != nil {
		return nil, err
	}
	ev.Priority = model.ParsePriority(priority)
	ev.IsFlexible = isFlexible != 0
	ev.IsImmutable = isImmutable != 0
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

// Times are stored as second-precision RFC3339 UTC strings so lexical order
// matches chronological order for the window queries.
func encodeTime(t time.Time) string { return t.UTC().Truncate(time.Second).Format(time.RFC3339) }

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
