package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/storyloom/internal/session"
)

var _ session.Store = (*Store)(nil)

// Entry describes a stored save without its payload.
type Entry struct {
	Key       string
	ID        string
	Seq       int64
	Size      int
	UpdatedAt time.Time
}

// LogEntry is one row of the append-only write log.
type LogEntry struct {
	Seq      int64
	ID       string
	Key      string
	Op       string
	Size     int
	LoggedAt time.Time
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM saves WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read save %q: %w", key, err)
	}
	return value, true, nil
}

// Put implements session.Store. Writing an existing key replaces its value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write save: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO saves (key, id, value, seq, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			id = excluded.id,
			value = excluded.value,
			seq = excluded.seq,
			updated_at = excluded.updated_at
	`, key, id, value, seq, now)
	if err != nil {
		return fmt.Errorf("write save: upsert: %w", err)
	}

	if err := appendLog(ctx, tx, seq, id, key, "put", len(value), now); err != nil {
		return fmt.Errorf("write save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write save: commit: %w", err)
	}
	return nil
}

// Delete implements session.Store. Deleting a missing key is not an error
// and is not logged.
func (s *Store) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete save: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM saves WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete save: rows affected: %w", err)
	}
	if affected == 0 {
		return tx.Commit()
	}

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := appendLog(ctx, tx, seq, uuid.Must(uuid.NewV7()).String(), key, "delete", 0, now); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete save: commit: %w", err)
	}
	return nil
}

// Keys implements session.Store.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := s.Entries(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// Entries lists saves whose key starts with prefix, ordered by key.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Entries(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, id, seq, length(value), updated_at
		FROM saves
		WHERE substr(key, 1, length(?)) = ?
		ORDER BY key COLLATE BINARY ASC
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Key, &e.ID, &e.Seq, &e.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return entries, nil
}

// ReadLog returns log rows whose key starts with prefix, ordered by seq.
func (s *Store) ReadLog(ctx context.Context, prefix string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, key, op, size, logged_at
		FROM save_log
		WHERE substr(key, 1, length(?)) = ?
		ORDER BY seq ASC
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query save log: %w", err)
	}
	defer rows.Close()

	log := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		var logged string
		if err := rows.Scan(&e.Seq, &e.ID, &e.Key, &e.Op, &e.Size, &logged); err != nil {
			return nil, fmt.Errorf("scan save log: %w", err)
		}
		e.LoggedAt, _ = time.Parse(time.RFC3339Nano, logged)
		log = append(log, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save log: %w", err)
	}
	return log, nil
}

// nextSeq returns the next logical sequence number. Must run inside the
// writing transaction so concurrent writers cannot observe the same value.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM save_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func appendLog(ctx context.Context, tx *sql.Tx, seq int64, id, key, op string, size int, at string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO save_log (seq, id, key, op, size, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, seq, id, key, op, size, at)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}
