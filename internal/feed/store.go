package feed

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	// DefaultRetain is how many messages the log keeps when unset.
	DefaultRetain = 200

	defaultRecentLimit = 50
)

// Store persists the recent message log.
type Store interface {
	Append(ctx context.Context, m Message) (Message, error)
	Recent(ctx context.Context, limit int) ([]Message, error)
}

// SQLiteStore keeps messages in the mqtt_messages table.
type SQLiteStore struct {
	db     *sql.DB
	retain int
}

// NewSQLiteStore creates a store that keeps the newest retain messages.
func NewSQLiteStore(db *sql.DB, retain int) *SQLiteStore {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &SQLiteStore{db: db, retain: retain}
}

// Append inserts m, sets its ID, and prunes rows beyond the retention limit.
func (s *SQLiteStore) Append(ctx context.Context, m Message) (Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return m, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO mqtt_messages (topic, payload, device_id, kind, received_at) VALUES (?, ?, ?, ?, ?)`,
		m.Topic, m.Payload, m.DeviceID, string(m.Kind), m.ReceivedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return m, fmt.Errorf("inserting mqtt message: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return m, fmt.Errorf("reading message id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM mqtt_messages WHERE id NOT IN (SELECT id FROM mqtt_messages ORDER BY id DESC LIMIT ?)`,
		s.retain,
	); err != nil {
		return m, fmt.Errorf("pruning mqtt messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return m, fmt.Errorf("committing mqtt message: %w", err)
	}
	return m, nil
}

// Recent returns up to limit messages, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > s.retain {
		limit = s.retain
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, payload, device_id, kind, received_at FROM mqtt_messages ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying mqtt messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var kind, receivedAt string
		if err := rows.Scan(&m.ID, &m.Topic, &m.Payload, &m.DeviceID, &kind, &receivedAt); err != nil {
			return nil, fmt.Errorf("scanning mqtt message: %w", err)
		}
		m.Kind = Kind(kind)
		if m.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt); err != nil {
			return nil, fmt.Errorf("parsing message timestamp %q: %w", receivedAt, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mqtt messages: %w", err)
	}
	return messages, nil
}
