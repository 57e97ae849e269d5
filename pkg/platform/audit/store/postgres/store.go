// Package postgres persists audit events in an append-only table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "memberd/pkg/domain"
	audit "memberd/pkg/platform/audit"
)

// Store implements audit.Store on database/sql. Rows are append-only; the
// full event is kept as JSON alongside the indexed columns so the schema
// never has to chase the event shape.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema returns the DDL for the audit_events table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS audit_events (
    id         UUID PRIMARY KEY,
    member_id  UUID,
    category   TEXT        NOT NULL,
    action     TEXT        NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    payload    JSONB       NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_member
    ON audit_events (member_id, occurred_at);
`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	var memberID any
	if !event.MemberID.Nil() {
		memberID = event.MemberID.String()
	}

	const query = `
		INSERT INTO audit_events (id, member_id, category, action, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		memberID,
		string(event.Category),
		string(event.Action),
		event.Timestamp,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByMember(ctx context.Context, memberID id.MemberID) ([]audit.Event, error) {
	const query = `
		SELECT payload FROM audit_events
		WHERE member_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, memberID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
