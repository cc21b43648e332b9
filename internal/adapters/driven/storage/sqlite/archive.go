package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// sessionArchive implements driven.SessionArchive.
type sessionArchive struct {
	store *Store
}

var _ driven.SessionArchive = (*sessionArchive)(nil)

// Archive stores a snapshot, replacing any earlier one with the same ID.
func (a *sessionArchive) Archive(ctx context.Context, snapshot *domain.SessionSnapshot) error {
	if snapshot == nil || snapshot.SessionID == "" {
		return fmt.Errorf("%w: snapshot without session id", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	_, err = a.store.db.ExecContext(ctx, `
		INSERT INTO archived_sessions (session_id, user_id, snapshot, archived_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			snapshot = excluded.snapshot,
			archived_at = excluded.archived_at
	`, snapshot.SessionID, snapshot.UserID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archiving session %s: %w", snapshot.SessionID, err)
	}
	return nil
}

// GetArchived returns an archived snapshot or domain.ErrNotFound.
func (a *sessionArchive) GetArchived(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	var data string
	err := a.store.db.QueryRowContext(ctx,
		"SELECT snapshot FROM archived_sessions WHERE session_id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying archived session: %w", err)
	}

	var snapshot domain.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return &snapshot, nil
}
