package driving

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// SessionService manages conversation sessions.
//
// Operations on an unknown session return nil or false, never an error.
// An empty session ID returns domain.ErrInvalidInput.
type SessionService interface {
	// CreateSession registers a new session and returns its ID.
	CreateSession(ctx context.Context, userID string) (*domain.Session, error)

	// GetSession returns a copy of the session, or nil if absent.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// UpdateState applies a dialogue state update. Returns false if the session is absent.
	UpdateState(ctx context.Context, id string, update domain.StateUpdate) (bool, error)

	// AddMessage appends to the history and context log. Returns false if the session is absent.
	AddMessage(ctx context.Context, id string, role domain.Role, content string, metadata map[string]any) (bool, error)

	// IsActive reports whether the session exists and has not timed out.
	IsActive(ctx context.Context, id string) (bool, error)

	// SweepExpired removes inactive sessions and returns how many were removed.
	SweepExpired(ctx context.Context) (int, error)

	// ActiveCount sweeps expired sessions and returns the number left.
	ActiveCount(ctx context.Context) (int, error)

	// ExportSession returns a snapshot, or nil if absent.
	ExportSession(ctx context.Context, id string) (*domain.SessionSnapshot, error)

	// History returns the last n messages (all when n <= 0), or nil if absent.
	History(ctx context.Context, id string, n int) ([]domain.Message, error)

	// ClearSession removes a session. Returns false if it was absent.
	ClearSession(ctx context.Context, id string) (bool, error)
}
