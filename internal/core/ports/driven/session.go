package driven

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// SessionStore persists live sessions.
//
// Stores never hand out shared memory: Get returns a copy and Create/Update
// copy their argument.
type SessionStore interface {
	// Create stores a new session with Version set to 1.
	Create(ctx context.Context, s *domain.Session) error

	// Get retrieves a session by ID.
	// Returns nil if the session is not found (not an error).
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update replaces a session with optimistic locking.
	// The stored Version must equal s.Version; on success both are incremented.
	// Returns domain.ErrVersionConflict on mismatch and domain.ErrNotFound
	// if the session does not exist.
	Update(ctx context.Context, s *domain.Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// SessionArchive keeps exported sessions after they leave the live store.
type SessionArchive interface {
	// Archive stores a snapshot, replacing any earlier one with the same ID.
	Archive(ctx context.Context, snapshot *domain.SessionSnapshot) error

	// GetArchived returns an archived snapshot or domain.ErrNotFound.
	GetArchived(ctx context.Context, id string) (*domain.SessionSnapshot, error)
}
