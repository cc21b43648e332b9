package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// maxUpdateAttempts bounds retries when another writer bumps the session version.
const maxUpdateAttempts = 3

// DefaultSessionTimeout is the inactivity window used when none is configured.
const DefaultSessionTimeout = 30 * time.Minute

// SessionManager owns session lifecycle and dialogue state mutation.
// Mutations of one session are serialised; different sessions never contend.
type SessionManager struct {
	store          driven.SessionStore
	archive        driven.SessionArchive
	archiveOnClear bool
	timeout        time.Duration
	now            func() time.Time
	newID          func() string
	locks          *keyedMutex
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

// WithIDGenerator overrides session ID allocation.
func WithIDGenerator(gen func() string) SessionOption {
	return func(m *SessionManager) { m.newID = gen }
}

// WithArchive keeps cleared sessions in archive and lets exports fall back to it.
func WithArchive(archive driven.SessionArchive, archiveOnClear bool) SessionOption {
	return func(m *SessionManager) {
		m.archive = archive
		m.archiveOnClear = archiveOnClear
	}
}

// NewSessionManager creates a session manager over store.
// A non-positive timeout selects DefaultSessionTimeout.
func NewSessionManager(store driven.SessionStore, timeout time.Duration, opts ...SessionOption) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	m := &SessionManager{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
		locks:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSession registers a new session with a fresh ID.
func (m *SessionManager) CreateSession(ctx context.Context, userID string) (*domain.Session, error) {
	sess := domain.NewSession(m.newID(), userID, m.now())
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Debug("session created: %s", sess.ID)
	return sess.Clone(), nil
}

// GetSession returns the session or nil. It never extends the session lifetime.
func (m *SessionManager) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// UpdateState applies a state update atomically for the session.
func (m *SessionManager) UpdateState(ctx context.Context, id string, update domain.StateUpdate) (bool, error) {
	if err := validateSessionID(id); err != nil {
		return false, err
	}
	return m.mutate(ctx, id, func(sess *domain.Session, now time.Time) {
		applyStateUpdate(sess, update, now)
	})
}

// AddMessage appends a message to the history and the state context log.
func (m *SessionManager) AddMessage(
	ctx context.Context,
	id string,
	role domain.Role,
	content string,
	metadata map[string]any,
) (bool, error) {
	if err := validateSessionID(id); err != nil {
		return false, err
	}
	return m.mutate(ctx, id, func(sess *domain.Session, now time.Time) {
		sess.AddMessage(role, content, metadata, now)
	})
}

// IsActive reports whether the session exists and was updated within the timeout.
func (m *SessionManager) IsActive(ctx context.Context, id string) (bool, error) {
	sess, err := m.GetSession(ctx, id)
	if err != nil || sess == nil {
		return false, err
	}
	return m.active(sess), nil
}

// SweepExpired removes every inactive session.
func (m *SessionManager) SweepExpired(ctx context.Context) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		ok, err := m.sweepOne(ctx, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("swept %d expired sessions", removed)
	}
	return removed, nil
}

func (m *SessionManager) sweepOne(ctx context.Context, id string) (bool, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get session %s: %w", id, err)
	}
	if sess == nil || m.active(sess) {
		return false, nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return true, nil
}

// ActiveCount sweeps expired sessions, then counts the remaining ones.
func (m *SessionManager) ActiveCount(ctx context.Context) (int, error) {
	if _, err := m.SweepExpired(ctx); err != nil {
		return 0, err
	}
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	return len(ids), nil
}

// ExportSession snapshots a live session. When the session is gone and an
// archive is configured, the archived snapshot is returned instead.
func (m *SessionManager) ExportSession(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	sess, err := m.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess.Snapshot(), nil
	}
	if m.archive == nil {
		return nil, nil
	}
	snap, err := m.archive.GetArchived(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get archived session %s: %w", id, err)
	}
	return snap, nil
}

// History returns the last n messages, or all of them when n <= 0.
func (m *SessionManager) History(ctx context.Context, id string, n int) ([]domain.Message, error) {
	sess, err := m.GetSession(ctx, id)
	if err != nil || sess == nil {
		return nil, err
	}
	history := sess.History
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	return slices.Clone(history), nil
}

// ClearSession removes a session, archiving it first when configured.
func (m *SessionManager) ClearSession(ctx context.Context, id string) (bool, error) {
	if err := validateSessionID(id); err != nil {
		return false, err
	}
	unlock := m.locks.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get session %s: %w", id, err)
	}
	if sess == nil {
		return false, nil
	}
	if m.archive != nil && m.archiveOnClear {
		if err := m.archive.Archive(ctx, sess.Snapshot()); err != nil {
			return false, fmt.Errorf("archive session %s: %w", id, err)
		}
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	logger.Debug("session cleared: %s", id)
	return true, nil
}

// mutate runs fn under the session lock and writes the result back,
// retrying when another process updated the session in between.
func (m *SessionManager) mutate(
	ctx context.Context,
	id string,
	fn func(sess *domain.Session, now time.Time),
) (bool, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		sess, err := m.store.Get(ctx, id)
		if err != nil {
			return false, fmt.Errorf("get session %s: %w", id, err)
		}
		if sess == nil {
			return false, nil
		}

		fn(sess, m.now())

		err = m.store.Update(ctx, sess)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, domain.ErrNotFound):
			return false, nil
		case errors.Is(err, domain.ErrVersionConflict):
			logger.Debug("session %s version conflict (attempt %d)", id, attempt)
			continue
		default:
			return false, fmt.Errorf("update session %s: %w", id, err)
		}
	}
	return false, fmt.Errorf("update session %s: %w", id, domain.ErrVersionConflict)
}

func (m *SessionManager) active(sess *domain.Session) bool {
	return m.now().Sub(sess.UpdatedAt) < m.timeout
}

func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("empty session id: %w", domain.ErrInvalidInput)
	}
	return nil
}

// applyStateUpdate mutates the dialogue state.
//
// A supplied intent that differs from a non-empty stored intent pushes the
// stored one onto the stack, raises IntentChanged, and clears entities when
// ResetEntities is set. Any other supplied intent lowers IntentChanged.
func applyStateUpdate(sess *domain.Session, u domain.StateUpdate, now time.Time) {
	st := &sess.State
	if st.Entities == nil {
		st.Entities = make(map[string]any)
	}

	if u.Intent != nil {
		if st.Intent != "" && st.Intent != *u.Intent {
			st.IntentStack = append(st.IntentStack, st.Intent)
			st.IntentChanged = true
			if u.ResetEntities {
				clear(st.Entities)
			}
		} else {
			st.IntentChanged = false
		}
		st.Intent = *u.Intent
	}

	for k, v := range u.Entities {
		st.Entities[k] = v
	}

	if u.RequiredInfo != nil {
		st.RequiredInfo = slices.Clone(u.RequiredInfo)
	}

	if u.LastBotAction != nil {
		sess.LastBotAction = *u.LastBotAction
	}

	sess.UpdatedAt = now
}
