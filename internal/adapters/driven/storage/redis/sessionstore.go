// Package redis provides a Redis-backed session store so several
// naviyam processes can share live conversations.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	sessionKeyPrefix = "session:"
	defaultTTL       = 30 * time.Minute
	scanBatch        = 100
)

// SessionStore keeps sessions as JSON under "session:<id>".
// Keys expire ttl after the last write; reads do not extend them.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// Options selects the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewSessionStore connects to Redis and verifies the connection.
func NewSessionStore(ctx context.Context, opts Options, ttl time.Duration) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return NewSessionStoreWithClient(client, ttl), nil
}

// NewSessionStoreWithClient wraps an existing client.
func NewSessionStoreWithClient(client *goredis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Create stores a new session with Version set to 1.
func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	sess.Version = 1
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key(sess.ID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

// Get retrieves a session by ID. Returns nil if absent.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decode(val)
}

// Update replaces a session if its version matches, using WATCH/MULTI/EXEC.
// A concurrent write between WATCH and EXEC is reported as a version conflict.
func (s *SessionStore) Update(ctx context.Context, sess *domain.Session) error {
	k := key(sess.ID)

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		val, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		stored, err := decode(val)
		if err != nil {
			return err
		}
		if stored.Version != sess.Version {
			return domain.ErrVersionConflict
		}

		next := sess.Clone()
		next.Version++
		newVal, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, newVal, s.ttl)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		sess.Version++
		return nil
	case errors.Is(err, goredis.TxFailedErr):
		return domain.ErrVersionConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrVersionConflict):
		return err
	default:
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List returns all session IDs in sorted order.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases the client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

func key(id string) string {
	return sessionKeyPrefix + id
}

func decode(val []byte) (*domain.Session, error) {
	var sess domain.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Metadata == nil {
		sess.Metadata = make(map[string]any)
	}
	if sess.State.Entities == nil {
		sess.State.Entities = make(map[string]any)
	}
	return &sess, nil
}
