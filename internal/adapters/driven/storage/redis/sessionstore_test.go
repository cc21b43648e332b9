package redis

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// redisAddr is set by TestMain. Empty means no server is available.
var redisAddr string

// TestMain uses NAVIYAM_TEST_REDIS_ADDR when set and otherwise starts a
// throwaway Redis container. Tests skip when neither is possible.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var container testcontainers.Container
	if addr := os.Getenv("NAVIYAM_TEST_REDIS_ADDR"); addr != "" {
		redisAddr = addr
	} else if !testing.Short() {
		c, addr, err := startRedis(ctx)
		if err != nil {
			fmt.Printf("redis container unavailable, skipping redis tests: %v\n", err)
		} else {
			container = c
			redisAddr = addr
		}
	}

	code := m.Run()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate redis container: %v\n", err)
		}
	}
	os.Exit(code)
}

func startRedis(ctx context.Context) (c testcontainers.Container, addr string, err error) {
	defer func() {
		// testcontainers panics when no Docker provider exists.
		if r := recover(); r != nil {
			err = fmt.Errorf("start container: %v", r)
		}
	}()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	c, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return nil, "", err
	}
	port, err := c.MappedPort(ctx, "6379")
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func setupStore(t *testing.T) *SessionStore {
	t.Helper()
	if redisAddr == "" {
		t.Skip("redis not available")
	}
	ctx := context.Background()
	store, err := NewSessionStore(ctx, Options{Addr: redisAddr}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSession(id string) *domain.Session {
	at := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	sess := domain.NewSession(id, "kid", at)
	sess.AddMessage(domain.RoleUser, "안녕", nil, at)
	return sess
}

func TestNewSessionStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewSessionStore(ctx, Options{Addr: "127.0.0.1:1"}, time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewSessionStoreWithClient_DefaultTTL(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	store := NewSessionStoreWithClient(client, 0)

	assert.Equal(t, defaultTTL, store.ttl)
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	sess := testSession("s1")

	require.NoError(t, store.Create(ctx, sess))
	got, err := store.Get(ctx, "s1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "kid", got.UserID)
	require.Len(t, got.History, 1)
	assert.Equal(t, "안녕", got.History[0].Content)

	ttl, err := store.client.TTL(ctx, key("s1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store := setupStore(t)

	got, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Update(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, testSession("s1")))

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	sess.LastBotAction = "greet"
	require.NoError(t, store.Update(ctx, sess))

	assert.Equal(t, int64(2), sess.Version)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "greet", got.LastBotAction)
}

func TestSessionStore_Update_VersionConflict(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, testSession("s1")))

	a, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, a))
	err = store.Update(ctx, b)

	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, int64(1), b.Version)
}

func TestSessionStore_Update_NotFound(t *testing.T) {
	store := setupStore(t)

	err := store.Update(context.Background(), testSession("ghost"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_DeleteAndList(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, store.Create(ctx, testSession(id)))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "b"))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestSessionStore_ConcurrentUpdates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, testSession("s1")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := store.Get(ctx, "s1")
			if err != nil || sess == nil {
				return
			}
			if store.Update(ctx, sess) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1+succeeded), got.Version)
}
