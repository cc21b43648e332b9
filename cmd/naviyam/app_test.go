package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/config/file"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

const corpusJSON = `{
  "shops": {
    "1": {"id": 1, "name": "행복치킨", "category": "치킨", "address": "관악구"},
    "2": {"id": 2, "name": "꼬마분식", "category": "분식"}
  },
  "menus": {
    "10": {"id": 10, "shop_id": 1, "name": "후라이드", "price": 15000},
    "20": {"id": 20, "shop_id": 2, "name": "떡볶이", "price": 4000}
  }
}`

func writeConfig(t *testing.T, dir string, values map[string]any) {
	t.Helper()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}
	require.NoError(t, store.Save())
}

func TestNewApp_WiresCorpusAndServices(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "knowledge.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpusJSON), 0600))
	writeConfig(t, dir, map[string]any{
		"data.corpus_path": corpusPath,
		"cache.dir":        filepath.Join(dir, "cache"),
		"data.index_dir":   filepath.Join(dir, "index"),
	})

	a, err := newApp(context.Background(), dir)
	require.NoError(t, err)
	defer a.Close()

	s := a.services
	require.NotNil(t, s.Chat)
	require.NotNil(t, s.Search)
	require.NotNil(t, s.Sessions)
	require.NotNil(t, s.Settings)
	assert.NotNil(t, s.CorpusArchive)
	assert.Nil(t, s.Vectors, "text-only mode has no vector sync")
	assert.Len(t, s.Background, 2)

	summary := s.Corpus.Summary()
	assert.Equal(t, 2, summary.Shops)
	assert.Equal(t, 2, summary.Menus)

	results, err := s.Search.SearchByContext(context.Background(), "치킨", domain.SearchContext{Budget: 20000}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].ShopID)

	result := s.Chat.ProcessTurn(context.Background(), domain.TurnRequest{Text: "안녕"})
	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.ResponseText)

	_, err = os.Stat(filepath.Join(dir, "templates"))
	assert.NoError(t, err, "default templates are written to the config dir")
}

func TestNewApp_StorageDefaultsUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "knowledge.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpusJSON), 0600))
	writeConfig(t, dir, map[string]any{"data.corpus_path": corpusPath})

	a, err := newApp(context.Background(), dir)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.services.Search.SearchByContext(context.Background(), "분식", domain.SearchContext{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, a.services.Cache.Stats().DiskFiles)

	snapshots, err := os.ReadDir(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.NotEmpty(t, snapshots, "keyword index is snapshotted")
	assert.FileExists(t, filepath.Join(dir, "data", "naviyam.db"))
}

func TestNewApp_DefaultConfigDirIsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	a, err := newApp(context.Background(), "")
	require.NoError(t, err)
	defer a.Close()

	assert.DirExists(t, filepath.Join(home, ".naviyam", "cache"))
	assert.DirExists(t, filepath.Join(home, ".naviyam", "index"))
}

func TestNewApp_MissingCorpusStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{
		"data.corpus_path": filepath.Join(dir, "missing.json"),
	})

	a, err := newApp(context.Background(), dir)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 0, a.services.Corpus.Summary().Shops)

	_, err = a.services.Corpus.Reload(context.Background())
	assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
}

func TestNewApp_HybridWithoutVectorsFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{
		"search.mode": string(domain.SearchModeHybrid),
	})

	a, err := newApp(context.Background(), dir)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.services.Vectors)
}

func TestNewApp_RedisUnreachableUsesMemory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{
		"session.backend": string(domain.SessionBackendRedis),
		"redis.addr":      "127.0.0.1:1",
	})

	a, err := newApp(context.Background(), dir)
	require.NoError(t, err)
	defer a.Close()

	sess, err := a.services.Sessions.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)
	active, err := a.services.Sessions.IsActive(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestApp_CloseRunsInReverse(t *testing.T) {
	var order []int
	a := &app{}
	a.onClose(func() { order = append(order, 1) })
	a.onClose(func() { order = append(order, 2) })

	a.Close()
	a.Close()

	assert.Equal(t, []int{2, 1}, order)
}
