package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMode_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		mode     SearchMode
		expected bool
	}{
		{name: "text_only is valid", mode: SearchModeTextOnly, expected: true},
		{name: "hybrid is valid", mode: SearchModeHybrid, expected: true},
		{name: "empty string is invalid", mode: SearchMode(""), expected: false},
		{name: "unknown mode is invalid", mode: SearchMode("full"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.IsValid())
		})
	}
}

func TestSearchMode_RequiresEmbedding(t *testing.T) {
	assert.False(t, SearchModeTextOnly.RequiresEmbedding())
	assert.True(t, SearchModeHybrid.RequiresEmbedding())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProvider("cohere").IsValid())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 30, s.Session.TimeoutMinutes)
	assert.Equal(t, SessionBackendMemory, s.Session.Backend)
	assert.Equal(t, SearchModeTextOnly, s.Search.Mode)
	assert.InDelta(t, 0.5, s.Search.KeywordWeight, 1e-9)
	assert.InDelta(t, 0.5, s.Search.VectorWeight, 1e-9)
	assert.Equal(t, 5, s.Search.TopK)
	assert.Equal(t, "v1", s.Search.CacheVersion)
	assert.Equal(t, 60, s.Cache.TTLMinutes)
	assert.Equal(t, 1000, s.Cache.MaxSize)
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.Vector.IsConfigured())

	require.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *AppSettings)
		wantErr string
	}{
		{
			name:    "zero timeout",
			mutate:  func(s *AppSettings) { s.Session.TimeoutMinutes = 0 },
			wantErr: "session.timeout_minutes",
		},
		{
			name:    "unknown backend",
			mutate:  func(s *AppSettings) { s.Session.Backend = "etcd" },
			wantErr: "invalid session backend",
		},
		{
			name:    "negative weight",
			mutate:  func(s *AppSettings) { s.Search.VectorWeight = -1 },
			wantErr: "weights",
		},
		{
			name:    "zero top k",
			mutate:  func(s *AppSettings) { s.Search.TopK = 0 },
			wantErr: "top_k",
		},
		{
			name:    "zero cache size",
			mutate:  func(s *AppSettings) { s.Cache.MaxSize = 0 },
			wantErr: "max_size",
		},
		{
			name:    "hybrid without embedding",
			mutate:  func(s *AppSettings) { s.Search.Mode = SearchModeHybrid },
			wantErr: "embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAppSettings_Validate_HybridConfigured(t *testing.T) {
	s := DefaultAppSettings()
	s.Search.Mode = SearchModeHybrid
	s.Embedding.Provider = AIProviderOllama
	s.Vector.URL = "localhost:6334"

	assert.NoError(t, s.Validate())
}

func TestAppSettings_ApplyConfigDir(t *testing.T) {
	t.Run("fills unset locations", func(t *testing.T) {
		s := DefaultAppSettings()
		s.ApplyConfigDir("/home/kid/.naviyam")

		assert.Equal(t, filepath.Join("/home/kid/.naviyam", "data", "naviyam.db"), s.Data.DatabasePath)
		assert.Equal(t, filepath.Join("/home/kid/.naviyam", "index"), s.Data.IndexDir)
		assert.Equal(t, filepath.Join("/home/kid/.naviyam", "cache"), s.Cache.Dir)
	})

	t.Run("keeps configured locations", func(t *testing.T) {
		s := DefaultAppSettings()
		s.Cache.Dir = "/tmp/cache"
		s.Data.IndexDir = "/tmp/index"
		s.Data.DatabasePath = "/tmp/db.sqlite"
		s.ApplyConfigDir("/home/kid/.naviyam")

		assert.Equal(t, "/tmp/cache", s.Cache.Dir)
		assert.Equal(t, "/tmp/index", s.Data.IndexDir)
		assert.Equal(t, "/tmp/db.sqlite", s.Data.DatabasePath)
	})

	t.Run("no dir leaves settings alone", func(t *testing.T) {
		s := DefaultAppSettings()
		s.ApplyConfigDir("")

		assert.Empty(t, s.Cache.Dir)
		assert.Empty(t, s.Data.IndexDir)
	})
}
