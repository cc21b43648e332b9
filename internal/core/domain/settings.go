package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

const unknownDescription = "Unknown"

// SearchMode defines how the retriever combines retrieval methods.
type SearchMode string

// Available search modes.
const (
	// SearchModeTextOnly uses only the keyword index.
	SearchModeTextOnly SearchMode = "text_only"

	// SearchModeHybrid combines keyword and vector search.
	SearchModeHybrid SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeTextOnly, SearchModeHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeHybrid
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeTextOnly:
		return "Text Only (keyword search)"
	case SearchModeHybrid:
		return "Hybrid (keyword + vector search)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// SessionBackend selects where live sessions are kept.
type SessionBackend string

// Available session backends.
const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	return b == SessionBackendMemory || b == SessionBackendRedis
}

// SessionSettings holds session lifetime configuration.
type SessionSettings struct {
	// TimeoutMinutes is the inactivity window after which a session expires.
	TimeoutMinutes int `envconfig:"timeout_minutes"`

	// Backend selects the session store.
	Backend SessionBackend `envconfig:"backend"`

	// ArchiveOnClear copies a session into the archive before it is cleared.
	ArchiveOnClear bool `envconfig:"archive_on_clear"`
}

// SearchSettings holds retriever configuration.
type SearchSettings struct {
	// Mode is the retrieval mode.
	Mode SearchMode `envconfig:"mode"`

	// KeywordWeight scales keyword scores during fusion.
	KeywordWeight float64 `envconfig:"keyword_weight"`

	// VectorWeight scales vector scores during fusion.
	VectorWeight float64 `envconfig:"vector_weight"`

	// TopK is the number of recommendations per turn.
	TopK int `envconfig:"top_k"`

	// CacheVersion is mixed into every cache key.
	CacheVersion string `envconfig:"cache_version"`
}

// CacheSettings holds query cache configuration.
type CacheSettings struct {
	// TTLMinutes is the lifetime of a cache entry.
	TTLMinutes int `envconfig:"ttl_minutes"`

	// MaxSize is the memory tier capacity.
	MaxSize int `envconfig:"max_size"`

	// Dir is the disk tier directory, <config dir>/cache when unset.
	Dir string `envconfig:"dir"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `envconfig:"provider"`

	// Model is the embedding model name.
	Model string `envconfig:"model"`

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `envconfig:"base_url"`

	// APIKey is the API key (for OpenAI).
	APIKey string `envconfig:"api_key"`

	// RequestsPerSecond limits calls to the provider. Zero means unlimited.
	RequestsPerSecond float64 `envconfig:"requests_per_second"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector store configuration.
type VectorSettings struct {
	// URL is the qdrant gRPC address (host:port). Empty disables vector search.
	URL string `envconfig:"url"`

	// Collection is the qdrant collection holding shop embeddings.
	Collection string `envconfig:"collection"`

	// APIKey authenticates against a managed qdrant.
	APIKey string `envconfig:"api_key"`
}

// IsConfigured returns true if a vector store address is set.
func (v VectorSettings) IsConfigured() bool {
	return v.URL != ""
}

// RedisSettings holds the shared session store connection.
type RedisSettings struct {
	Addr     string `envconfig:"addr"`
	Password string `envconfig:"password"`
	DB       int    `envconfig:"db"`
}

// DataSettings locates the knowledge corpus and local databases.
type DataSettings struct {
	// CorpusPath is the JSON corpus file.
	CorpusPath string `envconfig:"corpus_path"`

	// SynonymsPath is the JSON synonym dictionary.
	SynonymsPath string `envconfig:"synonyms_path"`

	// DatabasePath is the SQLite database for archived sessions and imported
	// corpora, <config dir>/data/naviyam.db when unset.
	DatabasePath string `envconfig:"database_path"`

	// IndexDir holds keyword index snapshots, <config dir>/index when unset.
	IndexDir string `envconfig:"index_dir"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	Session   SessionSettings   `envconfig:"session"`
	Search    SearchSettings    `envconfig:"search"`
	Cache     CacheSettings     `envconfig:"cache"`
	Embedding EmbeddingSettings `envconfig:"embedding"`
	Vector    VectorSettings    `envconfig:"vector"`
	Redis     RedisSettings     `envconfig:"redis"`
	Data      DataSettings      `envconfig:"data"`
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and vector search are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Session: SessionSettings{
			TimeoutMinutes: 30,
			Backend:        SessionBackendMemory,
		},
		Search: SearchSettings{
			Mode:          SearchModeTextOnly,
			KeywordWeight: 0.5,
			VectorWeight:  0.5,
			TopK:          5,
			CacheVersion:  "v1",
		},
		Cache: CacheSettings{
			TTLMinutes: 60,
			MaxSize:    1000,
		},
		Vector: VectorSettings{
			Collection: "naviyam_shops",
		},
		Redis: RedisSettings{
			Addr: "localhost:6379",
		},
	}
}

// ApplyConfigDir fills unset storage locations with their defaults
// under the config directory.
func (s *AppSettings) ApplyConfigDir(dir string) {
	if dir == "" {
		return
	}
	if s.Data.DatabasePath == "" {
		s.Data.DatabasePath = filepath.Join(dir, "data", "naviyam.db")
	}
	if s.Data.IndexDir == "" {
		s.Data.IndexDir = filepath.Join(dir, "index")
	}
	if s.Cache.Dir == "" {
		s.Cache.Dir = filepath.Join(dir, "cache")
	}
}

// Validate checks the settings for values the services cannot run with.
func (s AppSettings) Validate() error {
	var errs []error
	if s.Session.TimeoutMinutes <= 0 {
		errs = append(errs, fmt.Errorf("session.timeout_minutes must be positive, got %d", s.Session.TimeoutMinutes))
	}
	if !s.Session.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("invalid session backend: %s", s.Session.Backend))
	}
	if !s.Search.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("invalid search mode: %s", s.Search.Mode))
	}
	if s.Search.KeywordWeight < 0 || s.Search.VectorWeight < 0 {
		errs = append(errs, errors.New("search weights must not be negative"))
	}
	if s.Search.TopK <= 0 {
		errs = append(errs, fmt.Errorf("search.top_k must be positive, got %d", s.Search.TopK))
	}
	if s.Cache.TTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_minutes must be positive, got %d", s.Cache.TTLMinutes))
	}
	if s.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must be positive, got %d", s.Cache.MaxSize))
	}
	if s.Search.Mode.RequiresEmbedding() {
		if !s.Embedding.IsConfigured() {
			errs = append(errs, errors.New("hybrid search requires a configured embedding provider"))
		}
		if !s.Vector.IsConfigured() {
			errs = append(errs, errors.New("hybrid search requires vector.url"))
		}
	}
	return errors.Join(errs...)
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{
		SearchModeTextOnly,
		SearchModeHybrid,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"bge-m3":            1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
