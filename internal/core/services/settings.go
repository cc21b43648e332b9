package services

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides, e.g. NAVIYAM_SEARCH_TOP_K.
const EnvPrefix = "NAVIYAM"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySessionTimeout   = "session.timeout_minutes"
	keySessionBackend   = "session.backend"
	keySessionArchive   = "session.archive_on_clear"
	keySearchMode       = "search.mode"
	keyKeywordWeight    = "search.keyword_weight"
	keyVectorWeight     = "search.vector_weight"
	keyTopK             = "search.top_k"
	keyCacheVersion     = "search.cache_version"
	keyCacheTTL         = "cache.ttl_minutes"
	keyCacheMaxSize     = "cache.max_size"
	keyCacheDir         = "cache.dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyVectorURL        = "vector.url"
	keyVectorCollection = "vector.collection"
	keyVectorAPIKey     = "vector.api_key"
	keyRedisAddr        = "redis.addr"
	keyRedisPassword    = "redis.password"
	keyRedisDB          = "redis.db"
	keyCorpusPath       = "data.corpus_path"
	keySynonymsPath     = "data.synonyms_path"
	keyDatabasePath     = "data.database_path"
	keyIndexDir         = "data.index_dir"
)

// SettingsService manages application settings.
// Values come from the config file, then NAVIYAM_* environment variables.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   bool
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   true,
	}
}

// Get resolves current application settings including environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.fileSettings()
	if s.lookupEnv {
		if err := envconfig.Process(EnvPrefix, settings); err != nil {
			return nil, fmt.Errorf("process environment overrides: %w", err)
		}
	}
	return settings, nil
}

// fileSettings reads the config file over the defaults, without environment overrides.
func (s *SettingsService) fileSettings() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Session: domain.SessionSettings{
			TimeoutMinutes: s.getInt(keySessionTimeout, d.Session.TimeoutMinutes),
			Backend:        domain.SessionBackend(s.getString(keySessionBackend, string(d.Session.Backend))),
			ArchiveOnClear: s.getBool(keySessionArchive, d.Session.ArchiveOnClear),
		},
		Search: domain.SearchSettings{
			Mode:          s.getSearchMode(d.Search.Mode),
			KeywordWeight: s.getFloat(keyKeywordWeight, d.Search.KeywordWeight),
			VectorWeight:  s.getFloat(keyVectorWeight, d.Search.VectorWeight),
			TopK:          s.getInt(keyTopK, d.Search.TopK),
			CacheVersion:  s.getString(keyCacheVersion, d.Search.CacheVersion),
		},
		Cache: domain.CacheSettings{
			TTLMinutes: s.getInt(keyCacheTTL, d.Cache.TTLMinutes),
			MaxSize:    s.getInt(keyCacheMaxSize, d.Cache.MaxSize),
			Dir:        s.configStore.GetString(keyCacheDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, d.Embedding.RequestsPerSecond),
		},
		Vector: domain.VectorSettings{
			URL:        s.configStore.GetString(keyVectorURL),
			Collection: s.getString(keyVectorCollection, d.Vector.Collection),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
		},
		Redis: domain.RedisSettings{
			Addr:     s.getString(keyRedisAddr, d.Redis.Addr),
			Password: s.configStore.GetString(keyRedisPassword),
			DB:       s.configStore.GetInt(keyRedisDB),
		},
		Data: domain.DataSettings{
			CorpusPath:   s.configStore.GetString(keyCorpusPath),
			SynonymsPath: s.configStore.GetString(keySynonymsPath),
			DatabasePath: s.configStore.GetString(keyDatabasePath),
			IndexDir:     s.configStore.GetString(keyIndexDir),
		},
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keySessionTimeout, settings.Session.TimeoutMinutes},
		{keySessionBackend, string(settings.Session.Backend)},
		{keySessionArchive, settings.Session.ArchiveOnClear},
		{keySearchMode, settings.Search.Mode.String()},
		{keyKeywordWeight, settings.Search.KeywordWeight},
		{keyVectorWeight, settings.Search.VectorWeight},
		{keyTopK, settings.Search.TopK},
		{keyCacheVersion, settings.Search.CacheVersion},
		{keyCacheTTL, settings.Cache.TTLMinutes},
		{keyCacheMaxSize, settings.Cache.MaxSize},
		{keyCacheDir, settings.Cache.Dir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyVectorURL, settings.Vector.URL},
		{keyVectorCollection, settings.Vector.Collection},
		{keyRedisAddr, settings.Redis.Addr},
		{keyRedisDB, settings.Redis.DB},
		{keyCorpusPath, settings.Data.CorpusPath},
		{keySynonymsPath, settings.Data.SynonymsPath},
		{keyDatabasePath, settings.Data.DatabasePath},
		{keyIndexDir, settings.Data.IndexDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when set, so an env-only secret never lands on disk.
	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyVectorAPIKey:  settings.Vector.APIKey,
		keyRedisPassword: settings.Redis.Password,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetSearchMode updates the search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", mode)
	}

	settings := s.fileSettings()
	settings.Search.Mode = mode
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.fileSettings()
	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are valid for the configured mode.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.SearchMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
