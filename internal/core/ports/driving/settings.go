package driving

import "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings from the config file, then environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	Save(settings *domain.AppSettings) error

	// SetSearchMode updates the search mode.
	SetSearchMode(mode domain.SearchMode) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks if current settings are valid for the configured mode.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
