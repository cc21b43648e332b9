package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValueOr(t *testing.T) {
	assert.Equal(t, "fallback", valueOr("", "fallback"))
	assert.Equal(t, "set", valueOr("set", "fallback"))
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Mode: Text Only (keyword search)")
	assert.Contains(t, out, "Backend: memory")
	assert.Contains(t, out, "Disk: (config dir)/cache")
	assert.Contains(t, out, "Collection: naviyam_shops")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_InvalidHybrid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	installed.settings.settings.Search.Mode = domain.SearchModeHybrid

	out, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "naviyam settings wizard")
}

func TestSettingsModeCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "2\n", "settings", "mode")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchModeHybrid, installed.settings.settings.Search.Mode)
	assert.Contains(t, out, "requires an embedding provider")
}

func TestSettingsModeCmd_InvalidChoice(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "9\n", "settings", "mode")

	require.Error(t, err)
	assert.Equal(t, domain.SearchModeTextOnly, installed.settings.settings.Search.Mode)
}

func TestSettingsEmbeddingCmd_OpenAIRequiresKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "2\n\n\n", "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsEmbeddingCmd_CheckerFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	embeddingChecker = func(_ context.Context, _ *domain.EmbeddingSettings) error {
		return errors.New("connection refused")
	}

	out, err := executeCommand(t, "1\n\n", "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, out, "FAILED: connection refused")
	assert.Equal(t, domain.AIProviderOllama, installed.settings.settings.Embedding.Provider)
}

func TestSettingsWizardCmd_TextOnly(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "\n", "settings", "wizard")

	require.NoError(t, err)
	assert.Contains(t, out, "Step 2: Vector Search (skipped)")
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsWizardCmd_Hybrid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdin := "2\n2\n\nsk-test-key-123456\n\nkids_shops\n"
	out, err := executeCommand(t, stdin, "settings", "wizard")

	require.NoError(t, err)
	got := installed.settings.settings
	assert.Equal(t, domain.SearchModeHybrid, got.Search.Mode)
	assert.Equal(t, domain.AIProviderOpenAI, got.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", got.Embedding.Model)
	assert.Equal(t, "sk-test-key-123456", got.Embedding.APIKey)
	assert.Equal(t, "localhost:6334", got.Vector.URL)
	assert.Equal(t, "kids_shops", got.Vector.Collection)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	_, err := executeCommand(t, "", "settings", "show")

	assert.ErrorIs(t, err, errNoSettingsService)
}
