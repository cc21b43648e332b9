package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search, session, cache and embedding settings.

Use subcommands to configure specific settings or run the interactive wizard.
Every value can also be overridden with a NAVIYAM_* environment variable,
e.g. NAVIYAM_SEARCH_TOP_K=3.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure search mode and the vector search stack.`,
	RunE:  runSettingsWizard,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Set search mode",
	Long: `Set the search mode to control how shops are retrieved.

Available modes:
  text_only - Keyword search with synonyms (no setup required)
  hybrid    - Keyword + vector search (requires embedding provider and qdrant)`,
	RunE: runSettingsMode,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider for vector search.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

var errNoSettingsService = errors.New("settings service not configured")

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.Mode.Description())
	cmd.Printf("  Weights: keyword %.2f, vector %.2f\n", settings.Search.KeywordWeight, settings.Search.VectorWeight)
	cmd.Printf("  Top K: %d\n", settings.Search.TopK)
	cmd.Println()

	cmd.Println("[Session]")
	cmd.Printf("  Backend: %s\n", settings.Session.Backend)
	cmd.Printf("  Timeout: %d minutes\n", settings.Session.TimeoutMinutes)
	if settings.Session.Backend == domain.SessionBackendRedis {
		cmd.Printf("  Redis: %s (db %d)\n", settings.Redis.Addr, settings.Redis.DB)
	}
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  TTL: %d minutes\n", settings.Cache.TTLMinutes)
	cmd.Printf("  Max size: %d\n", settings.Cache.MaxSize)
	cmd.Printf("  Disk: %s\n", valueOr(settings.Cache.Dir, "(config dir)/cache"))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  URL: %s\n", valueOr(settings.Vector.URL, "(not set)"))
	cmd.Printf("  Collection: %s\n", settings.Vector.Collection)
	cmd.Println()

	cmd.Println("[Data]")
	cmd.Printf("  Corpus: %s\n", valueOr(settings.Data.CorpusPath, "(not set)"))
	cmd.Printf("  Synonyms: %s\n", valueOr(settings.Data.SynonymsPath, "(not set)"))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'naviyam settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	cmd.Println("Naviyam Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Select Search Mode")
	cmd.Println("--------------------------")
	selectedMode := promptSearchMode(cmd, reader, 1)
	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}
	cmd.Printf("Set search mode to: %s\n\n", selectedMode.Description())

	if !selectedMode.RequiresEmbedding() {
		cmd.Println("Step 2: Vector Search (skipped)")
		cmd.Println("-------------------------------")
		cmd.Println("Not required for text-only search mode.")
		cmd.Println()
	} else {
		cmd.Println("Step 2: Configure Embedding Provider")
		cmd.Println("------------------------------------")
		if err := configureEmbeddingProvider(cmd, reader); err != nil {
			return err
		}

		cmd.Println("Step 3: Configure Vector Store")
		cmd.Println("------------------------------")
		if err := configureVectorStore(cmd, reader); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Search Mode")
	cmd.Println("------------------")
	selectedMode := promptSearchMode(cmd, reader, 0)
	if selectedMode == "" {
		return errors.New("invalid selection")
	}

	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}

	cmd.Printf("Search mode set to: %s\n", selectedMode.Description())

	if selectedMode.RequiresEmbedding() {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.Embedding.IsConfigured() {
			cmd.Println("\nNote: This mode requires an embedding provider.")
			cmd.Println("Run 'naviyam settings embedding' to configure.")
		}
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

// promptSearchMode returns the chosen mode, or "" when defaultChoice is 0
// and the input is not a valid choice.
func promptSearchMode(cmd *cobra.Command, reader *bufio.Reader, defaultChoice int) domain.SearchMode {
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	if defaultChoice > 0 {
		cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	} else {
		cmd.Print("\nEnter choice: ")
	}
	idx := parseChoice(readLine(reader), len(modes), defaultChoice)
	if idx == 0 {
		return ""
	}
	return modes[idx-1]
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if embeddingChecker != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := embeddingChecker(commandContext(cmd), &settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureVectorStore(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	defaultURL := valueOr(settings.Vector.URL, "localhost:6334")
	cmd.Printf("Enter qdrant address [%s]: ", defaultURL)
	settings.Vector.URL = valueOr(readLine(reader), defaultURL)

	cmd.Printf("Enter collection [%s]: ", settings.Vector.Collection)
	settings.Vector.Collection = valueOr(readLine(reader), settings.Vector.Collection)

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save vector settings: %w", err)
	}
	cmd.Printf("Vector store configured: %s/%s\n", settings.Vector.URL, settings.Vector.Collection)
	cmd.Println("Run 'naviyam index rebuild --vectors' to fill the collection.")
	cmd.Println()
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise it
// falls back to a plain line read.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
