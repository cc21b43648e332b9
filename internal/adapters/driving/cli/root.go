// Package cli provides the naviyam command line interface.
package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services wired by the composition root.
var (
	chatService      driving.ChatService
	searchService    driving.SearchService
	sessionService   driving.SessionService
	corpusService    driving.CorpusService
	cacheService     driving.CacheService
	settingsService  driving.SettingsService
	vectorSyncer     VectorSyncer
	corpusArchive    driven.CorpusWriter
	embeddingChecker EmbeddingChecker
	backgroundTasks  []BackgroundTask
)

// VectorSyncer writes corpus embeddings into the vector store.
type VectorSyncer interface {
	SyncVectors(ctx context.Context) (int, error)
}

// EmbeddingChecker verifies an embedding provider is reachable.
type EmbeddingChecker func(ctx context.Context, settings *domain.EmbeddingSettings) error

// BackgroundTask runs for the lifetime of a long-running command such as
// "mcp serve". Run must return when ctx is cancelled.
type BackgroundTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// Services holds everything the commands need. Nil fields disable the
// commands that use them.
type Services struct {
	Chat             driving.ChatService
	Search           driving.SearchService
	Sessions         driving.SessionService
	Corpus           driving.CorpusService
	Cache            driving.CacheService
	Settings         driving.SettingsService
	Vectors          VectorSyncer
	CorpusArchive    driven.CorpusWriter
	EmbeddingChecker EmbeddingChecker
	Background       []BackgroundTask
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	chatService = s.Chat
	searchService = s.Search
	sessionService = s.Sessions
	corpusService = s.Corpus
	cacheService = s.Cache
	settingsService = s.Settings
	vectorSyncer = s.Vectors
	corpusArchive = s.CorpusArchive
	embeddingChecker = s.EmbeddingChecker
	backgroundTasks = s.Background
}

var rootCmd = &cobra.Command{
	Use:   "naviyam",
	Short: "Restaurant recommendations for children",
	Long: `Naviyam recommends nearby shops to children through a short dialogue.

It tracks what the child wants to eat, their budget and where they are,
then searches the shop corpus with keyword and optional vector search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline debug logs")
}

// SetVersion sets the version printed by "naviyam version".
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// runBackground starts every background task and returns a function that
// cancels them and waits for them to finish.
func runBackground(ctx context.Context, tasks []BackgroundTask) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("background task %s stopped: %v", task.Name, err)
			}
		}()
	}
	return func() {
		cancel()
		wg.Wait()
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
