package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/ai"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/config/file"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/corpus/jsonfile"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/nlu/rules"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/storage/disk"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/storage/memory"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/storage/redis"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driving/cli"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/services"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// configDirEnv overrides the config directory (default ~/.naviyam).
const configDirEnv = "NAVIYAM_HOME"

// sweepInterval is how often expired sessions are removed while serving.
const sweepInterval = 5 * time.Minute

// redisConnectTimeout bounds the initial Redis ping.
const redisConnectTimeout = 3 * time.Second

// app is the wired service graph plus everything to release on exit.
type app struct {
	services *cli.Services
	closers  []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// newApp reads settings from configDir (default ~/.naviyam) and wires every
// service. Optional backends that fail to start are logged and skipped.
func newApp(ctx context.Context, configDir string) (*app, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("settings: %v", err)
	}

	settings.ApplyConfigDir(configDir)

	a := &app{}

	var db *sqlite.Store
	if db, err = sqlite.NewStore(settings.Data.DatabasePath); err != nil {
		logger.Warn("database unavailable, archive and corpus export disabled: %v", err)
		db = nil
	} else {
		a.onClose(func() { db.Close() })
	}

	corpusStore := corpusSource(settings, db)
	corpus := loadCorpus(ctx, corpusStore)
	synonyms := loadSynonyms(ctx, settings.Data.SynonymsPath)

	cache := services.NewQueryCache(
		cacheDisk(settings.Cache.Dir),
		time.Duration(settings.Cache.TTLMinutes)*time.Minute,
		settings.Cache.MaxSize,
	)

	opts := []services.RetrieverOption{
		services.WithSynonyms(synonyms),
		services.WithQueryCache(cache),
	}
	if snapshots := indexSnapshots(settings.Data.IndexDir); snapshots != nil {
		opts = append(opts, services.WithIndexSnapshots(snapshots))
	}

	vectors := ai.Init(ctx, settings)
	for _, w := range vectors.Warnings {
		logger.Warn("%s", w)
	}
	a.onClose(vectors.Close)
	if vectors.HybridReady() {
		opts = append(opts, services.WithVectorSearch(vectors.VectorStore, vectors.EmbeddingService))
	}

	retriever := services.NewRetriever(corpus, services.RetrieverConfig{
		KeywordWeight: settings.Search.KeywordWeight,
		VectorWeight:  settings.Search.VectorWeight,
		CacheVersion:  settings.Search.CacheVersion,
	}, opts...)
	corpusService := services.NewCorpusService(corpusStore, retriever, corpus)

	store := sessionStore(ctx, settings)
	a.onClose(func() { store.Close() })
	timeout := time.Duration(settings.Session.TimeoutMinutes) * time.Minute
	var sessionOpts []services.SessionOption
	if db != nil {
		sessionOpts = append(sessionOpts, services.WithArchive(db.SessionArchive(), settings.Session.ArchiveOnClear))
	}
	sessions := services.NewSessionManager(store, timeout, sessionOpts...)

	chat := services.NewChatService(
		sessions,
		retriever,
		rules.New(),
		services.NewResponseGenerator(services.WithTemplates(loadTemplates(configDir))),
		settings.Search.TopK,
	)

	scheduler := services.NewScheduler()
	scheduler.RegisterSessionSweep(sessions, sweepInterval)
	background := []cli.BackgroundTask{{Name: "scheduler", Run: scheduler.Start}}
	if settings.Data.CorpusPath != "" {
		watcher := jsonfile.NewWatcher(settings.Data.CorpusPath, func(ctx context.Context) error {
			_, err := corpusService.Reload(ctx)
			return err
		})
		background = append(background, cli.BackgroundTask{Name: "corpus watcher", Run: watcher.Run})
	}

	a.services = &cli.Services{
		Chat:             chat,
		Search:           retriever,
		Sessions:         sessions,
		Corpus:           corpusService,
		Cache:            cache,
		Settings:         settingsService,
		EmbeddingChecker: ai.ValidateEmbeddingConfig,
		Background:       background,
	}
	if vectors.HybridReady() {
		a.services.Vectors = retriever
	}
	if db != nil {
		a.services.CorpusArchive = db.CorpusStore()
	}
	return a, nil
}

// corpusSource prefers the JSON corpus file and falls back to the corpus
// imported into the database.
func corpusSource(settings *domain.AppSettings, db *sqlite.Store) driven.CorpusStore {
	if settings.Data.CorpusPath != "" {
		return jsonfile.NewCorpusFile(settings.Data.CorpusPath)
	}
	if db != nil {
		return db.CorpusStore()
	}
	return nil
}

func loadCorpus(ctx context.Context, store driven.CorpusStore) domain.Corpus {
	if store == nil {
		logger.Warn("no corpus configured; set data.corpus_path in config.toml")
		return domain.Corpus{}
	}
	corpus, err := store.LoadCorpus(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorpusUnavailable) {
			logger.Warn("%v", err)
		} else {
			logger.Error(err, "load corpus")
		}
		return domain.Corpus{}
	}
	return corpus
}

func loadSynonyms(ctx context.Context, path string) domain.SynonymDictionary {
	if path == "" {
		return nil
	}
	dict, err := jsonfile.NewSynonymFile(path).LoadSynonyms(ctx)
	if err != nil {
		logger.Warn("synonyms disabled: %v", err)
		return nil
	}
	return dict
}

// loadTemplates reads reply templates from <configDir>/templates.
func loadTemplates(configDir string) map[string][]string {
	store, err := file.NewTemplateStore(filepath.Join(configDir, "templates"), services.DefaultResponseTemplates())
	if err != nil {
		logger.Warn("templates: %v", err)
		return nil
	}
	sets, err := store.LoadTemplates()
	if err != nil {
		logger.Warn("templates: %v", err)
		return nil
	}
	return sets
}

// cacheDisk returns nil, disabling the disk tier, when dir is unusable.
func cacheDisk(dir string) driven.CacheDisk {
	if dir == "" {
		return nil
	}
	d, err := disk.NewCacheDisk(dir)
	if err != nil {
		logger.Warn("cache disk tier disabled: %v", err)
		return nil
	}
	return d
}

func indexSnapshots(dir string) driven.IndexSnapshotStore {
	if dir == "" {
		return nil
	}
	s, err := disk.NewIndexSnapshots(dir)
	if err != nil {
		logger.Warn("index snapshots disabled: %v", err)
		return nil
	}
	return s
}

// sessionStore connects to Redis when configured, otherwise (or when Redis
// is unreachable) sessions stay in process memory.
func sessionStore(ctx context.Context, settings *domain.AppSettings) driven.SessionStore {
	if settings.Session.Backend != domain.SessionBackendRedis {
		return memory.NewSessionStore()
	}

	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	ttl := time.Duration(settings.Session.TimeoutMinutes) * time.Minute
	store, err := redis.NewSessionStore(ctx, redis.Options{
		Addr:     settings.Redis.Addr,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
	}, ttl)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory sessions: %v", err)
		return memory.NewSessionStore()
	}
	return store
}
