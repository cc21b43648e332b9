// Package ai builds the optional vector search stack (embedding service
// plus vector store) from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/embedding/openai"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driven/vector/qdrant"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// settingsHint is appended to errors the user can fix in config.toml.
const settingsHint = "Run 'naviyam settings show' to check your configuration"

// InitResult contains the result of vector stack initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if hybrid was requested but keyword-only is used.
}

// HybridReady reports whether both halves of vector search are available.
func (r *InitResult) HybridReady() bool {
	return r.EmbeddingService != nil && r.VectorStore != nil
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
}

// Init creates the embedding service and vector store when the search mode
// asks for hybrid retrieval. Failures fall back to keyword-only search and
// are reported as warnings.
func Init(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil || !settings.Search.Mode.RequiresEmbedding() {
		return result
	}

	fallBack := func(warning string) *InitResult {
		result.Close()
		return &InitResult{Warnings: append(result.Warnings, warning), FellBack: true}
	}

	embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return fallBack(err.Error())
	}
	if embedder == nil {
		return fallBack("hybrid search requested but no embedding provider is configured")
	}
	result.EmbeddingService = embedder

	store, err := CreateVectorStore(settings.Vector)
	if err != nil {
		return fallBack(fmt.Sprintf("%v: %v", domain.ErrVectorIndexUnavailable, err))
	}
	if store == nil {
		return fallBack("hybrid search requested but vector.url is not set")
	}
	result.VectorStore = store
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured provider.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateVectorStore connects to qdrant. Returns nil if no URL is configured.
func CreateVectorStore(settings domain.VectorSettings) (driven.VectorStore, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	return qdrant.New(qdrant.Config{
		URL:        settings.URL,
		Collection: settings.Collection,
		APIKey:     settings.APIKey,
	})
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensions,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		RequestsPerSecond: settings.RequestsPerSecond,
		MaxRetries:        2,
	})
}
