package driven

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// CorpusStore loads the shop knowledge corpus.
type CorpusStore interface {
	// LoadCorpus returns the full corpus.
	// Returns domain.ErrCorpusUnavailable (wrapped) if the source cannot be read.
	LoadCorpus(ctx context.Context) (domain.Corpus, error)
}

// CorpusWriter persists a corpus, for importing one source into another.
type CorpusWriter interface {
	// SaveCorpus replaces the stored corpus.
	SaveCorpus(ctx context.Context, corpus domain.Corpus) error
}

// SynonymSource loads the synonym dictionary.
type SynonymSource interface {
	// LoadSynonyms returns category -> term -> synonyms.
	LoadSynonyms(ctx context.Context) (domain.SynonymDictionary, error)
}
