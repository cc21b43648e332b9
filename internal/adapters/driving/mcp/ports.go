package mcp

import (
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat runs dialogue turns.
	Chat driving.ChatService

	// Search provides shop retrieval.
	Search driving.SearchService

	// Sessions exposes session snapshots. Optional.
	Sessions driving.SessionService

	// Corpus exposes shops and documents. Optional.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
