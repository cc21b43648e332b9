// Package mcp provides an MCP (Model Context Protocol) server adapter for Naviyam.
// It lets AI assistants hold recommendation dialogues and search the shop corpus.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
