package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Naviyam resources.
	uriScheme = "naviyam://"

	mimeJSON = "application/json"
	mimeText = "text/plain"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "shops",
		Name:        "shops",
		Description: "List of all shops in the corpus",
		MIMEType:    mimeJSON,
	}, s.handleShopsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "shops/{shopId}",
		Name:        "shop",
		Description: "A shop with its menus",
		MIMEType:    mimeJSON,
	}, s.handleShopResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Text of a corpus document such as shop_12 or menu_7",
		MIMEType:    mimeText,
	}, s.handleDocumentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session",
		Description: "Snapshot of a conversation session",
		MIMEType:    mimeJSON,
	}, s.handleSessionResource)
}

// handleShopsResource returns a summary of every shop.
func (s *Server) handleShopsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return textResult(req.Params.URI, mimeJSON, "[]"), nil
	}

	type shopInfo struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Menus    int    `json:"menus"`
	}

	shops := s.ports.Corpus.Shops()
	infos := make([]shopInfo, len(shops))
	for i := range shops {
		infos[i] = shopInfo{
			ID:       shops[i].ID,
			Name:     shops[i].Name,
			Category: shops[i].Category,
			Menus:    len(shops[i].Menus),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleShopResource returns one shop.
func (s *Server) handleShopResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractID(req.Params.URI, "shops/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	shop, err := s.ports.Corpus.Shop(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting shop: %w", err)
	}
	return jsonResult(req.Params.URI, shop)
}

// handleDocumentResource returns the text of one corpus document.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractID(req.Params.URI, "documents/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Corpus.Document(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return textResult(req.Params.URI, mimeText, doc.Content()), nil
}

// handleSessionResource returns a session snapshot.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sessions == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractID(req.Params.URI, "sessions/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snapshot, err := s.ports.Sessions.ExportSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("exporting session: %w", err)
	}
	if snapshot == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, snapshot)
}

// extractID returns the path segment after uriScheme+prefix, e.g. the
// shop id of naviyam://shops/{shopId}. Nested paths are rejected.
func extractID(uri, prefix string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+prefix)
	if !ok || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return textResult(uri, mimeJSON, string(data)), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}
