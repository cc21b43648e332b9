package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

const defaultSearchLimit = 5

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Text      string `json:"text" jsonschema:"what the child said"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue; omit to start a new one"`
	UserID    string `json:"user_id,omitempty" jsonschema:"optional user identifier"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	ResponseText    string                 `json:"response_text"`
	SessionID       string                 `json:"session_id"`
	Intent          string                 `json:"intent,omitempty"`
	Action          string                 `json:"action"`
	MissingInfo     []string               `json:"missing_info,omitempty"`
	Recommendations []RecommendationOutput `json:"recommendations"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"food type or free text to search for"`
	Budget   int    `json:"budget,omitempty" jsonschema:"maximum menu price in won"`
	Location string `json:"location,omitempty" jsonschema:"area such as a district or station"`
	Time     string `json:"time,omitempty" jsonschema:"when the child wants to eat"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of shops to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []RecommendationOutput `json:"results"`
	Count   int                    `json:"count"`
}

// RecommendationOutput represents one recommended shop.
type RecommendationOutput struct {
	ShopID   string       `json:"shop_id"`
	ShopName string       `json:"shop_name"`
	Category string       `json:"category"`
	Score    float64      `json:"score"`
	Menus    []MenuOutput `json:"menus,omitempty"`
}

// MenuOutput is a menu line of a recommendation.
type MenuOutput struct {
	Name  string `json:"name"`
	Price *int   `json:"price,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Send one utterance to the restaurant recommendation dialogue",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search shops by food type with optional budget, location and time filters",
	}, s.handleSearch)
}

// handleChat handles the chat tool invocation.
func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	if input.Text == "" {
		return nil, ChatOutput{}, errors.New("text is required")
	}

	result := s.ports.Chat.ProcessTurn(ctx, domain.TurnRequest{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Text:      input.Text,
	})

	return nil, ChatOutput{
		ResponseText:    result.ResponseText,
		SessionID:       result.SessionID,
		Intent:          result.Intent,
		Action:          string(result.Action),
		MissingInfo:     result.MissingInfo,
		Recommendations: toRecommendations(result.Recommendations),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	sc := domain.SearchContext{
		Budget:   input.Budget,
		Location: input.Location,
		Time:     input.Time,
	}
	results, err := s.ports.Search.SearchByContext(ctx, input.Query, sc, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results: toRecommendations(results),
		Count:   len(results),
	}, nil
}

// toRecommendations converts search results. When the budget filter ran,
// only the affordable menus are listed.
func toRecommendations(results []domain.SearchResult) []RecommendationOutput {
	out := make([]RecommendationOutput, len(results))
	for i := range results {
		menus := results[i].Menus
		if len(results[i].AffordableMenus) > 0 {
			menus = results[i].AffordableMenus
		}
		out[i] = RecommendationOutput{
			ShopID:   results[i].ShopID,
			ShopName: results[i].ShopName,
			Category: results[i].Category,
			Score:    results[i].Score,
			Menus:    make([]MenuOutput, len(menus)),
		}
		for j, m := range menus {
			out[i].Menus[j] = MenuOutput{Name: m.Name}
			if !m.Unpriced {
				price := m.Price
				out[i].Menus[j].Price = &price
			}
		}
	}
	return out
}
