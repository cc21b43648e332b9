package domain

// ScoredShop is a shop identifier with a relevance score from one retriever.
type ScoredShop struct {
	ShopID string  `json:"shop_id"`
	Score  float64 `json:"score"`
}

// HybridOptions configures score fusion.
// The weights are independent and need not sum to 1.
type HybridOptions struct {
	// TopK is the maximum number of fused results.
	TopK int

	// KeywordWeight scales the normalised keyword score.
	KeywordWeight float64

	// VectorWeight scales the vector similarity score.
	VectorWeight float64
}

// SearchResult is a fused candidate with shop metadata attached.
type SearchResult struct {
	ShopID       string   `json:"shop_id"`
	ShopName     string   `json:"shop_name"`
	Category     string   `json:"category"`
	Score        float64  `json:"score"`
	KeywordScore float64  `json:"keyword_score"`
	VectorScore  float64  `json:"vector_score"`
	Menus        []Menu   `json:"menus"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	// AffordableMenus is set by the budget filter.
	AffordableMenus []Menu `json:"affordable_menus,omitempty"`
}

// HasTag reports whether the shop carries the given tag.
func (r SearchResult) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SearchContext carries the slot values used to post-filter candidates.
// Zero values mean the filter is not applied.
type SearchContext struct {
	Budget   int
	Location string
	Time     string
}

// SearchContextFromEntities builds a context from dialogue slots.
func SearchContextFromEntities(entities map[string]any) SearchContext {
	var sc SearchContext
	if b, ok := AsInt(entities[SlotBudget]); ok {
		sc.Budget = b
	}
	if loc, ok := entities[SlotLocation].(string); ok {
		sc.Location = loc
	}
	if t, ok := entities[SlotTime].(string); ok {
		sc.Time = t
	}
	return sc
}

// Filters renders the context as the mapping used in cache keys.
func (sc SearchContext) Filters() map[string]any {
	f := make(map[string]any)
	if sc.Budget > 0 {
		f[SlotBudget] = sc.Budget
	}
	if sc.Location != "" {
		f[SlotLocation] = sc.Location
	}
	if sc.Time != "" {
		f[SlotTime] = sc.Time
	}
	return f
}

// InvertedIndex maps a lowercase token to the sorted shop ids containing it.
type InvertedIndex map[string][]string
