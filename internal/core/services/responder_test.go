package services

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

func newTestGenerator() *ResponseGenerator {
	return NewResponseGenerator(WithRand(rand.New(rand.NewPCG(1, 2))))
}

func stateWith(intent string, entities map[string]any, required ...string) domain.ConversationState {
	st := domain.NewConversationState()
	st.Intent = intent
	for k, v := range entities {
		st.Entities[k] = v
	}
	st.RequiredInfo = required
	return st
}

// filledTemplates renders every template of kind with values.
func filledTemplates(kind string, values map[string]string) []string {
	out := make([]string, 0, len(responseTemplates[kind]))
	for _, tmpl := range responseTemplates[kind] {
		out = append(out, fill(tmpl, values))
	}
	return out
}

func TestResponseGenerator_Confirmation(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentBudgetInquiry, map[string]any{
		domain.SlotFoodType: "피자",
		domain.SlotBudget:   15000,
	})
	st.IntentChanged = true

	resp := g.Generate(ResponseInput{State: st})

	assert.Equal(t, domain.ActionConfirm, resp.Action)
	assert.Contains(t, filledTemplates(tmplConfirmation, map[string]string{
		"food_type": "피자",
		"budget":    "15000",
		"location":  "현재 위치",
	}), resp.Text)
}

func TestResponseGenerator_ConfirmationNeedsIntentChange(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{
		domain.SlotFoodType: "피자",
		domain.SlotBudget:   15000,
	}, domain.SlotBudget)

	resp := g.Generate(ResponseInput{State: st, Intent: domain.IntentGreeting})

	assert.Equal(t, domain.ActionGreet, resp.Action)
}

func TestResponseGenerator_RequestBudgetWithFoodType(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{domain.SlotFoodType: "치킨"}, domain.SlotBudget)

	resp := g.Generate(ResponseInput{State: st, Query: "치킨 먹고 싶어"})

	assert.Equal(t, domain.ActionRequestInfo, resp.Action)
	assert.Equal(t, domain.SlotBudget, resp.Slot)
	assert.Equal(t, "치킨 좋은 선택이에요! 예산은 얼마나 되시나요? 💰", resp.Text)
	assert.Equal(t, "request_info:budget", resp.LastBotAction())
}

func TestResponseGenerator_RequestMissingSlots(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		wantSlot string
		wantKind string
	}{
		{"budget without food type", []string{domain.SlotBudget}, domain.SlotBudget, tmplRequestBudget},
		{"location", []string{domain.SlotLocation}, domain.SlotLocation, tmplRequestLocation},
		{"time", []string{domain.SlotTime}, domain.SlotTime, tmplRequestTime},
		{"food type", []string{domain.SlotFoodType}, domain.SlotFoodType, tmplRequestFoodType},
		{"budget outranks food type", []string{domain.SlotFoodType, domain.SlotBudget}, domain.SlotBudget, tmplRequestBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator()
			st := stateWith(domain.IntentFoodRequest, nil, tt.required...)

			resp := g.Generate(ResponseInput{State: st})

			assert.Equal(t, domain.ActionRequestInfo, resp.Action)
			assert.Equal(t, tt.wantSlot, resp.Slot)
			assert.Contains(t, responseTemplates[tt.wantKind], resp.Text)
		})
	}
}

func TestResponseGenerator_UnknownMissingSlot(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, nil, "party_size")

	resp := g.Generate(ResponseInput{State: st})

	assert.Equal(t, domain.ActionRequestInfo, resp.Action)
	assert.Equal(t, "party_size", resp.Slot)
	assert.Equal(t, genericRequestInfo, resp.Text)
}

func TestResponseGenerator_Recommendation(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{
		domain.SlotFoodType: "치킨",
		domain.SlotBudget:   20000,
	}, domain.SlotBudget)
	results := []domain.SearchResult{
		{
			ShopID: "2", ShopName: "착한치킨", Category: "치킨", KeywordScore: 1.0,
			Tags:            []string{"인기"},
			Menus:           []domain.Menu{{Name: "반반치킨", Price: 9000}},
			AffordableMenus: []domain.Menu{{Name: "반반치킨", Price: 9000}},
		},
		{ShopID: "1", ShopName: "행복치킨"},
	}

	resp := g.Generate(ResponseInput{State: st, Results: results, Query: "치킨", Searched: true})

	assert.Equal(t, domain.ActionRecommend, resp.Action)
	first, alt, found := strings.Cut(resp.Text, "\n")
	require.True(t, found)
	assert.Contains(t, filledTemplates(tmplRecommendation, map[string]string{
		"shop_name": "착한치킨",
		"menu_name": "반반치킨",
		"price":     "9000",
		"food_type": "치킨",
		"reason":    "치킨 전문점이에요 가성비가 좋아요 인기가 많아요",
	}), first)
	assert.Equal(t, "다른 옵션도 있어요! 행복치킨도 괜찮아요.", alt)
}

func TestResponseGenerator_RecommendationDefaults(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, nil)
	results := []domain.SearchResult{{ShopID: "9", ShopName: "무명식당", Category: "한식", KeywordScore: 0.5}}

	resp := g.Generate(ResponseInput{State: st, Results: results, Searched: true})

	assert.Equal(t, domain.ActionRecommend, resp.Action)
	assert.NotContains(t, resp.Text, "\n")
	assert.Contains(t, filledTemplates(tmplRecommendation, map[string]string{
		"shop_name": "무명식당",
		"menu_name": fallbackMenuName,
		"price":     "0",
		"food_type": "한식",
		"reason":    defaultReason,
	}), resp.Text)
}

func TestResponseGenerator_ChooseMenu(t *testing.T) {
	g := newTestGenerator()
	result := domain.SearchResult{Menus: []domain.Menu{
		{Name: "비싼메뉴", Price: 30000, IsPopular: true},
		{Name: "싼메뉴", Price: 5000},
	}}

	t.Run("within budget first", func(t *testing.T) {
		menu, ok := g.chooseMenu(result, 10000, true)
		require.True(t, ok)
		assert.Equal(t, "싼메뉴", menu.Name)
	})

	t.Run("popular without budget", func(t *testing.T) {
		menu, ok := g.chooseMenu(result, 0, false)
		require.True(t, ok)
		assert.Equal(t, "비싼메뉴", menu.Name)
	})

	t.Run("popular when nothing fits the budget", func(t *testing.T) {
		menu, ok := g.chooseMenu(result, 1000, true)
		require.True(t, ok)
		assert.Equal(t, "비싼메뉴", menu.Name)
	})

	t.Run("no menus", func(t *testing.T) {
		_, ok := g.chooseMenu(domain.SearchResult{}, 0, false)
		assert.False(t, ok)
	})

	t.Run("unpriced menus never fit a budget", func(t *testing.T) {
		mixed := domain.SearchResult{Menus: []domain.Menu{
			{Name: "시가메뉴", Unpriced: true, IsPopular: true},
			{Name: "정가메뉴", Price: 25000},
		}}
		for range 10 {
			menu, ok := g.chooseMenu(mixed, 10000, true)
			require.True(t, ok)
			assert.Equal(t, "정가메뉴", menu.Name)
		}
	})

	t.Run("unpriced only when nothing else is listed", func(t *testing.T) {
		only := domain.SearchResult{Menus: []domain.Menu{{Name: "시가메뉴", Unpriced: true}}}
		menu, ok := g.chooseMenu(only, 10000, true)
		require.True(t, ok)
		assert.True(t, menu.Unpriced)
	})
}

func TestResponseGenerator_UnpricedMenuIsNotGoodValue(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{
		domain.SlotFoodType: "한식",
		domain.SlotBudget:   10000,
	})
	results := []domain.SearchResult{{
		ShopID: "3", ShopName: "시장식당", Category: "한식", KeywordScore: 0.5,
		Menus: []domain.Menu{{Name: "오늘의메뉴", Unpriced: true}},
	}}

	resp := g.Generate(ResponseInput{State: st, Results: results, Searched: true})

	assert.Equal(t, domain.ActionRecommend, resp.Action)
	assert.NotContains(t, resp.Text, "가성비가 좋아요")
}

func TestResponseGenerator_NoResults(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{
		domain.SlotFoodType: "마라탕",
		domain.SlotBudget:   10000,
	}, domain.SlotBudget)

	resp := g.Generate(ResponseInput{State: st, Query: "마라탕", Searched: true})

	assert.Equal(t, domain.ActionNoResults, resp.Action)
	assert.Contains(t, filledTemplates(tmplNoResults, map[string]string{"query": "마라탕"}), resp.Text)
}

func TestResponseGenerator_NoResultsUsesQueryWithoutFoodType(t *testing.T) {
	g := newTestGenerator()
	st := stateWith(domain.IntentFoodRequest, map[string]any{domain.SlotBudget: 10000}, domain.SlotBudget)

	resp := g.Generate(ResponseInput{State: st, Query: "맛있는거 추천", Searched: true})

	assert.Equal(t, domain.ActionNoResults, resp.Action)
	assert.Contains(t, resp.Text, "맛있는거 추천")
}

func TestResponseGenerator_Greeting(t *testing.T) {
	g := newTestGenerator()

	resp := g.Generate(ResponseInput{State: domain.NewConversationState(), Intent: domain.IntentGreeting, Query: "안녕"})

	assert.Equal(t, domain.ActionGreet, resp.Action)
	assert.Contains(t, responseTemplates[tmplGreeting], resp.Text)
}

func TestResponseGenerator_Clarification(t *testing.T) {
	g := newTestGenerator()

	t.Run("empty state", func(t *testing.T) {
		resp := g.Generate(ResponseInput{State: domain.NewConversationState()})

		assert.Equal(t, domain.ActionClarify, resp.Action)
		assert.Contains(t, responseTemplates[tmplClarification], resp.Text)
	})

	t.Run("no results outside food requests", func(t *testing.T) {
		st := stateWith(domain.IntentGeneralChat, nil)

		resp := g.Generate(ResponseInput{State: st, Query: "날씨", Searched: true})

		assert.Equal(t, domain.ActionClarify, resp.Action)
	})
}

func TestResponseGenerator_DeterministicWithSeed(t *testing.T) {
	a := newTestGenerator()
	b := newTestGenerator()
	for i := 0; i < 10; i++ {
		in := ResponseInput{State: domain.NewConversationState(), Intent: domain.IntentGreeting}
		assert.Equal(t, a.Generate(in).Text, b.Generate(in).Text, fmt.Sprintf("turn %d", i))
	}
}

func TestErrorResponse(t *testing.T) {
	assert.Equal(t, "응답 시간이 초과되었어요. 잠시 후 다시 시도해주세요.", ErrorResponse(domain.ErrorTimeout))
	assert.Equal(t, ErrorResponse(domain.ErrorGeneral), ErrorResponse(domain.ErrorCategory("unknown")))
	assert.NotEqual(t, ErrorResponse(domain.ErrorGeneral), ErrorResponse(domain.ErrorInvalidInput))
}

func TestFill(t *testing.T) {
	assert.Equal(t, "행복치킨의 후라이드", fill("{shop_name}의 {menu_name}", map[string]string{
		"shop_name": "행복치킨",
		"menu_name": "후라이드",
	}))
	assert.Equal(t, "{unknown}", fill("{unknown}", nil))
}

func TestResponseGenerator_WithTemplates(t *testing.T) {
	g := NewResponseGenerator(
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithTemplates(map[string][]string{
			"greeting":      {"어서와요!"},
			"clarification": {},
			"not_a_set":     {"무시"},
		}),
	)

	resp := g.Generate(ResponseInput{State: domain.NewConversationState(), Intent: domain.IntentGreeting})
	assert.Equal(t, "어서와요!", resp.Text)

	resp = g.Generate(ResponseInput{State: domain.NewConversationState(), Intent: domain.IntentGeneralChat})
	assert.Contains(t, DefaultResponseTemplates()["clarification"], resp.Text, "empty set keeps defaults")
}

func TestDefaultResponseTemplates_ReturnsCopy(t *testing.T) {
	sets := DefaultResponseTemplates()
	sets["greeting"][0] = "changed"

	assert.NotEqual(t, "changed", DefaultResponseTemplates()["greeting"][0])
	assert.Len(t, sets, 9)
}
