package services

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// Template sets, one per generator branch.
const (
	tmplRequestBudget   = "request_budget"
	tmplRequestLocation = "request_location"
	tmplRequestTime     = "request_time"
	tmplRequestFoodType = "request_food_type"
	tmplRecommendation  = "food_recommendation"
	tmplNoResults       = "no_results_with_context"
	tmplGreeting        = "greeting"
	tmplClarification   = "clarification"
	tmplConfirmation    = "confirmation"
)

var responseTemplates = map[string][]string{
	tmplRequestBudget: {
		"예산이 얼마나 되시나요? 💰",
		"얼마 정도로 생각하고 계신가요?",
		"예산을 알려주시면 더 정확히 추천해드릴게요!",
		"가격대는 어느 정도로 생각하세요?",
	},
	tmplRequestLocation: {
		"어느 지역에서 찾으시나요? 📍",
		"위치를 알려주시면 근처 맛집을 추천해드릴게요!",
		"어디 근처가 좋으신가요?",
		"지역을 알려주세요!",
	},
	tmplRequestTime: {
		"몇 시쯤 가실 예정이신가요? 🕐",
		"언제 방문하실 예정이신가요?",
		"시간대를 알려주시면 영업 중인 곳을 추천해드릴게요!",
	},
	tmplRequestFoodType: {
		"어떤 음식이 드시고 싶으세요? 🍽️",
		"드시고 싶은 메뉴를 알려주시면 찾아드릴게요!",
		"치킨, 피자, 분식 중에 어떤 게 좋으세요?",
	},
	tmplRecommendation: {
		"{shop_name}의 {menu_name}({price}원) 어떠세요? {reason}",
		"{shop_name}에서 {menu_name} 추천드려요! {price}원이에요. {reason}",
		"오! {food_type} 좋은 선택이에요! {shop_name}의 {menu_name}이 유명해요! 💝",
	},
	tmplNoResults: {
		"죄송해요, '{query}' 관련 식당을 찾지 못했어요. 😢 다른 메뉴는 어떠세요?",
		"'{query}'로 검색했는데 결과가 없네요. 비슷한 다른 음식을 추천해드릴까요?",
		"앗, '{query}' 데이터가 없어서 추천이 어려워요. 다른 종류는 어떠세요?",
	},
	tmplGreeting: {
		"안녕하세요! 맛있는 식사 찾아드릴게요! 🍽️",
		"반가워요! 오늘 뭐 드시고 싶으세요?",
		"어서오세요! 맛집 추천 도와드릴게요!",
	},
	tmplClarification: {
		"잘 이해하지 못했어요. 어떤 음식을 찾으시는지 다시 말씀해주시겠어요?",
		"음.. 무슨 말씀인지 잘 모르겠어요. 예를 들어 '치킨 추천해줘' 이런 식으로 말씀해주세요!",
		"헷갈리네요! 간단하게 음식 종류나 예산을 말씀해주세요!",
	},
	tmplConfirmation: {
		"{location} 근처 {food_type}을 찾아드릴까요? 예산은 {budget}원이 맞으신가요?",
		"확인해드릴게요. {food_type} 맛집, {budget}원 예산으로 찾아드릴까요?",
		"{food_type}을 원하시고 예산은 {budget}원이시군요! 맞나요?",
	},
}

// Fixed phrases outside the template sets.
const (
	budgetWithFoodTypeFormat = "%s 좋은 선택이에요! 예산은 얼마나 되시나요? 💰"
	genericRequestInfo       = "추가 정보를 알려주시면 더 정확한 추천을 해드릴 수 있어요!"
	alternativeFormat        = "\n다른 옵션도 있어요! %s도 괜찮아요."
	defaultReason            = "맛있어요"
	fallbackMenuName         = "추천메뉴"
)

// Recommendation reason thresholds.
const (
	specialtyKeywordScore = 0.8
	valueBudgetRatio      = 0.7
	popularTag            = "인기"
)

// missingSlotPriority is the order in which missing slots are requested.
var missingSlotPriority = []string{domain.SlotBudget, domain.SlotLocation, domain.SlotTime, domain.SlotFoodType}

var errorResponses = map[domain.ErrorCategory]string{
	domain.ErrorGeneral:      "죄송해요, 일시적인 오류가 발생했어요. 다시 시도해주세요! 🙏",
	domain.ErrorTimeout:      "응답 시간이 초과되었어요. 잠시 후 다시 시도해주세요.",
	domain.ErrorInvalidInput: "입력을 이해하지 못했어요. 다시 말씀해주시겠어요?",
}

// ErrorResponse returns the fixed apology for an error category.
// Unknown categories get the general apology.
func ErrorResponse(category domain.ErrorCategory) string {
	if text, ok := errorResponses[category]; ok {
		return text
	}
	return errorResponses[domain.ErrorGeneral]
}

// ResponseInput is everything the generator looks at for one turn.
type ResponseInput struct {
	// State is the dialogue state after this turn's update.
	State domain.ConversationState

	// Results are the ranked candidates; empty when nothing matched or no search ran.
	Results []domain.SearchResult

	// Query is the search query, or the user text when no search ran.
	Query string

	// Intent is the intent detected for this turn.
	Intent string

	// Searched reports whether a search ran this turn.
	Searched bool
}

// ResponseGenerator chooses a reply from dialogue state and search results.
type ResponseGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	templates map[string][]string
}

// GeneratorOption configures a ResponseGenerator.
type GeneratorOption func(*ResponseGenerator)

// WithRand fixes the random source used for template and menu choice.
func WithRand(rng *rand.Rand) GeneratorOption {
	return func(g *ResponseGenerator) { g.rng = rng }
}

// WithTemplates overrides template sets by name. Empty sets and unknown
// names are ignored.
func WithTemplates(sets map[string][]string) GeneratorOption {
	return func(g *ResponseGenerator) {
		for kind, options := range sets {
			if _, known := responseTemplates[kind]; !known || len(options) == 0 {
				continue
			}
			g.templates[kind] = slices.Clone(options)
		}
	}
}

// DefaultResponseTemplates returns a copy of the built-in template sets.
func DefaultResponseTemplates() map[string][]string {
	out := make(map[string][]string, len(responseTemplates))
	for kind, options := range responseTemplates {
		out[kind] = slices.Clone(options)
	}
	return out
}

// NewResponseGenerator creates a generator seeded from the clock unless WithRand is given.
func NewResponseGenerator(opts ...GeneratorOption) *ResponseGenerator {
	g := &ResponseGenerator{templates: DefaultResponseTemplates()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return g
}

// Generate picks the first matching branch: confirmation, missing slot,
// recommendation, no results, greeting, clarification.
func (g *ResponseGenerator) Generate(in ResponseInput) domain.Response {
	state := in.State

	if len(state.Entities) >= 2 && state.IntentChanged {
		return domain.Response{Text: g.confirmation(state), Action: domain.ActionConfirm}
	}

	if missing := state.MissingInfo(); len(missing) > 0 && !in.Searched {
		slot, text := g.requestMissing(missing, state)
		return domain.Response{Text: text, Action: domain.ActionRequestInfo, Slot: slot}
	}

	if len(in.Results) > 0 {
		return domain.Response{Text: g.recommendation(in.Results, state), Action: domain.ActionRecommend}
	}

	if in.Searched && state.Intent == domain.IntentFoodRequest && in.Query != "" {
		food, ok := state.EntityString(domain.SlotFoodType)
		if !ok {
			food = in.Query
		}
		text := fill(g.pick(tmplNoResults), map[string]string{"query": food})
		return domain.Response{Text: text, Action: domain.ActionNoResults}
	}

	if in.Intent == domain.IntentGreeting {
		return domain.Response{Text: g.pick(tmplGreeting), Action: domain.ActionGreet}
	}

	return domain.Response{Text: g.pick(tmplClarification), Action: domain.ActionClarify}
}

func (g *ResponseGenerator) confirmation(state domain.ConversationState) string {
	food, ok := state.EntityString(domain.SlotFoodType)
	if !ok {
		food = "음식"
	}
	budget := "예산"
	if b, ok := state.EntityInt(domain.SlotBudget); ok {
		budget = strconv.Itoa(b)
	}
	location, ok := state.EntityString(domain.SlotLocation)
	if !ok {
		location = "현재 위치"
	}
	return fill(g.pick(tmplConfirmation), map[string]string{
		"food_type": food,
		"budget":    budget,
		"location":  location,
	})
}

func (g *ResponseGenerator) requestMissing(missing []string, state domain.ConversationState) (string, string) {
	for _, slot := range missingSlotPriority {
		if !slices.Contains(missing, slot) {
			continue
		}
		switch slot {
		case domain.SlotBudget:
			if food, ok := state.EntityString(domain.SlotFoodType); ok {
				return slot, fmt.Sprintf(budgetWithFoodTypeFormat, food)
			}
			return slot, g.pick(tmplRequestBudget)
		case domain.SlotLocation:
			return slot, g.pick(tmplRequestLocation)
		case domain.SlotTime:
			return slot, g.pick(tmplRequestTime)
		case domain.SlotFoodType:
			return slot, g.pick(tmplRequestFoodType)
		}
	}
	return missing[0], genericRequestInfo
}

func (g *ResponseGenerator) recommendation(results []domain.SearchResult, state domain.ConversationState) string {
	best := results[0]

	food, ok := state.EntityString(domain.SlotFoodType)
	if !ok {
		food = best.Category
	}
	budget, hasBudget := state.EntityInt(domain.SlotBudget)
	hasBudget = hasBudget && budget > 0

	menu, found := g.chooseMenu(best, budget, hasBudget)
	if !found {
		menu = domain.Menu{Name: fallbackMenuName, Unpriced: true}
	}

	var reasons []string
	if best.KeywordScore > specialtyKeywordScore {
		reasons = append(reasons, food+" 전문점이에요")
	}
	if hasBudget && !menu.Unpriced && float64(menu.Price) <= float64(budget)*valueBudgetRatio {
		reasons = append(reasons, "가성비가 좋아요")
	}
	if best.HasTag(popularTag) {
		reasons = append(reasons, "인기가 많아요")
	}
	reason := defaultReason
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " ")
	}

	text := fill(g.pick(tmplRecommendation), map[string]string{
		"shop_name": best.ShopName,
		"menu_name": menu.Name,
		"price":     strconv.Itoa(menu.Price),
		"food_type": food,
		"reason":    reason,
	})
	if len(results) > 1 {
		text += fmt.Sprintf(alternativeFormat, results[1].ShopName)
	}
	return text
}

// chooseMenu prefers menus within budget, then popular menus, then any
// menu. Unpriced menus are only chosen when a shop lists nothing else.
func (g *ResponseGenerator) chooseMenu(result domain.SearchResult, budget int, hasBudget bool) (domain.Menu, bool) {
	menus := pricedMenus(result.Menus)
	if len(menus) == 0 {
		menus = result.Menus
	}

	var candidates []domain.Menu
	if hasBudget {
		candidates = pricedMenus(result.AffordableMenus)
		if len(candidates) == 0 {
			for _, m := range menus {
				if !m.Unpriced && m.Price <= budget {
					candidates = append(candidates, m)
				}
			}
		}
	}
	if len(candidates) == 0 {
		for _, m := range menus {
			if m.IsPopular {
				candidates = append(candidates, m)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = menus
	}
	if len(candidates) == 0 {
		return domain.Menu{}, false
	}
	return candidates[g.intN(len(candidates))], true
}

func pricedMenus(menus []domain.Menu) []domain.Menu {
	var priced []domain.Menu
	for _, m := range menus {
		if !m.Unpriced {
			priced = append(priced, m)
		}
	}
	return priced
}

func (g *ResponseGenerator) pick(kind string) string {
	options := g.templates[kind]
	return options[g.intN(len(options))]
}

func (g *ResponseGenerator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// fill replaces {name} placeholders.
func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
