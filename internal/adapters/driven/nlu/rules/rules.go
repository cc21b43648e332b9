// Package rules provides a keyword and pattern based driven.NLU for the
// bundled CLI and MCP front ends. It recognises the dialogue intents the
// tracker understands and extracts food type, budget, location and time.
package rules

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Compile-time check that NLU implements driven.NLU.
var _ driven.NLU = (*NLU)(nil)

// fallbackConfidence is reported when no rule matched.
const fallbackConfidence = 0.3

// Keyword hits score 1 and pattern hits score 2 before weighting.
const (
	keywordScore = 1.0
	patternScore = 2.0
)

var (
	foodCategories = []string{
		"한식", "중식", "일식", "양식", "분식", "치킨", "피자", "햄버거",
		"패스트푸드", "아시안", "카페", "디저트", "베이커리", "편의점",
	}
	foodDishes = []string{
		"김치찌개", "된장찌개", "라면", "떡볶이", "짜장면", "짬뽕", "탕수육",
		"초밥", "돈까스", "카레", "쌀국수", "팟타이", "샌드위치", "도시락",
		"삼각김밥", "김밥", "파스타", "케이크", "빵",
	}

	categoryPattern = regexp.MustCompile(strings.Join(foodCategories, "|"))
	dishPattern     = regexp.MustCompile(strings.Join(foodDishes, "|"))

	manPattern    = regexp.MustCompile(`(\d+)\s*만\s*(?:(\d+)\s*천)?`)
	cheonPattern  = regexp.MustCompile(`(\d+)\s*천`)
	wonPattern    = regexp.MustCompile(`(\d[\d,]*)\s*원`)
	bareManWon    = regexp.MustCompile(`(^|[^\d])만\s*원`)
	oclockPattern = regexp.MustCompile(`(\d{1,2})\s*시`)
)

var nearbyWords = []string{"근처", "주변", "가까운", "여기서", "동네"}

var timeWords = []string{"지금", "현재", "바로", "오늘", "내일", "아침", "점심", "저녁", "밤"}

// Particles trimmed from a token before testing it as a place name.
var placeSuffixes = []string{"에서", "근처", "주변", "쪽", "으로", "에", "로"}

// Words ending in a place suffix that are not places.
var notPlaces = map[string]bool{
	"친구": true, "가구": true, "도구": true, "운동": true,
	"행동": true, "이동": true, "자동": true, "출구": true,
}

type intentRule struct {
	intent   string
	keywords []string
	patterns []*regexp.Regexp
	weight   float64
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

var intentRules = []intentRule{
	{
		intent: domain.IntentFoodRequest,
		keywords: append(append([]string{"먹고싶어", "추천", "맛집", "뭐먹", "음식", "메뉴"},
			foodCategories...), foodDishes...),
		patterns: compileAll(
			`(먹고\s*싶|드시고\s*싶)`,
			`(추천|소개)`,
			`(뭐\s*먹|무엇.*먹)`,
			`(맛집|맛있는.*곳)`,
			categoryPattern.String(),
			dishPattern.String(),
		),
		weight: 2.0,
	},
	{
		intent:   domain.IntentBudgetInquiry,
		keywords: []string{"원", "돈", "예산", "비싸", "저렴", "가격", "얼마"},
		patterns: compileAll(
			`\d+\s*(원|만|천)`,
			`(얼마|가격|비용)`,
			`(비싸|저렴|가성비)`,
			`(예산|용돈|부족)`,
		),
		weight: 1.3,
	},
	{
		intent:   domain.IntentLocationInquiry,
		keywords: []string{"근처", "주변", "가까운", "여기서", "우리동네", "지역"},
		patterns: compileAll(
			`(근처|주변|가까운)`,
			`(여기서|이곳에서)`,
			`(우리.*동네|동네.*맛집)`,
			`(거리|위치|어디)`,
		),
		weight: 1.2,
	},
	{
		intent:   domain.IntentTimeInquiry,
		keywords: []string{"언제", "시간", "열려", "영업", "문열어", "몇시"},
		patterns: compileAll(
			`(언제|몇\s*시|시간)`,
			`(열려|영업|문.*열)`,
			`(닫혀|문.*닫|영업.*끝)`,
		),
		weight: 1.1,
	},
	{
		intent:   domain.IntentGreeting,
		keywords: []string{"안녕", "하이", "헬로", "반가"},
		patterns: compileAll(`(안녕|하이|헬로|반가워|반갑)`),
		weight:   1.5,
	},
	{
		intent:   domain.IntentGeneralChat,
		keywords: []string{"고마워", "감사", "잘먹었어", "맛있었어", "좋았어"},
		patterns: compileAll(
			`(고마워|감사|ㄱㅅ)`,
			`(잘.*먹었|맛있었|좋았)`,
			`(어떻게|어때|괜찮)`,
		),
		weight: 0.8,
	},
}

// NLU classifies utterances with weighted keyword and pattern rules.
// It is stateless and safe for concurrent use.
type NLU struct{}

// New creates a rule-based NLU.
func New() *NLU {
	return &NLU{}
}

// Process extracts the intent and entities of one utterance.
// Entities that were not found are omitted from the map.
func (n *NLU) Process(ctx context.Context, text, _ string) (domain.NLUResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.NLUResult{}, err
	}

	normalised := strings.ToLower(strings.TrimSpace(text))
	intent, confidence := classify(normalised)
	return domain.NLUResult{
		Intent:     intent,
		Entities:   extractEntities(normalised),
		Confidence: confidence,
	}, nil
}

// classify returns the best scoring intent and its share of the total score.
// Ties go to the rule listed first.
func classify(text string) (string, float64) {
	var (
		best      string
		bestScore float64
		total     float64
	)
	for _, rule := range intentRules {
		var score float64
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				score += keywordScore
			}
		}
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				score += patternScore
			}
		}
		score *= rule.weight
		total += score
		if score > bestScore {
			best, bestScore = rule.intent, score
		}
	}

	if bestScore == 0 {
		return domain.IntentGeneralChat, fallbackConfidence
	}
	return best, bestScore / max(total, 1)
}

func extractEntities(text string) map[string]any {
	entities := make(map[string]any)
	if food := extractFoodType(text); food != "" {
		entities[domain.SlotFoodType] = food
	}
	if budget, ok := ParseBudget(text); ok {
		entities[domain.SlotBudget] = budget
	}
	if loc := extractLocation(text); loc != "" {
		entities[domain.SlotLocation] = loc
	}
	if t := extractTime(text); t != "" {
		entities[domain.SlotTime] = t
	}
	return entities
}

// extractFoodType prefers a category over a dish, leftmost match first.
func extractFoodType(text string) string {
	if m := categoryPattern.FindString(text); m != "" {
		return m
	}
	return dishPattern.FindString(text)
}

// ParseBudget reads a Korean money amount such as "2만원", "1만5천원",
// "5천원", "15,000원" or "만원" and returns it in won.
func ParseBudget(text string) (int, bool) {
	if m := manPattern.FindStringSubmatch(text); m != nil {
		amount := atoi(m[1]) * 10000
		if m[2] != "" {
			amount += atoi(m[2]) * 1000
		}
		return amount, amount > 0
	}
	if m := cheonPattern.FindStringSubmatch(text); m != nil {
		amount := atoi(m[1]) * 1000
		return amount, amount > 0
	}
	if m := wonPattern.FindStringSubmatch(text); m != nil {
		amount := atoi(strings.ReplaceAll(m[1], ",", ""))
		return amount, amount > 0
	}
	if bareManWon.MatchString(text) {
		return 10000, true
	}
	return 0, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// extractLocation returns a place name ending in 구, 동 or 역, or else a
// proximity word such as "근처".
func extractLocation(text string) string {
	for _, token := range strings.Fields(text) {
		place := trimPlaceSuffix(token)
		if isPlaceName(place) {
			return place
		}
	}
	for _, word := range nearbyWords {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}

func trimPlaceSuffix(token string) string {
	for _, suffix := range placeSuffixes {
		if trimmed, ok := strings.CutSuffix(token, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return token
}

func isPlaceName(word string) bool {
	if utf8.RuneCountInString(word) < 2 || notPlaces[word] {
		return false
	}
	return strings.HasSuffix(word, "구") || strings.HasSuffix(word, "동") || strings.HasSuffix(word, "역")
}

func extractTime(text string) string {
	if m := oclockPattern.FindStringSubmatch(text); m != nil {
		return m[1] + "시"
	}
	for _, word := range timeWords {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}
