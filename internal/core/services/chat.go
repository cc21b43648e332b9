package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// recommendKeyword in the user text asks for a search even without a food type.
const recommendKeyword = "추천"

// DefaultTurnTopK is the number of recommendations per turn.
const DefaultTurnTopK = 5

// ChatService chains state update, retrieval and response generation.
type ChatService struct {
	sessions  driving.SessionService
	tracker   *DialogueTracker
	search    driving.SearchService
	nlu       driven.NLU
	generator *ResponseGenerator
	topK      int
}

// NewChatService creates a chat service. A non-positive topK selects DefaultTurnTopK.
func NewChatService(
	sessions driving.SessionService,
	search driving.SearchService,
	nlu driven.NLU,
	generator *ResponseGenerator,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = DefaultTurnTopK
	}
	return &ChatService{
		sessions:  sessions,
		tracker:   NewDialogueTracker(sessions),
		search:    search,
		nlu:       nlu,
		generator: generator,
		topK:      topK,
	}
}

// ProcessTurn handles one user utterance. Any failure, including a panic,
// becomes an apology response; the session ID is always returned when known.
func (s *ChatService) ProcessTurn(ctx context.Context, req domain.TurnRequest) (result domain.TurnResult) {
	logger.Section("Turn")
	sessionID := req.SessionID

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Errorf("panic: %v", r), "turn failed for session %s", sessionID)
			result = errorResult(sessionID, domain.ErrorGeneral)
		}
	}()

	res, err := s.processTurn(ctx, req, &sessionID)
	if err != nil {
		category := domain.ErrorGeneral
		if errors.Is(err, context.DeadlineExceeded) {
			category = domain.ErrorTimeout
		}
		logger.Error(err, "turn failed for session %s", sessionID)
		return errorResult(sessionID, category)
	}
	return res
}

func (s *ChatService) processTurn(ctx context.Context, req domain.TurnRequest, sessionID *string) (domain.TurnResult, error) {
	sess, err := s.resolveSession(ctx, req)
	if err != nil {
		return domain.TurnResult{}, err
	}
	*sessionID = sess.ID

	text := strings.TrimSpace(req.Text)
	if _, err := s.sessions.AddMessage(ctx, sess.ID, domain.RoleUser, text, nil); err != nil {
		return domain.TurnResult{}, fmt.Errorf("add user message: %w", err)
	}

	if text == "" {
		resp := s.generator.Generate(ResponseInput{State: domain.NewConversationState()})
		return s.finish(ctx, sess.ID, resp, nil, sess.State, "")
	}

	if s.nlu == nil {
		return domain.TurnResult{}, domain.ErrNLUUnavailable
	}
	nlu, err := s.nlu.Process(ctx, text, req.UserID)
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("nlu: %w", err)
	}
	logger.Info("NLU: intent=%s entities=%v confidence=%.2f", nlu.Intent, nlu.Entities, nlu.Confidence)

	if _, err := s.tracker.Observe(ctx, sess.ID, nlu); err != nil {
		return domain.TurnResult{}, fmt.Errorf("update state: %w", err)
	}

	sess, err = s.sessions.GetSession(ctx, sess.ID)
	if err != nil {
		return domain.TurnResult{}, err
	}
	if sess == nil {
		return domain.TurnResult{}, fmt.Errorf("session %s vanished mid-turn: %w", *sessionID, domain.ErrNotFound)
	}
	state := sess.State

	input := ResponseInput{State: state, Query: text, Intent: nlu.Intent}
	if query, ok := searchQuery(state, text); ok {
		results, err := s.search.SearchByContext(ctx, query, domain.SearchContextFromEntities(state.Entities), s.topK)
		if err != nil {
			return domain.TurnResult{}, fmt.Errorf("search: %w", err)
		}
		logger.Info("Search complete: %d results for %q", len(results), query)
		input.Results = results
		input.Query = query
		input.Searched = true
	}

	resp := s.generator.Generate(input)
	return s.finish(ctx, sess.ID, resp, input.Results, state, nlu.Intent)
}

// resolveSession returns the requested session, or a new one when none
// was requested or the requested one no longer exists.
func (s *ChatService) resolveSession(ctx context.Context, req domain.TurnRequest) (*domain.Session, error) {
	if req.SessionID != "" {
		sess, err := s.sessions.GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
		logger.Info("Session %s not found, starting a new one", req.SessionID)
	}
	return s.sessions.CreateSession(ctx, req.UserID)
}

// searchQuery decides whether this turn searches. Searching waits until the
// required slots are filled and is skipped while a confirmation is pending.
// The query is the food type, or the raw text when the user asked for a recommendation.
func searchQuery(state domain.ConversationState, text string) (string, bool) {
	if len(state.Entities) >= 2 && state.IntentChanged {
		return "", false
	}
	if !state.IsComplete() {
		return "", false
	}
	if food, ok := state.EntityString(domain.SlotFoodType); ok {
		return food, true
	}
	if strings.Contains(text, recommendKeyword) {
		return text, true
	}
	return "", false
}

func (s *ChatService) finish(
	ctx context.Context,
	sessionID string,
	resp domain.Response,
	results []domain.SearchResult,
	state domain.ConversationState,
	intent string,
) (domain.TurnResult, error) {
	action := resp.LastBotAction()
	if _, err := s.sessions.UpdateState(ctx, sessionID, domain.StateUpdate{LastBotAction: &action}); err != nil {
		return domain.TurnResult{}, fmt.Errorf("record bot action: %w", err)
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ShopID
	}
	metadata := map[string]any{"action": action}
	if len(ids) > 0 {
		metadata["recommendations"] = ids
	}
	if _, err := s.sessions.AddMessage(ctx, sessionID, domain.RoleBot, resp.Text, metadata); err != nil {
		return domain.TurnResult{}, fmt.Errorf("add bot message: %w", err)
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	return domain.TurnResult{
		ResponseText:    resp.Text,
		SessionID:       sessionID,
		Recommendations: results,
		MissingInfo:     state.MissingInfo(),
		Intent:          intent,
		Action:          resp.Action,
	}, nil
}

func errorResult(sessionID string, category domain.ErrorCategory) domain.TurnResult {
	return domain.TurnResult{
		ResponseText:    ErrorResponse(category),
		SessionID:       sessionID,
		Recommendations: []domain.SearchResult{},
		Action:          domain.ActionError,
	}
}
