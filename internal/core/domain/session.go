package domain

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Role identifies who produced a message.
type Role string

// Message roles.
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Slot names tracked by the dialogue state.
const (
	SlotFoodType = "food_type"
	SlotBudget   = "budget"
	SlotLocation = "location"
	SlotTime     = "time"
)

// Intents produced by the NLU component.
const (
	IntentGreeting        = "greeting"
	IntentFoodRequest     = "food_request"
	IntentBudgetInquiry   = "budget_inquiry"
	IntentLocationInquiry = "location_inquiry"
	IntentTimeInquiry     = "time_inquiry"
	IntentGeneralChat     = "general_chat"
)

// Message is a single conversation record.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ContextEntry is one line of the dialogue state's chronological log.
type ContextEntry struct {
	TurnType  string    `json:"turn_type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState tracks intent and slot values across turns.
//
// The missing slots are exactly RequiredInfo minus the keys of Entities.
type ConversationState struct {
	// Intent is the current intent; empty means none observed yet.
	Intent string `json:"intent"`

	// Entities maps slot name to value.
	Entities map[string]any `json:"entities"`

	// RequiredInfo lists slots the current intent needs.
	RequiredInfo []string `json:"required_info"`

	// ContextHistory is the chronological turn log.
	ContextHistory []ContextEntry `json:"context_history"`

	// IntentStack holds prior intents, most recent last.
	IntentStack []string `json:"intent_stack"`

	// IntentChanged is true for exactly one update after an intent change.
	IntentChanged bool `json:"is_intent_changed"`
}

// NewConversationState returns an empty state.
func NewConversationState() ConversationState {
	return ConversationState{
		Entities:       make(map[string]any),
		RequiredInfo:   []string{},
		ContextHistory: []ContextEntry{},
		IntentStack:    []string{},
	}
}

// MissingInfo returns required slots not yet collected, in RequiredInfo order.
func (s *ConversationState) MissingInfo() []string {
	missing := make([]string, 0, len(s.RequiredInfo))
	for _, slot := range s.RequiredInfo {
		if _, ok := s.Entities[slot]; ok {
			continue
		}
		if !slices.Contains(missing, slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// IsComplete reports whether every required slot has been collected.
func (s *ConversationState) IsComplete() bool {
	return len(s.MissingInfo()) == 0
}

// AddContext appends an entry to the context log.
func (s *ConversationState) AddContext(turnType, content string, at time.Time) {
	s.ContextHistory = append(s.ContextHistory, ContextEntry{
		TurnType:  turnType,
		Content:   content,
		Timestamp: at,
	})
}

// EntityString returns a slot value rendered as a string.
func (s *ConversationState) EntityString(slot string) (string, bool) {
	v, ok := s.Entities[slot]
	if !ok || v == nil {
		return "", false
	}
	str := fmt.Sprint(v)
	if str == "" {
		return "", false
	}
	return str, true
}

// EntityInt returns a numeric slot value such as the budget.
// Values that went through JSON come back as float64 and are accepted.
func (s *ConversationState) EntityInt(slot string) (int, bool) {
	return AsInt(s.Entities[slot])
}

// Clone returns a deep copy of the state.
func (s ConversationState) Clone() ConversationState {
	c := s
	c.Entities = maps.Clone(s.Entities)
	if c.Entities == nil {
		c.Entities = make(map[string]any)
	}
	c.RequiredInfo = slices.Clone(s.RequiredInfo)
	c.ContextHistory = slices.Clone(s.ContextHistory)
	c.IntentStack = slices.Clone(s.IntentStack)
	return c
}

// Session is one conversation owned by the session store.
type Session struct {
	ID            string            `json:"session_id"`
	UserID        string            `json:"user_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Version       int64             `json:"version"`
	History       []Message         `json:"conversation_history"`
	State         ConversationState `json:"state_tracker"`
	LastBotAction string            `json:"last_bot_action,omitempty"`
	Metadata      map[string]any    `json:"metadata"`
}

// NewSession returns a session with empty history and default state.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		History:   []Message{},
		State:     NewConversationState(),
		Metadata:  make(map[string]any),
	}
}

// AddMessage appends to the history and the state context log.
func (s *Session) AddMessage(role Role, content string, metadata map[string]any, at time.Time) {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: at,
		Metadata:  metadata,
	})
	s.State.AddContext(string(role), content, at)
	s.UpdatedAt = at
}

// ConversationContext renders the last n messages as "speaker: text" lines.
func (s *Session) ConversationContext(lastN int) string {
	history := s.History
	if lastN > 0 && len(history) > lastN {
		history = history[len(history)-lastN:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		speaker := "챗봇"
		if msg.Role == RoleUser {
			speaker = "사용자"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy so callers never share state with the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = make([]Message, len(s.History))
	for i, msg := range s.History {
		msg.Metadata = maps.Clone(msg.Metadata)
		c.History[i] = msg
	}
	c.State = s.State.Clone()
	c.Metadata = maps.Clone(s.Metadata)
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	return &c
}

// StateUpdate lists the optional fields of a state mutation.
// A nil pointer or nil slice means the field was not supplied.
type StateUpdate struct {
	Intent        *string
	Entities      map[string]any
	RequiredInfo  []string
	ResetEntities bool
	LastBotAction *string
}

// SessionSnapshot is the exported form of a session.
type SessionSnapshot struct {
	SessionID           string            `json:"session_id"`
	UserID              string            `json:"user_id,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	ConversationHistory []Message         `json:"conversation_history"`
	StateTracker        ConversationState `json:"state_tracker"`
	LastBotAction       string            `json:"last_bot_action,omitempty"`
	Metadata            map[string]any    `json:"metadata"`
}

// Snapshot exports the session.
func (s *Session) Snapshot() *SessionSnapshot {
	c := s.Clone()
	return &SessionSnapshot{
		SessionID:           c.ID,
		UserID:              c.UserID,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		ConversationHistory: c.History,
		StateTracker:        c.State,
		LastBotAction:       c.LastBotAction,
		Metadata:            c.Metadata,
	}
}

// AsInt converts numeric slot values (int, int64, float64, digit strings).
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
