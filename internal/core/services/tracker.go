package services

import (
	"context"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// requiredSlots is the intent policy table. Intents not listed leave
// the required slots untouched.
var requiredSlots = map[string][]string{
	domain.IntentFoodRequest:   {domain.SlotBudget},
	domain.IntentBudgetInquiry: {domain.SlotFoodType},
}

// RequiredSlots returns the slots an intent needs and whether the intent is in the policy table.
func RequiredSlots(intent string) ([]string, bool) {
	slots, ok := requiredSlots[intent]
	if !ok {
		return nil, false
	}
	return append([]string(nil), slots...), true
}

// entityAliases maps NLU entity names onto slots. Earlier names win.
var entityAliases = []struct {
	slot  string
	names []string
}{
	{slot: domain.SlotFoodType, names: []string{"food_type"}},
	{slot: domain.SlotBudget, names: []string{"price", "budget"}},
	{slot: domain.SlotLocation, names: []string{"location"}},
	{slot: domain.SlotTime, names: []string{"time"}},
}

// FilterEntities maps raw NLU entities onto slots, dropping absent and empty values.
// Budgets are normalised to int.
func FilterEntities(raw map[string]any) map[string]any {
	out := make(map[string]any)
	for _, alias := range entityAliases {
		for _, name := range alias.names {
			v, ok := raw[name]
			if !ok || isEmptyValue(v) {
				continue
			}
			if alias.slot == domain.SlotBudget {
				n, ok := domain.AsInt(v)
				if !ok || n <= 0 {
					continue
				}
				v = n
			}
			out[alias.slot] = v
			break
		}
	}
	return out
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case bool:
		return !x
	default:
		return false
	}
}

// DialogueTracker turns NLU observations into session state updates.
type DialogueTracker struct {
	sessions driving.SessionService
}

// NewDialogueTracker creates a tracker writing through sessions.
func NewDialogueTracker(sessions driving.SessionService) *DialogueTracker {
	return &DialogueTracker{sessions: sessions}
}

// Observe applies one NLU result to the session's dialogue state.
// Returns false if the session does not exist.
func (t *DialogueTracker) Observe(ctx context.Context, sessionID string, nlu domain.NLUResult) (bool, error) {
	sess, err := t.sessions.GetSession(ctx, sessionID)
	if err != nil || sess == nil {
		return false, err
	}

	update := t.BuildUpdate(sess, nlu)
	logger.Debug("state update: intent=%v entities=%v required=%v reset=%v",
		deref(update.Intent), update.Entities, update.RequiredInfo, update.ResetEntities)

	return t.sessions.UpdateState(ctx, sessionID, update)
}

// BuildUpdate derives the state update for an observation against the current session.
//
// When the bot last asked for a slot and the observation supplies it, the stored
// intent is kept: "2만원" answering a budget question continues the food request.
// A reply without entities to a confirmation also keeps the stored intent.
// A food type different from the stored one requests an entity reset.
func (t *DialogueTracker) BuildUpdate(sess *domain.Session, nlu domain.NLUResult) domain.StateUpdate {
	st := sess.State
	entities := FilterEntities(nlu.Entities)

	intent := nlu.Intent
	if st.Intent != "" {
		if slot, ok := pendingSlot(sess.LastBotAction); ok {
			if _, supplied := entities[slot]; supplied {
				intent = st.Intent
			}
		}
		if sess.LastBotAction == string(domain.ActionConfirm) && len(entities) == 0 {
			intent = st.Intent
		}
	}

	var update domain.StateUpdate
	update.Entities = entities
	if intent != "" {
		update.Intent = &intent
		if slots, ok := RequiredSlots(intent); ok {
			update.RequiredInfo = slots
		}
	}

	if newFood, ok := entities[domain.SlotFoodType]; ok {
		if oldFood, had := st.EntityString(domain.SlotFoodType); had && oldFood != newFood {
			logger.Info("food type changed: %s -> %v", oldFood, newFood)
			update.ResetEntities = true
		}
	}
	return update
}

func pendingSlot(lastBotAction string) (string, bool) {
	prefix := string(domain.ActionRequestInfo) + ":"
	if !strings.HasPrefix(lastBotAction, prefix) {
		return "", false
	}
	return strings.TrimPrefix(lastBotAction, prefix), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
