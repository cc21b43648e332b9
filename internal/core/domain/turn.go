package domain

// NLUResult is the output of the external language understanding component.
type NLUResult struct {
	Intent     string         `json:"intent"`
	Entities   map[string]any `json:"entities"`
	Confidence float64        `json:"confidence"`
}

// BotAction names the branch the response generator took.
type BotAction string

// Response generator branches.
const (
	ActionConfirm     BotAction = "confirm"
	ActionRequestInfo BotAction = "request_info"
	ActionRecommend   BotAction = "recommend"
	ActionNoResults   BotAction = "no_results"
	ActionGreet       BotAction = "greet"
	ActionClarify     BotAction = "clarify"
	ActionError       BotAction = "error"
)

// Response is the generator's output for one turn.
type Response struct {
	Text   string
	Action BotAction

	// Slot is set when Action is ActionRequestInfo.
	Slot string
}

// LastBotAction encodes the response for storage on the session,
// e.g. "request_info:budget".
func (r Response) LastBotAction() string {
	if r.Slot == "" {
		return string(r.Action)
	}
	return string(r.Action) + ":" + r.Slot
}

// TurnRequest is one user utterance.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Text      string `json:"text"`
}

// TurnResult is what the caller wraps into its wire format.
type TurnResult struct {
	ResponseText    string         `json:"response_text"`
	SessionID       string         `json:"session_id"`
	Recommendations []SearchResult `json:"recommendations"`
	MissingInfo     []string       `json:"missing_info,omitempty"`
	Intent          string         `json:"intent,omitempty"`
	Action          BotAction      `json:"action"`
}
