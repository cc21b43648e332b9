package driven

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// NLU extracts an intent and entities from a user utterance.
type NLU interface {
	Process(ctx context.Context, text, userID string) (domain.NLUResult, error)
}
