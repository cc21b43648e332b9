package driving

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// ChatService runs one dialogue turn: state update, retrieval, response.
type ChatService interface {
	// ProcessTurn never returns an error; failures become an apology response.
	ProcessTurn(ctx context.Context, req domain.TurnRequest) domain.TurnResult
}
