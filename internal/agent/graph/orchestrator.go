package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/everglow-poc-v1/server/internal/agent/graph/observers"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// CriticalErrorMessage is returned when the turn pipeline itself fails, as
// opposed to a capability failure an agent already translated into a reply.
const CriticalErrorMessage = "Sorry, I encountered a critical internal error. Please try again."

// Orchestrator drives one conversation turn through the compiled graph. It
// always returns a well-formed envelope: every failure path still yields a
// chat message and a serialized state the caller can send back next turn.
type Orchestrator struct {
	runnable compose.Runnable[model.TurnInput, model.TurnResult]
}

// NewOrchestrator builds the turn graph and wraps it.
func NewOrchestrator(ctx context.Context, cfg *Config) (*Orchestrator, error) {
	runnable, err := BuildTurnGraph(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build turn graph: %w", err)
	}
	return &Orchestrator{runnable: runnable}, nil
}

// Respond executes one turn. The raw state is the envelope state from the
// previous turn (or empty for a new conversation); corrupt state starts
// fresh rather than failing.
func (o *Orchestrator) Respond(ctx context.Context, query string, rawState json.RawMessage) model.Envelope {
	conv := model.Hydrate(rawState)
	conv.AppendUser(query)

	out, err := o.invoke(ctx, model.TurnInput{Query: query, Conv: conv})
	if err != nil {
		logx.Error().Err(err).Msg("turn pipeline failed")
		conv.AppendAgent(CriticalErrorMessage)
		return model.Envelope{Message: CriticalErrorMessage, State: model.Serialize(conv)}
	}

	return model.Envelope{
		Message:    out.Message,
		State:      model.Serialize(conv),
		ProductIDs: out.ProductIDs,
	}
}

// invoke isolates panics from graph nodes so a single bad turn cannot take
// the process down.
func (o *Orchestrator) invoke(ctx context.Context, in model.TurnInput) (out model.TurnResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn panicked: %v", r)
		}
	}()
	return o.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}
