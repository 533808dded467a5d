package agents

import (
	"context"

	"github.com/everglow-poc-v1/server/internal/agent/graph/prompts"
	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

const msgBrandError = "Sorry, I can't answer brand questions right now due to an internal issue."

// Brand answers questions about the brand itself from a static philosophy
// prompt. Stateless beyond marking itself active.
type Brand struct {
	deps Deps
}

func (a *Brand) Handle(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
	logx.Debug().Str("agent", model.AgentBrandAnswer).Msg("started")
	conv.ActiveAgent = model.AgentBrandAnswer

	system, err := prompts.RenderBrandSystem(ctx, a.deps.Brand)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render brand prompt")
		conv.AppendAgent(msgBrandError)
		return model.ErrorResult(msgBrandError)
	}
	out, err := generate(ctx, a.deps.Generator, a.deps.GenerationModelName, "brand_answer", system, query)
	if err != nil || llm.Content(out) == "" {
		logx.Error().Err(err).Msg("failed to generate brand answer")
		conv.AppendAgent(msgBrandError)
		return model.ErrorResult(msgBrandError)
	}

	reply := llm.Content(out)
	conv.AppendAgent(reply)
	logx.Debug().Msg("finished")
	return model.ReplyResult(reply)
}
