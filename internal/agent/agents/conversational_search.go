package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/everglow-poc-v1/server/internal/agent/graph/parsers"
	"github.com/everglow-poc-v1/server/internal/agent/graph/prompts"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// User-facing messages for the conversational search agent.
const (
	msgNERParseFailure = "Sorry, an unexpected error occurred while processing the product category."
	msgNERInvokeError  = "Sorry, I encountered an error while trying to understand your request."
	msgTellMeMore      = "Can you tell me more about what you're looking for?"
)

// ConversationalSearch turns free text into validated entities, asks
// follow-up questions while information is missing, and hands off to the
// recommendation agent once a category is present and the classified intent
// is "recommend".
type ConversationalSearch struct {
	deps      Deps
	recommend *Recommendation
}

// Handle runs one conversational-search turn.
func (a *ConversationalSearch) Handle(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
	logx.Debug().Str("agent", model.AgentConversationalSearch).Msg("started")

	// 1. LLM-backed NER over the utterance, current entities, and recent history.
	system, err := prompts.RenderNERSystem(ctx, a.deps.Vocab)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render NER system prompt")
		conv.AppendAgent(msgNERInvokeError)
		return model.ErrorResult(msgNERInvokeError)
	}

	entitiesJSON, _ := json.Marshal(conv.Entities)
	human := prompts.NERHumanMessage(query, string(entitiesJSON), conv.RecentHistory(a.deps.HistoryWindow))

	out, err := generate(ctx, a.deps.Generator, a.deps.GenerationModelName, "ner", system, human)
	if err != nil {
		logx.Error().Err(err).Msg("NER model invocation failed")
		conv.AppendAgent(msgNERInvokeError)
		return model.ErrorResult(msgNERInvokeError)
	}

	// 2. Defensive parse; parse failures end the turn with an apology, never
	// an exception to the caller.
	update, err := parsers.ParseEntityUpdate(out.Content)
	if err != nil {
		logx.Error().Err(err).Str("output", out.Content).Msg("failed to parse NER output")
		conv.AppendAgent(msgNERParseFailure)
		return model.ErrorResult(msgNERParseFailure)
	}

	// 3. Adopt the extractor's full next-state lists, clipped to vocabulary.
	conv.Entities = model.MergeEntities(conv.Entities, update, a.deps.Vocab)
	logx.Debug().
		Strs("categories", conv.Entities.Categories).
		Strs("ingredients", conv.Entities.Ingredients).
		Strs("skin_concerns", conv.Entities.SkinConcerns).
		Msg("merged entities")

	// 4. Follow-up when no category is known yet.
	var followups []string
	if len(conv.Entities.Categories) == 0 {
		followups = append(followups, fmt.Sprintf(
			"What products are you looking for? Choose from: %s.",
			strings.Join(a.deps.Vocab.Categories, ", "),
		))
	}

	// 5. Readiness requires both a category and the recommend intent; a bare
	// recommend intent with no category still asks a follow-up.
	ready := len(conv.Entities.Categories) > 0 && conv.Intent == model.IntentRecommend

	if ready {
		logx.Debug().Msg("ready for recommendation, delegating")
		return a.recommend.Handle(ctx, conv, query, conv.Entities)
	}

	response := msgTellMeMore
	if len(followups) > 0 {
		response = followups[0]
	}
	conv.ActiveAgent = model.AgentConversationalSearch
	conv.FollowupQuestions = followups
	conv.AppendAgent(response)
	logx.Debug().Str("response", response).Msg("continuing conversational search")
	return model.ReplyResult(response)
}
