package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/everglow-poc-v1/server/internal/agent/agents"
	"github.com/everglow-poc-v1/server/internal/agent/graph/parsers"
	"github.com/everglow-poc-v1/server/internal/agent/graph/prompts"
	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// Graph node names.
const (
	NodeRouterPrompt         = "RouterPromptBuilder"
	NodeIntentChatModel      = "IntentChatModel"
	NodeIntentParser         = "IntentParser"
	NodeConversationalSearch = "ConversationalSearchAgent"
	NodeReviewsExplanation   = "ReviewsExplanationAgent"
	NodeBrandAnswer          = "BrandAnswerAgent"
	NodeEnvelopeBuilder      = "EnvelopeBuilder"
)

// NewRouterPromptPreHandler seeds per-turn state from the graph input. The
// conversation pointer is shared with the caller so partial mutations survive
// a failed turn.
func NewRouterPromptPreHandler() func(context.Context, model.TurnInput, *model.AppState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.AppState) (model.TurnInput, error) {
		s.Query = in.Query
		s.Conv = in.Conv
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewRouterPromptNode builds the intent classification prompt from the query
// and recent history.
func NewRouterPromptNode(historyWindow int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.TurnInput) ([]*schema.Message, error) {
		if input.Conv == nil {
			return nil, fmt.Errorf("conversation state is nil")
		}
		// History already includes the current user turn; exclude it from
		// the router context so {input} is not duplicated.
		history := input.Conv.RecentHistory(historyWindow + 1)
		if n := len(history); n > 0 && history[n-1].Role == schema.User {
			history = history[:n-1]
		}
		content, err := prompts.RenderRouterPrompt(ctx, input.Query, history)
		if err != nil {
			return nil, fmt.Errorf("render router prompt: %w", err)
		}
		return []*schema.Message{schema.UserMessage(content)}, nil
	})
}

// NewIntentChatModelPostHandler logs usage cost for the intent model and
// accumulates it into turn state.
func NewIntentChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		state.TotalCostUSD += llm.LogUsage("intent_router", modelName, out)
		return out, nil
	}
}

// NewIntentParserNode parses the router output into an IntentDecision. The
// parser never fails: malformed output degrades to the search intent.
func NewIntentParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.IntentDecision, error) {
		intent := parsers.ParseIntent(llm.Content(resp))

		var query string
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			query = s.Query
			if s.Conv != nil {
				s.Conv.Intent = intent
			}
			return nil
		})
		if err != nil {
			return model.IntentDecision{}, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("intent", string(intent)).Msg("intent classified")
		return model.IntentDecision{Intent: intent, Query: query}, nil
	})
}

// NewAgentDispatchCondition routes the classified turn to its agent node.
// Both the recommend and search intents land on the conversational search
// agent; it decides internally when to delegate to the recommender.
func NewAgentDispatchCondition() func(context.Context, model.IntentDecision) (string, error) {
	return func(ctx context.Context, in model.IntentDecision) (string, error) {
		switch in.Intent {
		case model.IntentReviewExplanation:
			return NodeReviewsExplanation, nil
		case model.IntentBrandInfo:
			return NodeBrandAnswer, nil
		default:
			return NodeConversationalSearch, nil
		}
	}
}

// NewConversationalSearchNode wraps the search agent as a graph node.
func NewConversationalSearchNode(ag *agents.Set) *compose.Lambda {
	return agentLambda(func(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
		return ag.Search.Handle(ctx, conv, query)
	})
}

// NewReviewsExplanationNode wraps the reviews agent as a graph node.
func NewReviewsExplanationNode(ag *agents.Set) *compose.Lambda {
	return agentLambda(func(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
		return ag.Reviews.Handle(ctx, conv, query)
	})
}

// NewBrandAnswerNode wraps the brand agent as a graph node.
func NewBrandAnswerNode(ag *agents.Set) *compose.Lambda {
	return agentLambda(func(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
		return ag.Brand.Handle(ctx, conv, query)
	})
}

// agentLambda adapts an agent call to a lambda node, pulling the shared
// conversation state out of graph-local state.
func agentLambda(handle func(context.Context, *model.ConversationState, string) model.AgentResult) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.IntentDecision) (model.AgentResult, error) {
		var result model.AgentResult
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			if s.Conv == nil {
				return fmt.Errorf("conversation state is nil")
			}
			result = handle(ctx, s.Conv, in.Query)
			return nil
		})
		if err != nil {
			return model.AgentResult{}, fmt.Errorf("failed to access state: %w", err)
		}
		return result, nil
	})
}

// NewEnvelopeBuilderNode converts the agent result into the turn output.
// Recommendation results are the one case where the agent has not appended
// its own history entry, so the justification is recorded here.
func NewEnvelopeBuilderNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.AgentResult) (model.TurnResult, error) {
		message := in.UserMessage()
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			if in.Kind == model.ResultRecommendation && s.Conv != nil {
				s.Conv.AppendAgent(message)
			}
			logx.Debug().
				Float64("total_cost_usd", s.TotalCostUSD).
				Int("products", len(in.ProductIDs)).
				Msg("turn complete")
			return nil
		})
		if err != nil {
			return model.TurnResult{}, fmt.Errorf("failed to access state: %w", err)
		}
		return model.TurnResult{Message: message, ProductIDs: in.ProductIDs}, nil
	})
}
