package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/everglow-poc-v1/server/internal/agent/agents"
	"github.com/everglow-poc-v1/server/internal/agent/graph/nodes"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// Config holds everything needed to compose the turn graph end-to-end.
type Config struct {
	IntentModel     einomodel.BaseChatModel
	IntentModelName string
	Agents          *agents.Set
	HistoryWindow   int
}

// GraphBuilder handles the construction of the turn graph.
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.TurnInput, model.TurnResult]
}

// BuildTurnGraph constructs and compiles the turn pipeline:
// router prompt -> intent model -> parser -> dispatched agent -> envelope.
func BuildTurnGraph(ctx context.Context, config *Config) (compose.Runnable[model.TurnInput, model.TurnResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.IntentModel == nil {
		return nil, fmt.Errorf("intent model is nil")
	}
	if config.Agents == nil {
		return nil, fmt.Errorf("agents are nil")
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = model.DefaultHistoryWindow
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeRouterPrompt,
		nodes.NewRouterPromptNode(b.config.HistoryWindow),
		compose.WithStatePreHandler(nodes.NewRouterPromptPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeIntentChatModel,
		b.config.IntentModel,
		compose.WithStatePostHandler(nodes.NewIntentChatModelPostHandler(b.config.IntentModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeIntentParser, nodes.NewIntentParserNode())

	b.graph.AddLambdaNode(nodes.NodeConversationalSearch, nodes.NewConversationalSearchNode(b.config.Agents))
	b.graph.AddLambdaNode(nodes.NodeReviewsExplanation, nodes.NewReviewsExplanationNode(b.config.Agents))
	b.graph.AddLambdaNode(nodes.NodeBrandAnswer, nodes.NewBrandAnswerNode(b.config.Agents))

	b.graph.AddLambdaNode(nodes.NodeEnvelopeBuilder, nodes.NewEnvelopeBuilderNode())
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeRouterPrompt},
		{nodes.NodeRouterPrompt, nodes.NodeIntentChatModel},
		{nodes.NodeIntentChatModel, nodes.NodeIntentParser},
		{nodes.NodeConversationalSearch, nodes.NodeEnvelopeBuilder},
		{nodes.NodeReviewsExplanation, nodes.NodeEnvelopeBuilder},
		{nodes.NodeBrandAnswer, nodes.NodeEnvelopeBuilder},
		{nodes.NodeEnvelopeBuilder, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the intent dispatch branch
func (b *GraphBuilder) addBranches() error {
	dispatchBranch := compose.NewGraphBranch(
		nodes.NewAgentDispatchCondition(),
		map[string]bool{
			nodes.NodeConversationalSearch: true,
			nodes.NodeReviewsExplanation:   true,
			nodes.NodeBrandAnswer:          true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeIntentParser, dispatchBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding agent dispatch branch")
		return fmt.Errorf("error adding agent dispatch branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
