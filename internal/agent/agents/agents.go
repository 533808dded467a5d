// Package agents implements the specialized conversation handlers. Each
// agent is a pure function of (state, input): it mutates the supplied
// ConversationState and returns a tagged AgentResult. Capability failures
// are returned as data, never as Go errors.
package agents

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	"github.com/everglow-poc-v1/server/internal/catalog"
	"github.com/everglow-poc-v1/server/internal/retrieval"
)

// Deps are the injected capabilities shared by the agents. Everything is
// constructed once at startup and reused on every call.
type Deps struct {
	Generator llm.ChatModel
	Embedder  llm.Embedder

	Catalog       *catalog.Store
	CatalogIndex  retrieval.Index
	FeedbackIndex retrieval.Index
	Vocab         *model.Vocabulary

	GenerationModelName string
	CatalogTopK         int
	FeedbackTopK        int
	HistoryWindow       int
	Brand               model.BrandPromptConfig
}

// Set bundles the four agents behind one constructor.
type Set struct {
	Search    *ConversationalSearch
	Recommend *Recommendation
	Reviews   *Reviews
	Brand     *Brand
}

// NewSet wires the agents, including the search agent's delegation to the
// recommendation agent.
func NewSet(d Deps) *Set {
	rec := &Recommendation{deps: d}
	return &Set{
		Search:    &ConversationalSearch{deps: d, recommend: rec},
		Recommend: rec,
		Reviews:   &Reviews{deps: d},
		Brand:     &Brand{deps: d},
	}
}

// generate invokes the generation capability with a system and user message.
func generate(ctx context.Context, m llm.ChatModel, modelName, step, system, user string) (*schema.Message, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
	out, err := m.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	llm.LogUsage(step, modelName, out)
	return out, nil
}
