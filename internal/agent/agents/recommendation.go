package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/everglow-poc-v1/server/internal/agent/graph/prompts"
	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	"github.com/everglow-poc-v1/server/internal/retrieval"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// User-facing messages for the recommendation agent.
const (
	msgRecEmbedError      = "Sorry, I had trouble processing your request to find recommendations."
	msgRecSearchError     = "Sorry, I encountered an error while searching for products based on your criteria."
	msgRecNoMatches       = "Sorry, I couldn't find any products matching your criteria."
	fallbackJustification = "Here are some products I found."
)

// Catalog index metadata field names. The skin-concern entity filters the
// "tags" field; ingredients filter "top_ingredients". Values are lowercased
// at index time and at query time.
const (
	fieldProductID   = "product_id"
	fieldName        = "name"
	fieldCategory    = "category"
	fieldDescription = "description"
	fieldIngredients = "top_ingredients"
	fieldTags        = "tags"
	fieldPrice       = "price"
)

// Recommendation converts a query plus structured entities into a ranked
// product list with a short generated justification.
type Recommendation struct {
	deps Deps
}

// Handle runs one recommendation turn with the given merged entities.
func (a *Recommendation) Handle(ctx context.Context, conv *model.ConversationState, query string, entities model.Entities) model.AgentResult {
	logx.Debug().Str("agent", model.AgentRecommendation).Msg("started")
	conv.ActiveAgent = model.AgentRecommendation

	// 1. Embed the utterance.
	vector, err := a.deps.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		logx.Error().Err(err).Msg("failed to embed recommendation query")
		conv.AppendAgent(msgRecEmbedError)
		return model.ErrorResult(msgRecEmbedError)
	}

	// 2. Conjunction filter from present entity kinds only.
	filter := retrieval.NewFilter().
		ContainsAny(fieldCategory, entities.Categories).
		ContainsAny(fieldIngredients, entities.Ingredients).
		ContainsAny(fieldTags, entities.SkinConcerns)

	// 3. Similarity search against the catalog index.
	matches, err := a.deps.CatalogIndex.Query(ctx, vector, a.deps.CatalogTopK, filter)
	if err != nil {
		logx.Error().Err(err).Msg("catalog similarity search failed")
		conv.AppendAgent(msgRecSearchError)
		return model.ErrorResult(msgRecSearchError)
	}

	// Retrieval succeeded: pending follow-ups are answered or superseded.
	// Earlier failures leave them untouched so the question stands next turn.
	conv.FollowupQuestions = []string{}

	// 4. Zero matches is a normal outcome, not an error.
	if len(matches) == 0 {
		logx.Debug().Msg("no products matched the criteria")
		conv.AppendAgent(msgRecNoMatches)
		return model.ReplyResult(msgRecNoMatches)
	}

	// 5. Project match metadata into stable product records.
	products := make([]model.CatalogProduct, 0, len(matches))
	productIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		p := productFromMetadata(m.Metadata)
		if p.ProductID == "" {
			continue
		}
		products = append(products, p)
		productIDs = append(productIDs, p.ProductID)
	}
	if len(productIDs) == 0 {
		conv.AppendAgent(msgRecNoMatches)
		return model.ReplyResult(msgRecNoMatches)
	}

	// 6. Generated justification is non-critical: degrade to a generic line.
	justification := a.justify(ctx, query, products)

	logx.Debug().Int("products", len(productIDs)).Str("justification", justification).Msg("finished")
	return model.RecommendationResult(productIDs, justification)
}

func (a *Recommendation) justify(ctx context.Context, query string, products []model.CatalogProduct) string {
	var b strings.Builder
	for i, p := range products {
		if i > 0 {
			b.WriteString("---\n")
		}
		fmt.Fprintf(&b, "%d. Name: %s\nTop Ingredients: %s\nTags: %s\n",
			i+1, p.Name, strings.Join(p.TopIngredients, "; "), strings.Join(p.Tags, "|"))
	}

	user, err := prompts.RenderJustificationPrompt(ctx, query, b.String())
	if err != nil {
		logx.Error().Err(err).Msg("failed to render justification prompt, using fallback")
		return fallbackJustification
	}
	out, err := generate(ctx, a.deps.Generator, a.deps.GenerationModelName, "justification",
		prompts.RecommendationSystemPrompt, user)
	if err != nil || llm.Content(out) == "" {
		logx.Error().Err(err).Msg("failed to generate justification, using fallback")
		return fallbackJustification
	}
	return llm.Content(out)
}

// productFromMetadata projects retrieval metadata into a CatalogProduct.
// Missing or mistyped fields yield zero values rather than failures.
func productFromMetadata(meta map[string]any) model.CatalogProduct {
	return model.CatalogProduct{
		ProductID:      metaString(meta, fieldProductID),
		Name:           metaString(meta, fieldName),
		Category:       metaString(meta, fieldCategory),
		Description:    metaString(meta, fieldDescription),
		TopIngredients: metaStrings(meta, fieldIngredients),
		Tags:           metaStrings(meta, fieldTags),
		Price:          metaFloat(meta, fieldPrice),
	}
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func metaStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func metaFloat(meta map[string]any, key string) float64 {
	f, _ := meta[key].(float64)
	return f
}
