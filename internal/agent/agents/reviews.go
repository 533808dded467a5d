package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/everglow-poc-v1/server/internal/agent/graph/parsers"
	"github.com/everglow-poc-v1/server/internal/agent/graph/prompts"
	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	"github.com/everglow-poc-v1/server/internal/retrieval"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// User-facing messages for the reviews explanation agent.
const (
	msgReviewsExtractError = "Sorry, an error occurred while trying to identify the product you're asking about for reviews."
	msgReviewsAskProduct   = "Which product would you like to know reviews about? Please specify the product name."
	msgReviewsEmbedError   = "Sorry, I had trouble processing your request to search for reviews."
	msgReviewsSearchError  = "Sorry, I encountered an error while searching for reviews for that product."
	msgReviewsGenError     = "Sorry, I couldn't generate a review explanation for that product at this time."
)

// Minimum fuzzy-match score to accept a catalog product for a typed name.
const productMatchThreshold = 0.80

// Reviews answers "what do people say about X" questions by retrieving
// feedback records scoped to a single resolved product.
type Reviews struct {
	deps Deps
}

// Handle runs one review-explanation turn. Product resolution is sticky: once
// a product is pinned in state, follow-up questions reuse it without another
// name extraction or fuzzy match.
func (a *Reviews) Handle(ctx context.Context, conv *model.ConversationState, query string) model.AgentResult {
	logx.Debug().Str("agent", model.AgentReviewsExplanation).Msg("started")
	conv.ActiveAgent = model.AgentReviewsExplanation

	product, res := a.resolveProduct(ctx, conv, query)
	if res != nil {
		return *res
	}
	conv.FollowupQuestions = []string{}

	// Embed a composite of product identity and question so retrieval
	// reflects both what is asked and what it is asked about.
	embedText := fmt.Sprintf("Reviews and feedback for product: %s. User question: %s", product.Name, query)
	vector, err := a.deps.Embedder.EmbedQuery(ctx, embedText)
	if err != nil {
		logx.Error().Err(err).Msg("failed to embed reviews query")
		conv.AppendAgent(msgReviewsEmbedError)
		return model.ErrorResult(msgReviewsEmbedError)
	}

	filter := retrieval.NewFilter().ContainsAny(fieldProductID, []string{product.ProductID})
	matches, err := a.deps.FeedbackIndex.Query(ctx, vector, a.deps.FeedbackTopK, filter)
	if err != nil {
		logx.Error().Err(err).Msg("feedback similarity search failed")
		conv.AppendAgent(msgReviewsSearchError)
		return model.ErrorResult(msgReviewsSearchError)
	}

	texts := feedbackTexts(matches)
	if len(matches) == 0 {
		msg := fmt.Sprintf("I couldn't find any reviews or feedback for %s. Is there anything else I can help with?", product.Name)
		conv.AppendAgent(msg)
		return model.ReplyResult(msg)
	}
	if len(texts) == 0 {
		msg := fmt.Sprintf("I found review entries for %s but couldn't read their contents. Is there anything else I can help with?", product.Name)
		logx.Warn().Str("product_id", product.ProductID).Int("matches", len(matches)).Msg("feedback matches carried no text")
		conv.AppendAgent(msg)
		return model.ReplyResult(msg)
	}

	user, err := prompts.RenderReviewsPrompt(ctx, product, query, strings.Join(texts, "\n---\n"))
	if err != nil {
		logx.Error().Err(err).Msg("failed to render reviews prompt")
		conv.AppendAgent(msgReviewsGenError)
		return model.ErrorResult(msgReviewsGenError)
	}
	out, err := generate(ctx, a.deps.Generator, a.deps.GenerationModelName, "reviews_explanation",
		prompts.ReviewsSystemPrompt, user)
	if err != nil || llm.Content(out) == "" {
		logx.Error().Err(err).Msg("failed to generate review explanation")
		conv.AppendAgent(msgReviewsGenError)
		return model.ErrorResult(msgReviewsGenError)
	}

	reply := llm.Content(out)
	conv.AppendAgent(reply)
	logx.Debug().Str("product_id", product.ProductID).Msg("finished")
	return model.ReplyResult(reply)
}

// resolveProduct pins down which catalog product the turn is about. A non-nil
// result short-circuits the turn (clarification or error already recorded).
func (a *Reviews) resolveProduct(ctx context.Context, conv *model.ConversationState, query string) (model.CatalogProduct, *model.AgentResult) {
	// Previously pinned product wins.
	if conv.Entities.ReviewProductID != "" {
		if p, ok := a.deps.Catalog.Product(conv.Entities.ReviewProductID); ok {
			return p, nil
		}
		logx.Warn().Str("product_id", conv.Entities.ReviewProductID).Msg("pinned review product no longer in catalog")
		conv.Entities.ReviewProductID = ""
	}

	name := strings.TrimSpace(conv.Entities.ProductName)
	if name == "" {
		out, err := generate(ctx, a.deps.Generator, a.deps.GenerationModelName, "product_extraction",
			"You extract skincare product names from user messages.",
			mustRenderProductExtraction(ctx, query))
		if err != nil {
			logx.Error().Err(err).Msg("product name extraction call failed")
			conv.AppendAgent(msgReviewsExtractError)
			res := model.ErrorResult(msgReviewsExtractError)
			return model.CatalogProduct{}, &res
		}
		extracted, perr := parsers.ParseProductName(llm.Content(out))
		if perr != nil {
			// The model answered in prose. Treat it as a clarifying
			// question back to the user rather than an error.
			msg := strings.TrimSpace(llm.Content(out))
			if msg == "" {
				msg = msgReviewsAskProduct
			}
			conv.FollowupQuestions = []string{msgReviewsAskProduct}
			conv.AppendAgent(msg)
			res := model.ReplyResult(msg)
			return model.CatalogProduct{}, &res
		}
		name = strings.TrimSpace(extracted)
	}

	if name == "" {
		conv.FollowupQuestions = []string{msgReviewsAskProduct}
		conv.AppendAgent(msgReviewsAskProduct)
		res := model.ReplyResult(msgReviewsAskProduct)
		return model.CatalogProduct{}, &res
	}

	product, score := a.deps.Catalog.ResolveName(name)
	if score < productMatchThreshold {
		msg := fmt.Sprintf("I couldn't find a product named %q in our catalog. Could you double-check the name?", name)
		logx.Debug().Str("name", name).Float64("score", score).Msg("fuzzy product match below threshold")
		conv.FollowupQuestions = []string{msgReviewsAskProduct}
		conv.AppendAgent(msg)
		res := model.ReplyResult(msg)
		return model.CatalogProduct{}, &res
	}

	conv.Entities.ReviewProductID = product.ProductID
	conv.Entities.ProductName = product.Name
	logx.Debug().Str("name", name).Str("product_id", product.ProductID).Float64("score", score).Msg("resolved review product")
	return product, nil
}

// mustRenderProductExtraction falls back to a minimal inline instruction when
// template rendering fails; extraction still proceeds.
func mustRenderProductExtraction(ctx context.Context, userInput string) string {
	content, err := prompts.RenderProductExtraction(ctx, userInput)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render product extraction prompt")
		return `Extract the skincare product name from the user's message. Respond with JSON: {"product_name": "<name>"} or {"product_name": null} if none is mentioned.`
	}
	return content
}

func feedbackTexts(matches []retrieval.Match) []string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		t := strings.TrimSpace(m.Text)
		if t == "" {
			t = strings.TrimSpace(metaString(m.Metadata, "text"))
		}
		if t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}
