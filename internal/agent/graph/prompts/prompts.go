package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/everglow-poc-v1/server/internal/agent/model"
)

//go:embed template/router_prompt.txt
var routerPromptTemplate string

//go:embed template/ner_prompt.txt
var nerSystemTemplate string

//go:embed template/brand_prompt.txt
var brandSystemTemplate string

//go:embed template/justification_prompt.txt
var justificationTemplate string

//go:embed template/reviews_prompt.txt
var reviewsTemplate string

//go:embed template/product_extraction_prompt.txt
var productExtractionTemplate string

// Static system prompts for the generation-only agents.
const (
	RecommendationSystemPrompt = "You are an expert skincare product recommender. " +
		"Given a user's query and a set of products, generate a concise, friendly justification for why these products are a good fit. " +
		"Mention relevant categories, tags, or ingredients."

	ReviewsSystemPrompt = "You are a trustworthy skincare review explainer. " +
		"Given a product and user question, summarize relevant customer reviews and cite them to build trust."
)

// render pushes already-substituted content through the Eino prompt component
// so prompt callbacks fire. Token substitution happens before this call to
// avoid interfering with JSON braces inside templates.
func render(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// RenderRouterPrompt builds the intent classification prompt from the user
// input and a bounded slice of recent history.
func RenderRouterPrompt(ctx context.Context, input string, history []*schema.Message) (string, error) {
	content := strings.NewReplacer(
		"{history}", FormatHistory(history),
		"{input}", input,
	).Replace(routerPromptTemplate)
	return render(ctx, content)
}

// RenderNERSystem builds the entity extraction system prompt with the
// controlled vocabulary option lists.
func RenderNERSystem(ctx context.Context, vocab *model.Vocabulary) (string, error) {
	if vocab == nil {
		return "", fmt.Errorf("vocabulary is nil")
	}
	content := strings.NewReplacer(
		"{available_categories}", strings.Join(vocab.Categories, ", "),
		"{available_ingredients}", strings.Join(vocab.Ingredients, ", "),
		"{available_skin_concerns}", strings.Join(vocab.SkinConcerns, ", "),
	).Replace(nerSystemTemplate)
	return render(ctx, content)
}

// NERHumanMessage formats the extractor's user-turn payload.
func NERHumanMessage(userInput, currentEntitiesJSON string, history []*schema.Message) string {
	var b strings.Builder
	b.WriteString("User's latest query: ")
	b.WriteString(userInput)
	b.WriteString("\nCurrent identified entities: ")
	b.WriteString(currentEntitiesJSON)
	b.WriteString("\nChat history (for context):\n")
	b.WriteString(FormatHistory(history))
	return b.String()
}

// RenderBrandSystem builds the static brand philosophy system prompt.
func RenderBrandSystem(ctx context.Context, cfg model.BrandPromptConfig) (string, error) {
	content := strings.ReplaceAll(brandSystemTemplate, "{brand_name}", cfg.BrandName)
	return render(ctx, content)
}

// RenderJustificationPrompt builds the short recommendation justification prompt.
func RenderJustificationPrompt(ctx context.Context, query, productsText string) (string, error) {
	content := strings.NewReplacer(
		"{query}", query,
		"{products}", productsText,
	).Replace(justificationTemplate)
	return render(ctx, content)
}

// RenderReviewsPrompt builds the review-summary prompt from the product's
// catalog attributes, the user's question, and the retrieved feedback texts.
func RenderReviewsPrompt(ctx context.Context, product model.CatalogProduct, question, feedbackContext string) (string, error) {
	content := strings.NewReplacer(
		"{product}", product.Name,
		"{category}", product.Category,
		"{top_ingredients}", strings.Join(product.TopIngredients, ", "),
		"{user_question}", question,
		"{feedback_context}", feedbackContext,
	).Replace(reviewsTemplate)
	return render(ctx, content)
}

// RenderProductExtraction builds the product-name extraction prompt.
func RenderProductExtraction(ctx context.Context, userInput string) (string, error) {
	content := strings.ReplaceAll(productExtractionTemplate, "{user_input}", userInput)
	return render(ctx, content)
}

// FormatHistory renders history messages as "User:"/"Agent:" lines for
// prompt context.
func FormatHistory(msgs []*schema.Message) string {
	if len(msgs) == 0 {
		return "(no prior turns)"
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || strings.TrimSpace(m.Content) == "" {
			continue
		}
		speaker := "Agent"
		if m.Role == schema.User {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, strings.TrimSpace(m.Content)))
	}
	if len(lines) == 0 {
		return "(no prior turns)"
	}
	return strings.Join(lines, "\n")
}
