package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// ChatModel is the generation capability consumed by the agents: prompt
// messages in, one message out. *gemini.ChatModel satisfies it; tests supply
// fakes.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// ChatModels holds the intent classification and generation chat models.
type ChatModels struct {
	Intent              *gemini.ChatModel
	Generation          *gemini.ChatModel
	IntentModelName     string
	GenerationModelName string
}

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	IntentConfig     *model.IntentModelConfig
	GenerationConfig *model.GenerationModelConfig
}

// NewChatModels creates the intent and generation chat models on a shared
// Gemini client. The client is injected so the embedder can reuse it.
func NewChatModels(ctx context.Context, client *genai.Client, config ChatModelConfig) (*ChatModels, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}
	if config.IntentConfig == nil || config.GenerationConfig == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	intentModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.IntentConfig.Model,
		Temperature: &config.IntentConfig.Temperature,
		MaxTokens:   &config.IntentConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating intent model")
		return nil, fmt.Errorf("error creating intent model: %w", err)
	}

	generationModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.GenerationConfig.Model,
		Temperature: &config.GenerationConfig.Temperature,
		MaxTokens:   &config.GenerationConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating generation model")
		return nil, fmt.Errorf("error creating generation model: %w", err)
	}

	return &ChatModels{
		Intent:              intentModel,
		Generation:          generationModel,
		IntentModelName:     config.IntentConfig.Model,
		GenerationModelName: config.GenerationConfig.Model,
	}, nil
}

// LogUsage logs token usage and USD cost for a model response and returns
// the total cost so callers can accumulate it into turn state.
func LogUsage(step, modelName string, out *schema.Message) float64 {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return 0
	}
	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("step", step).
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
	return totalC
}

// Content returns the trimmed text of a model response.
func Content(out *schema.Message) string {
	if out == nil {
		return ""
	}
	return strings.TrimSpace(out.Content)
}
