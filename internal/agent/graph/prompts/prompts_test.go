package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everglow-poc-v1/server/internal/agent/model"
)

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "(no prior turns)", FormatHistory(nil))
	assert.Equal(t, "(no prior turns)", FormatHistory([]*schema.Message{nil, schema.UserMessage("  ")}))

	got := FormatHistory([]*schema.Message{
		schema.UserMessage("I need a serum"),
		schema.AssistantMessage("Which concern?", nil),
	})
	assert.Equal(t, "User: I need a serum\nAgent: Which concern?", got)
}

func TestRenderRouterPrompt(t *testing.T) {
	out, err := RenderRouterPrompt(context.Background(), "show me serums", []*schema.Message{
		schema.UserMessage("hello"),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "show me serums")
	assert.Contains(t, out, "User: hello")
	assert.NotContains(t, out, "{input}")
	assert.NotContains(t, out, "{history}")
}

func TestRenderNERSystemIncludesVocabulary(t *testing.T) {
	vocab := model.NewVocabulary(
		[]string{"serum", "cleanser"},
		[]string{"retinol"},
		[]string{"acne"},
	)
	out, err := RenderNERSystem(context.Background(), vocab)
	require.NoError(t, err)
	assert.Contains(t, out, "serum, cleanser")
	assert.Contains(t, out, "retinol")
	assert.Contains(t, out, "acne")

	_, err = RenderNERSystem(context.Background(), nil)
	assert.Error(t, err)
}

func TestRenderBrandSystem(t *testing.T) {
	out, err := RenderBrandSystem(context.Background(), model.BrandPromptConfig{BrandName: "Everglow"})
	require.NoError(t, err)
	assert.Contains(t, out, "Everglow")
	assert.NotContains(t, out, "{brand_name}")
}
