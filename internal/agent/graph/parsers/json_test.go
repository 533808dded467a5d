package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everglow-poc-v1/server/internal/agent/model"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"intent": "search"}`, `{"intent": "search"}`},
		{"json fence", "```json\n{\"intent\": \"search\"}\n```", `{"intent": "search"}`},
		{"bare fence", "```\n{\"intent\": \"search\"}\n```", `{"intent": "search"}`},
		{"surrounding prose", `Sure! Here you go: {"intent": "search"} Hope that helps.`, `{"intent": "search"}`},
		{"nested braces", `{"a": {"b": 1}}`, `{"a": {"b": 1}}`},
		{"no braces", "recommend", "recommend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Intent
	}{
		{"valid json", `{"intent": "recommend"}`, model.IntentRecommend},
		{"fenced json", "```json\n{\"intent\": \"brand_info\"}\n```", model.IntentBrandInfo},
		{"bare word", "review_explanation", model.IntentReviewExplanation},
		{"quoted bare word", `"search"`, model.IntentSearch},
		{"unknown intent", `{"intent": "buy_now"}`, model.IntentSearch},
		{"garbage", "I'm not sure what you mean", model.IntentSearch},
		{"empty", "", model.IntentSearch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.in))
		})
	}
}

func TestParseEntityUpdate(t *testing.T) {
	update, err := ParseEntityUpdate("```json\n{\"categories\": [\"serum\"], \"skin_concerns\": []}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"serum"}, update.Categories)
	assert.NotNil(t, update.SkinConcerns)
	assert.Empty(t, update.SkinConcerns)
	// absent kind stays nil so the merge keeps the current value
	assert.Nil(t, update.Ingredients)

	_, err = ParseEntityUpdate("serums are great for everyone")
	assert.Error(t, err)
}

func TestParseProductName(t *testing.T) {
	name, err := ParseProductName(`{"product_name": "Radiance Renewal Serum"}`)
	require.NoError(t, err)
	assert.Equal(t, "Radiance Renewal Serum", name)

	name, err = ParseProductName(`{"product_name": null}`)
	require.NoError(t, err)
	assert.Empty(t, name)

	_, err = ParseProductName("Which product do you mean?")
	assert.Error(t, err)
}
