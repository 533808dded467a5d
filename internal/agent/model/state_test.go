package model

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateFreshState(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("{}")} {
		st := Hydrate(raw)
		require.NotNil(t, st)
		assert.Empty(t, st.History)
		assert.NotNil(t, st.History)
		assert.NotNil(t, st.FollowupQuestions)
		assert.Empty(t, st.Entities.Categories)
		assert.Equal(t, Intent(""), st.Intent)
	}
}

func TestHydrateCorruptStateStartsFresh(t *testing.T) {
	st := Hydrate(json.RawMessage(`{"history": "not-a-list"`))
	require.NotNil(t, st)
	assert.Empty(t, st.History)
	assert.Empty(t, st.ActiveAgent)
}

func TestSerializeHydrateRoundTrip(t *testing.T) {
	st := NewConversationState()
	st.AppendUser("I need a moisturizer")
	st.AppendAgent("What products are you looking for?")
	st.Entities = Entities{
		Categories:      []string{"moisturizer"},
		SkinConcerns:    []string{"dryness"},
		ProductName:     "Deep Hydration Moisturizer",
		ReviewProductID: "P002",
	}
	st.Intent = IntentRecommend
	st.ActiveAgent = AgentConversationalSearch
	st.FollowupQuestions = []string{"Anything else?"}

	got := Hydrate(Serialize(st))

	require.Len(t, got.History, 2)
	assert.Equal(t, schema.User, got.History[0].Role)
	assert.Equal(t, "I need a moisturizer", got.History[0].Content)
	assert.Equal(t, schema.Assistant, got.History[1].Role)
	assert.Equal(t, st.Entities, got.Entities)
	assert.Equal(t, IntentRecommend, got.Intent)
	assert.Equal(t, AgentConversationalSearch, got.ActiveAgent)
	assert.Equal(t, st.FollowupQuestions, got.FollowupQuestions)

	// A second round trip is byte-stable.
	assert.JSONEq(t, string(Serialize(st)), string(Serialize(got)))
}

func TestRecentHistoryBounds(t *testing.T) {
	st := NewConversationState()
	for i := 0; i < 5; i++ {
		st.AppendUser("q")
		st.AppendAgent("a")
	}

	assert.Len(t, st.RecentHistory(4), 4)
	assert.Len(t, st.RecentHistory(100), 10)
	assert.Len(t, st.RecentHistory(0), 10)
	assert.Equal(t, st.History[6:], st.RecentHistory(4))
}

func TestValidIntent(t *testing.T) {
	assert.True(t, ValidIntent("recommend"))
	assert.True(t, ValidIntent("review_explanation"))
	assert.True(t, ValidIntent("brand_info"))
	assert.True(t, ValidIntent("search"))
	assert.False(t, ValidIntent("purchase"))
	assert.False(t, ValidIntent(""))
}
