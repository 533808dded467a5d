package model

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"
)

// Intent is the classified purpose of a user's utterance.
type Intent string

const (
	IntentRecommend         Intent = "recommend"
	IntentReviewExplanation Intent = "review_explanation"
	IntentBrandInfo         Intent = "brand_info"
	IntentSearch            Intent = "search"
)

// ValidIntent reports whether s is one of the fixed intent values.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentRecommend, IntentReviewExplanation, IntentBrandInfo, IntentSearch:
		return true
	}
	return false
}

// Agent names recorded in ConversationState.ActiveAgent.
const (
	AgentConversationalSearch = "conversational_search"
	AgentRecommendation       = "recommendation"
	AgentReviewsExplanation   = "reviews_explanation"
	AgentBrandAnswer          = "brand_answer"
)

// ConversationState is the full per-conversation context passed between turns.
// The core is stateless between invocations: the caller supplies the prior
// serialized state and receives the new one back with every envelope.
type ConversationState struct {
	// History holds the chronological turn log, one message per speaker turn.
	// Append-only within a turn.
	History []*schema.Message `json:"history"`

	// Entities is the structured memory accumulated across turns.
	Entities Entities `json:"entities"`

	// Intent is the last classified intent; empty before the first turn.
	Intent Intent `json:"intent,omitempty"`

	// ActiveAgent names the agent that produced the most recent response.
	// Continuity/telemetry only, never consulted for control flow.
	ActiveAgent string `json:"active_agent,omitempty"`

	// FollowupQuestions are pending clarifying questions surfaced to the user.
	FollowupQuestions []string `json:"followup_questions"`
}

// NewConversationState returns an empty state for a fresh conversation.
func NewConversationState() *ConversationState {
	return &ConversationState{
		History:           []*schema.Message{},
		FollowupQuestions: []string{},
	}
}

// Hydrate reconstructs a ConversationState from its serialized form.
// It never fails: nil, empty, or malformed input yields a fresh state,
// and missing fields default to empty containers.
func Hydrate(data json.RawMessage) *ConversationState {
	st := NewConversationState()
	if len(data) == 0 {
		return st
	}
	if err := json.Unmarshal(data, st); err != nil {
		return NewConversationState()
	}
	if st.History == nil {
		st.History = []*schema.Message{}
	}
	if st.FollowupQuestions == nil {
		st.FollowupQuestions = []string{}
	}
	return st
}

// Serialize projects the state back to its wire form, the inverse of Hydrate.
func Serialize(st *ConversationState) json.RawMessage {
	if st == nil {
		st = NewConversationState()
	}
	b, err := json.Marshal(st)
	if err != nil {
		// The state is plain data; marshal cannot realistically fail. Keep the
		// conversation alive with an empty state rather than propagating.
		return json.RawMessage(`{}`)
	}
	return b
}

// AppendUser records a user utterance in the history.
func (st *ConversationState) AppendUser(text string) {
	st.History = append(st.History, schema.UserMessage(text))
}

// AppendAgent records an agent reply in the history.
func (st *ConversationState) AppendAgent(text string) {
	st.History = append(st.History, schema.AssistantMessage(text, nil))
}

// RecentHistory returns at most n trailing history messages.
func (st *ConversationState) RecentHistory(n int) []*schema.Message {
	if n <= 0 || len(st.History) <= n {
		return st.History
	}
	return st.History[len(st.History)-n:]
}
