package model

import "encoding/json"

// ResultKind discriminates the heterogeneous agent outcomes. The orchestrator
// consumes results through this single tagged type instead of inspecting ad
// hoc key presence.
type ResultKind int

const (
	// ResultError carries a user-facing apology for a failed capability call.
	ResultError ResultKind = iota
	// ResultReply carries a plain conversational reply or clarifying question.
	ResultReply
	// ResultRecommendation carries ranked product ids plus a short
	// justification used as the chat-visible message.
	ResultRecommendation
)

// AgentResult is the uniform return shape of every agent.
type AgentResult struct {
	Kind          ResultKind
	Message       string
	ProductIDs    []string
	Justification string
}

// ErrorResult builds a ResultError.
func ErrorResult(msg string) AgentResult {
	return AgentResult{Kind: ResultError, Message: msg}
}

// ReplyResult builds a ResultReply.
func ReplyResult(msg string) AgentResult {
	return AgentResult{Kind: ResultReply, Message: msg}
}

// RecommendationResult builds a ResultRecommendation.
func RecommendationResult(productIDs []string, justification string) AgentResult {
	return AgentResult{Kind: ResultRecommendation, ProductIDs: productIDs, Justification: justification}
}

// UserMessage extracts the single chat-visible string, honoring the
// error > reply > recommendation priority order.
func (r AgentResult) UserMessage() string {
	switch r.Kind {
	case ResultRecommendation:
		return r.Justification
	default:
		return r.Message
	}
}

// TurnInput feeds one turn into the compiled graph.
type TurnInput struct {
	Query string
	Conv  *ConversationState
}

// IntentDecision is the router's classification handed to the dispatched
// agent node.
type IntentDecision struct {
	Intent Intent
	Query  string
}

// TurnResult is the graph's output for one turn.
type TurnResult struct {
	Message    string
	ProductIDs []string
}

// Envelope is the orchestrator's response contract: the chat message, the
// serialized next state, and an optional structured product id side-channel.
type Envelope struct {
	Message    string          `json:"message"`
	State      json.RawMessage `json:"state"`
	ProductIDs []string        `json:"product_ids,omitempty"`
}
