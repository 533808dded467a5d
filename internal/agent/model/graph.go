package model

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//
// Conv is the caller-hydrated ConversationState; the graph mutates it in
// place, so the orchestrator keeps a usable (possibly partially mutated)
// state even when a node fails mid-turn.
type AppState struct {
	Query string
	Conv  *ConversationState

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}
