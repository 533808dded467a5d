// Package retrieval abstracts vector similarity search with structured
// metadata filtering over the catalog and feedback indexes.
package retrieval

import (
	"context"
	"strings"
)

// Match is one ranked similarity-search result.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
	Text     string
}

// Clause is a single membership constraint: the named metadata field must
// contain at least one of the values.
type Clause struct {
	Field  string
	Values []string
}

// Filter is a conjunction of membership clauses. Fields without a clause are
// unconstrained. The zero value (or nil) matches everything.
type Filter struct {
	clauses []Clause
}

// NewFilter returns an empty conjunction.
func NewFilter() *Filter {
	return &Filter{}
}

// ContainsAny adds a membership clause. Empty value lists are skipped so
// absent entity kinds impose no constraint. Values are passed through as-is;
// entity values arrive already normalized and ids are case-sensitive.
func (f *Filter) ContainsAny(field string, values []string) *Filter {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return f
	}
	f.clauses = append(f.clauses, Clause{Field: field, Values: cleaned})
	return f
}

// Clauses exposes the accumulated constraints.
func (f *Filter) Clauses() []Clause {
	if f == nil {
		return nil
	}
	return f.clauses
}

// Empty reports whether the filter imposes no constraint.
func (f *Filter) Empty() bool {
	return f == nil || len(f.clauses) == 0
}

// Index is one queryable semantic index.
type Index interface {
	// Query runs a vector similarity search, returning at most topK matches
	// with their metadata, best first.
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error)
}
