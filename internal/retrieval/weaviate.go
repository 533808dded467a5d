package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	errx "github.com/everglow-poc-v1/server/internal/core/error"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// NewWeaviateClient builds a Weaviate client from a plain URL.
func NewWeaviateClient(url string) (*weaviate.Client, error) {
	cfg := weaviate.Config{
		Host:   url,
		Scheme: "http",
	}
	if strings.HasPrefix(url, "https://") {
		cfg.Scheme = "https"
		cfg.Host = strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		cfg.Host = strings.TrimPrefix(url, "http://")
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return client, nil
}

// WeaviateIndex implements Index over one Weaviate class.
type WeaviateIndex struct {
	client     *weaviate.Client
	class      string
	properties []string
	textProp   string
}

// NewWeaviateIndex wraps a class. properties are the metadata fields to
// retrieve per match; textProp (optional, must be listed in properties)
// names the field carrying the match's raw text.
func NewWeaviateIndex(client *weaviate.Client, class string, properties []string, textProp string) *WeaviateIndex {
	return &WeaviateIndex{
		client:     client,
		class:      class,
		properties: properties,
		textProp:   textProp,
	}
}

// Query implements Index via a GraphQL nearVector search with a where
// conjunction built from the filter.
func (w *WeaviateIndex) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error) {
	fields := make([]graphql.Field, 0, len(w.properties)+1)
	for _, p := range w.properties {
		fields = append(fields, graphql.Field{Name: p})
	}
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{
		{Name: "id"},
		{Name: "certainty"},
	}})

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	query := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK)

	if where := buildWhere(filter); where != nil {
		query = query.WithWhere(where)
	}

	result, err := query.Do(ctx)
	if err != nil {
		logx.Error().Err(err).Str("class", w.class).Msg("weaviate query failed")
		return nil, errx.WrapRetrieval(err)
	}
	if len(result.Errors) > 0 && result.Errors[0] != nil {
		err := fmt.Errorf("graphql: %s", result.Errors[0].Message)
		logx.Error().Err(err).Str("class", w.class).Msg("weaviate query returned errors")
		return nil, errx.WrapRetrieval(err)
	}

	matches, err := w.parseMatches(result)
	if err != nil {
		logx.Error().Err(err).Str("class", w.class).Msg("failed to parse weaviate response")
		return nil, errx.WrapRetrieval(err)
	}

	logx.Debug().Str("class", w.class).Int("matches", len(matches)).Msg("weaviate query completed")
	return matches, nil
}

// buildWhere converts the filter conjunction into a Weaviate where tree.
func buildWhere(filter *Filter) *filters.WhereBuilder {
	if filter.Empty() {
		return nil
	}
	clauses := filter.Clauses()
	operands := make([]*filters.WhereBuilder, 0, len(clauses))
	for _, c := range clauses {
		operands = append(operands, filters.Where().
			WithPath([]string{c.Field}).
			WithOperator(filters.ContainsAny).
			WithValueText(c.Values...))
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

func (w *WeaviateIndex) parseMatches(resp *models.GraphQLResponse) ([]Match, error) {
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql data: %w", err)
	}
	var decoded struct {
		Get map[string][]map[string]any `json:"Get"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal graphql data: %w", err)
	}

	rows := decoded.Get[w.class]
	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		m := Match{Metadata: map[string]any{}}
		for _, p := range w.properties {
			if v, ok := row[p]; ok {
				m.Metadata[p] = v
			}
		}
		if w.textProp != "" {
			if s, ok := row[w.textProp].(string); ok {
				m.Text = s
			}
		}
		if add, ok := row["_additional"].(map[string]any); ok {
			if id, ok := add["id"].(string); ok {
				m.ID = id
			}
			if score, ok := add["certainty"].(float64); ok {
				m.Score = score
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}
