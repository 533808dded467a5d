package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSkipsEmptyClauses(t *testing.T) {
	f := NewFilter().
		ContainsAny("category", []string{"serum"}).
		ContainsAny("top_ingredients", nil).
		ContainsAny("tags", []string{"", "  "})

	clauses := f.Clauses()
	require.Len(t, clauses, 1)
	assert.Equal(t, "category", clauses[0].Field)
	assert.Equal(t, []string{"serum"}, clauses[0].Values)
}

func TestFilterTrimsButPreservesCase(t *testing.T) {
	f := NewFilter().ContainsAny("product_id", []string{" P001 ", "P002"})

	clauses := f.Clauses()
	require.Len(t, clauses, 1)
	assert.Equal(t, []string{"P001", "P002"}, clauses[0].Values)
}

func TestFilterEmpty(t *testing.T) {
	assert.True(t, NewFilter().Empty())
	assert.True(t, (*Filter)(nil).Empty())
	assert.False(t, NewFilter().ContainsAny("category", []string{"serum"}).Empty())
}

func TestBuildWhereSingleClause(t *testing.T) {
	f := NewFilter().ContainsAny("product_id", []string{"p001"})

	where := buildWhere(f)
	require.NotNil(t, where)
	s := where.String()
	assert.Contains(t, s, "product_id")
	assert.Contains(t, s, "ContainsAny")
	assert.Contains(t, s, "p001")
}

func TestBuildWhereConjunction(t *testing.T) {
	f := NewFilter().
		ContainsAny("category", []string{"serum", "moisturizer"}).
		ContainsAny("tags", []string{"dryness"})

	where := buildWhere(f)
	require.NotNil(t, where)
	s := where.String()
	assert.Contains(t, s, "And")
	assert.Contains(t, s, "category")
	assert.Contains(t, s, "tags")
}

func TestBuildWhereEmptyFilter(t *testing.T) {
	assert.Nil(t, buildWhere(NewFilter()))
	assert.Nil(t, buildWhere(nil))
}
