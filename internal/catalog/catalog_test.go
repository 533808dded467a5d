package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load(filepath.Join("testdata", "catalog.csv"))
	require.NoError(t, err)
	return s
}

func TestLoadSkipsUnparseableRows(t *testing.T) {
	s := loadTestStore(t)

	// The broken-price row is dropped, the rest load.
	assert.Len(t, s.Products(), 3)
	_, ok := s.Product("P004")
	assert.False(t, ok)
}

func TestLoadNormalizesFields(t *testing.T) {
	s := loadTestStore(t)

	p, ok := s.Product("P001")
	require.True(t, ok)
	assert.Equal(t, "Radiance Renewal Serum", p.Name)
	assert.Equal(t, "serum", p.Category)
	assert.Equal(t, []string{"vitamin c", "ferulic acid"}, p.TopIngredients)
	assert.Equal(t, []string{"brightening", "dullness"}, p.Tags)
	assert.Equal(t, 42.00, p.Price)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.csv"))
	assert.Error(t, err)
}

func TestVocabularyDerivation(t *testing.T) {
	v := loadTestStore(t).Vocabulary()

	assert.Equal(t, []string{"cleanser", "moisturizer", "serum"}, v.Categories)
	assert.Contains(t, v.Ingredients, "salicylic acid")
	assert.Contains(t, v.SkinConcerns, "dryness")
	assert.True(t, v.HasCategory("Serum"))
	assert.False(t, v.HasSkinConcern("anti-aging")) // only from the dropped row
}

func TestGetByIDPreservesOrderAndSkipsUnknown(t *testing.T) {
	s := loadTestStore(t)

	got := s.GetByID([]string{"P003", "P999", "P001"})
	require.Len(t, got, 2)
	assert.Equal(t, "P003", got[0].ProductID)
	assert.Equal(t, "P001", got[1].ProductID)
}

func TestResolveNameExactSubstring(t *testing.T) {
	s := loadTestStore(t)

	p, score := s.ResolveName("what do people say about the radiance renewal serum?")
	assert.Equal(t, "P001", p.ProductID)
	assert.Equal(t, 1.0, score)
}

func TestResolveNameFuzzy(t *testing.T) {
	s := loadTestStore(t)

	// Minor typo still resolves with a high score.
	p, score := s.ResolveName("radiance renewel serum")
	assert.Equal(t, "P001", p.ProductID)
	assert.Greater(t, score, 0.8)
}

func TestResolveNameUnrelatedTextScoresLow(t *testing.T) {
	s := loadTestStore(t)

	_, score := s.ResolveName("what is your shipping policy")
	assert.Less(t, score, 0.8)
}
