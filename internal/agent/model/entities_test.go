package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testVocab() *Vocabulary {
	return NewVocabulary(
		[]string{"moisturizer", "serum", "cleanser"},
		[]string{"hyaluronic acid", "niacinamide", "retinol"},
		[]string{"dryness", "acne", "redness"},
	)
}

func TestMergeEntitiesNilKeepsCurrent(t *testing.T) {
	current := Entities{Categories: []string{"serum"}, SkinConcerns: []string{"acne"}}

	next := MergeEntities(current, EntityUpdate{}, testVocab())

	assert.Equal(t, []string{"serum"}, next.Categories)
	assert.Equal(t, []string{"acne"}, next.SkinConcerns)
	assert.Empty(t, next.Ingredients)
}

func TestMergeEntitiesReplacesWholesale(t *testing.T) {
	current := Entities{Categories: []string{"serum", "cleanser"}}

	// The extractor returns the complete desired list; "remove cleansers"
	// arrives as just the remaining category.
	next := MergeEntities(current, EntityUpdate{Categories: []string{"serum"}}, testVocab())
	assert.Equal(t, []string{"serum"}, next.Categories)

	// Adding arrives as the grown list.
	next = MergeEntities(next, EntityUpdate{Categories: []string{"serum", "moisturizer"}}, testVocab())
	assert.Equal(t, []string{"serum", "moisturizer"}, next.Categories)

	// An explicit empty list clears the kind.
	next = MergeEntities(next, EntityUpdate{Categories: []string{}}, testVocab())
	assert.Empty(t, next.Categories)
}

func TestMergeEntitiesClipsToVocabulary(t *testing.T) {
	update := EntityUpdate{
		Categories:   []string{"Serum", "toothpaste", " MOISTURIZER "},
		Ingredients:  []string{"snail mucin", "Niacinamide"},
		SkinConcerns: []string{"dryness", "boredom", ""},
	}

	next := MergeEntities(Entities{}, update, testVocab())

	assert.Equal(t, []string{"serum", "moisturizer"}, next.Categories)
	assert.Equal(t, []string{"niacinamide"}, next.Ingredients)
	assert.Equal(t, []string{"dryness"}, next.SkinConcerns)
}

func TestMergeEntitiesLeavesPinnedProductAlone(t *testing.T) {
	current := Entities{ProductName: "Radiance Renewal Serum", ReviewProductID: "P001"}

	next := MergeEntities(current, EntityUpdate{Categories: []string{"serum"}}, testVocab())

	assert.Equal(t, "Radiance Renewal Serum", next.ProductName)
	assert.Equal(t, "P001", next.ReviewProductID)
}

func TestVocabularyCaseInsensitive(t *testing.T) {
	v := testVocab()
	assert.True(t, v.HasCategory("SERUM"))
	assert.True(t, v.HasIngredient(" Retinol "))
	assert.True(t, v.HasSkinConcern("Redness"))
	assert.False(t, v.HasCategory("mask"))
}
