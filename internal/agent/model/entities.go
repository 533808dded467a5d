package model

import "strings"

// Entities is the structured memory extracted from free text. The three
// list kinds are validated against the controlled vocabulary; the product
// fields are pinned by the reviews agent once a product is resolved.
type Entities struct {
	Categories   []string `json:"categories"`
	Ingredients  []string `json:"ingredients"`
	SkinConcerns []string `json:"skin_concerns"`

	ProductName     string `json:"product_name,omitempty"`
	ReviewProductID string `json:"review_product_id,omitempty"`
}

// EntityUpdate is the extractor's proposed next state for the list-valued
// entity kinds. A nil slice means the extractor did not mention the kind
// (current value kept); a non-nil slice is the COMPLETE desired list, not a
// delta, and is adopted wholesale after vocabulary filtering. Add, remove and
// replace in free text ("also show serums", "remove cleansers", "just show
// moisturizers") all reduce to the extractor returning the full resulting
// list.
type EntityUpdate struct {
	Categories   []string `json:"categories"`
	Ingredients  []string `json:"ingredients"`
	SkinConcerns []string `json:"skin_concerns"`
}

// Vocabulary holds the fixed sets of valid category, ingredient and skin
// concern values derived once from the catalog at startup. Read-only after
// construction. Membership checks are case-insensitive.
type Vocabulary struct {
	Categories   []string
	Ingredients  []string
	SkinConcerns []string

	categories   map[string]struct{}
	ingredients  map[string]struct{}
	skinConcerns map[string]struct{}
}

// NewVocabulary builds a Vocabulary from the catalog-derived value lists.
func NewVocabulary(categories, ingredients, skinConcerns []string) *Vocabulary {
	v := &Vocabulary{
		Categories:   categories,
		Ingredients:  ingredients,
		SkinConcerns: skinConcerns,
		categories:   make(map[string]struct{}, len(categories)),
		ingredients:  make(map[string]struct{}, len(ingredients)),
		skinConcerns: make(map[string]struct{}, len(skinConcerns)),
	}
	for _, c := range categories {
		v.categories[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, i := range ingredients {
		v.ingredients[strings.ToLower(strings.TrimSpace(i))] = struct{}{}
	}
	for _, s := range skinConcerns {
		v.skinConcerns[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return v
}

func (v *Vocabulary) HasCategory(s string) bool {
	_, ok := v.categories[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func (v *Vocabulary) HasIngredient(s string) bool {
	_, ok := v.ingredients[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func (v *Vocabulary) HasSkinConcern(s string) bool {
	_, ok := v.skinConcerns[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// MergeEntities applies the extractor's proposed update to the current
// entities. Each non-nil list in the update replaces the current list after
// out-of-vocabulary entries are dropped; nil lists leave the current value
// untouched. Pinned product fields are never modified here. This merge
// trusts the extractor to return complete lists (see EntityUpdate).
func MergeEntities(current Entities, update EntityUpdate, vocab *Vocabulary) Entities {
	next := current
	if update.Categories != nil {
		next.Categories = filterVocab(update.Categories, vocab.HasCategory)
	}
	if update.Ingredients != nil {
		next.Ingredients = filterVocab(update.Ingredients, vocab.HasIngredient)
	}
	if update.SkinConcerns != nil {
		next.SkinConcerns = filterVocab(update.SkinConcerns, vocab.HasSkinConcern)
	}
	return next
}

func filterVocab(values []string, valid func(string) bool) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || !valid(v) {
			continue
		}
		kept = append(kept, strings.ToLower(v))
	}
	return kept
}
