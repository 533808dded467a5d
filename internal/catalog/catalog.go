// Package catalog loads the product catalog into memory and derives the
// controlled vocabulary used to validate extracted entities.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// Store is the in-memory product catalog: direct lookup by id plus the
// controlled vocabulary, both read-only after Load.
type Store struct {
	products []model.CatalogProduct
	byID     map[string]model.CatalogProduct
	vocab    *model.Vocabulary
}

// Load reads the catalog CSV. Expected header:
// product_id,name,category,description,top_ingredients,tags,price
// with top_ingredients separated by "; " and tags by "|".
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("catalog %s has no data rows", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"product_id", "name", "category", "description", "top_ingredients", "tags", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog is missing expected column %q", required)
		}
	}

	s := &Store{byID: make(map[string]model.CatalogProduct, len(rows)-1)}
	for _, row := range rows[1:] {
		price, err := strconv.ParseFloat(strings.TrimSpace(row[col["price"]]), 64)
		if err != nil {
			logx.Warn().Str("product_id", row[col["product_id"]]).Msg("skipping catalog row with unparseable price")
			continue
		}
		p := model.CatalogProduct{
			ProductID:      strings.TrimSpace(row[col["product_id"]]),
			Name:           strings.TrimSpace(row[col["name"]]),
			Category:       strings.ToLower(strings.TrimSpace(row[col["category"]])),
			Description:    strings.TrimSpace(row[col["description"]]),
			TopIngredients: splitList(row[col["top_ingredients"]], ";"),
			Tags:           splitList(row[col["tags"]], "|"),
			Price:          price,
		}
		if p.ProductID == "" || p.Name == "" {
			continue
		}
		s.products = append(s.products, p)
		s.byID[p.ProductID] = p
	}
	if len(s.products) == 0 {
		return nil, fmt.Errorf("catalog %s contains no valid products", path)
	}

	s.vocab = deriveVocabulary(s.products)
	logx.Info().
		Int("products", len(s.products)).
		Int("categories", len(s.vocab.Categories)).
		Int("ingredients", len(s.vocab.Ingredients)).
		Int("skin_concerns", len(s.vocab.SkinConcerns)).
		Msg("catalog loaded")
	return s, nil
}

// Vocabulary returns the catalog-derived controlled vocabulary.
func (s *Store) Vocabulary() *model.Vocabulary {
	return s.vocab
}

// Products returns all catalog products.
func (s *Store) Products() []model.CatalogProduct {
	return s.products
}

// Product looks up a single product by id.
func (s *Store) Product(id string) (model.CatalogProduct, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// GetByID resolves a batch of ids, silently skipping unknown ones.
func (s *Store) GetByID(ids []string) []model.CatalogProduct {
	out := make([]model.CatalogProduct, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ResolveName fuzzily matches free text against product names and returns
// the best candidate with its similarity score in [0,1]. Callers apply their
// own acceptance threshold.
func (s *Store) ResolveName(text string) (model.CatalogProduct, float64) {
	var best model.CatalogProduct
	bestScore := 0.0
	for _, p := range s.products {
		score := nameSimilarity(text, p.Name)
		if score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best, bestScore
}

// nameSimilarity scores how well a product name appears inside free text.
// Exact substring containment scores 1.0; otherwise the best Jaro-Winkler
// similarity over token windows of the name's length approximates partial
// matching.
func nameSimilarity(text, name string) float64 {
	text = strings.ToLower(strings.TrimSpace(text))
	name = strings.ToLower(strings.TrimSpace(name))
	if text == "" || name == "" {
		return 0
	}
	if strings.Contains(text, name) {
		return 1.0
	}

	jw := metrics.NewJaroWinkler()
	tokens := tokenize(text)
	width := len(tokenize(name))
	if width == 0 {
		return 0
	}

	best := strutil.Similarity(text, name, jw)
	for i := 0; i+width <= len(tokens); i++ {
		window := strings.Join(tokens[i:i+width], " ")
		if score := strutil.Similarity(window, name, jw); score > best {
			best = score
		}
	}
	return best
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}

func splitList(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func deriveVocabulary(products []model.CatalogProduct) *model.Vocabulary {
	catSet := map[string]struct{}{}
	ingSet := map[string]struct{}{}
	conSet := map[string]struct{}{}
	for _, p := range products {
		if p.Category != "" {
			catSet[p.Category] = struct{}{}
		}
		for _, i := range p.TopIngredients {
			ingSet[i] = struct{}{}
		}
		for _, t := range p.Tags {
			conSet[t] = struct{}{}
		}
	}
	return model.NewVocabulary(sortedKeys(catSet), sortedKeys(ingSet), sortedKeys(conSet))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
