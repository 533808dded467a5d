package model

// CatalogProduct is a product as stored in the catalog, read-only to the
// conversation core.
type CatalogProduct struct {
	ProductID      string   `json:"product_id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	TopIngredients []string `json:"top_ingredients"`
	Tags           []string `json:"tags"`
	Price          float64  `json:"price"`
}

// FeedbackRecord is a customer review or support ticket normalized to a
// single retrievable shape.
type FeedbackRecord struct {
	SourceID  string         `json:"source_id"`
	ProductID string         `json:"product_id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
