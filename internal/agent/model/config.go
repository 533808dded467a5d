package model

// DefaultHistoryWindow bounds prompt history when no explicit window is set.
const DefaultHistoryWindow = 10

// ================ Config ================
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"15m"`
	// HistoryWindow bounds how many trailing history messages feed the
	// intent classifier and the NER extractor.
	HistoryWindow int `envconfig:"CONVERSATION_HISTORY_WINDOW" default:"10"`
}

type IntentModelConfig struct {
	Model       string  `envconfig:"INTENT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"INTENT_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"INTENT_TEMPERATURE" default:"0.0"`
}

type GenerationModelConfig struct {
	Model       string  `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GENERATION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GENERATION_TEMPERATURE" default:"0.2"`
}

type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
}

type RetrievalConfig struct {
	URL           string `envconfig:"WEAVIATE_URL" default:"http://localhost:8080"`
	CatalogClass  string `envconfig:"CATALOG_CLASS" default:"Product"`
	FeedbackClass string `envconfig:"FEEDBACK_CLASS" default:"Feedback"`
	CatalogTopK   int    `envconfig:"CATALOG_TOP_K" default:"10"`
	FeedbackTopK  int    `envconfig:"FEEDBACK_TOP_K" default:"5"`
}

type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:"data/skincare_catalog.csv"`
}

type BrandPromptConfig struct {
	BrandName string `envconfig:"PROMPT_BRAND_NAME" default:"Everglow"`
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8000"`
}
