package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/everglow-poc-v1/server/internal/agent/agents"
	"github.com/everglow-poc-v1/server/internal/agent/graph"
	"github.com/everglow-poc-v1/server/internal/agent/llm"
	"github.com/everglow-poc-v1/server/internal/agent/model"
	"github.com/everglow-poc-v1/server/internal/agent/repo"
	"github.com/everglow-poc-v1/server/internal/catalog"
	"github.com/everglow-poc-v1/server/internal/core"
	"github.com/everglow-poc-v1/server/internal/retrieval"
	"github.com/everglow-poc-v1/server/internal/server"
	"github.com/everglow-poc-v1/server/internal/speech"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
	pkgredis "github.com/everglow-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Conversation core
	Intent       model.IntentModelConfig
	Generation   model.GenerationModelConfig
	Embedding    model.EmbeddingConfig
	Conversation model.ConversationConfig
	Brand        model.BrandPromptConfig

	// Retrieval and catalog
	Retrieval model.RetrievalConfig
	Catalog   model.CatalogConfig

	// Transports
	Server model.ServerConfig
	Speech speech.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(os.Getenv("APP_ENV"))})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", envCfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	// LLM provider client shared by chat models and embedder
	clientCfg := &genai.ClientConfig{
		APIKey:  envCfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if envCfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = envCfg.BaseURL
	}
	genaiClient, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	chatModels, err := llm.NewChatModels(ctx, genaiClient, llm.ChatModelConfig{
		IntentConfig:     &envCfg.Intent,
		GenerationConfig: &envCfg.Generation,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat models")
	}

	embedder, err := llm.NewGeminiEmbedder(genaiClient, envCfg.Embedding.Model)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create embedder")
	}

	// Vector indexes
	wvClient, err := retrieval.NewWeaviateClient(envCfg.Retrieval.URL)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Weaviate client")
	}
	catalogIndex := retrieval.NewWeaviateIndex(wvClient, envCfg.Retrieval.CatalogClass,
		[]string{"product_id", "name", "category", "description", "top_ingredients", "tags", "price"}, "description")
	feedbackIndex := retrieval.NewWeaviateIndex(wvClient, envCfg.Retrieval.FeedbackClass,
		[]string{"source_id", "product_id", "text"}, "text")

	// Catalog is the source of truth for the entity vocabulary
	store, err := catalog.Load(envCfg.Catalog.Path)
	if err != nil {
		logx.Fatal().Str("path", envCfg.Catalog.Path).Err(err).Msg("Failed to load catalog")
	}
	logx.Info().Int("products", len(store.Products())).Msg("Catalog loaded")

	agentSet := agents.NewSet(agents.Deps{
		Generator:           chatModels.Generation,
		Embedder:            embedder,
		Catalog:             store,
		CatalogIndex:        catalogIndex,
		FeedbackIndex:       feedbackIndex,
		Vocab:               store.Vocabulary(),
		GenerationModelName: chatModels.GenerationModelName,
		CatalogTopK:         envCfg.Retrieval.CatalogTopK,
		FeedbackTopK:        envCfg.Retrieval.FeedbackTopK,
		HistoryWindow:       envCfg.Conversation.HistoryWindow,
		Brand:               envCfg.Brand,
	})

	orch, err := graph.NewOrchestrator(ctx, &graph.Config{
		IntentModel:     chatModels.Intent,
		IntentModelName: chatModels.IntentModelName,
		Agents:          agentSet,
		HistoryWindow:   envCfg.Conversation.HistoryWindow,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build orchestrator")
	}

	states := repo.NewRedisStateRepository(rdb, ttl)
	speechClient := speech.NewClient(envCfg.Speech)

	srv := server.New(envCfg.Server.Addr, orch, store, speechClient, states)
	if err := srv.Run(); err != nil {
		logx.Fatal().Err(err).Msg("Server stopped")
	}
}
