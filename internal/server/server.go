// Package server exposes the assistant over HTTP: a JSON chat endpoint, a
// product lookup endpoint, and a binary websocket for the voice loop.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/everglow-poc-v1/server/internal/agent/graph"
	"github.com/everglow-poc-v1/server/internal/agent/repo"
	"github.com/everglow-poc-v1/server/internal/catalog"
	"github.com/everglow-poc-v1/server/internal/speech"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// Server wires the orchestrator and its supporting services to HTTP routes.
type Server struct {
	orchestrator *graph.Orchestrator
	catalog      *catalog.Store
	speech       *speech.Client
	states       *repo.RedisStateRepository
	addr         string
	router       *gin.Engine
}

// New assembles the router. The speech client may be disabled; the voice
// socket then rejects connections while the text endpoints keep working.
func New(addr string, orch *graph.Orchestrator, store *catalog.Store, sp *speech.Client, states *repo.RedisStateRepository) *Server {
	s := &Server{
		orchestrator: orch,
		catalog:      store,
		speech:       sp,
		states:       states,
		addr:         addr,
		router:       gin.Default(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.POST("/chat", s.handleChat)
	api.GET("/products", s.handleProducts)

	s.router.GET("/ws/voice-agent", s.handleVoiceAgent)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	logx.Info().Str("addr", s.addr).Msg("server listening")
	if err := s.router.Run(s.addr); err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}
