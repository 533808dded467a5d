package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// ChatRequest carries one user turn. State is the opaque blob the client got
// back on the previous turn; omitted or corrupt state starts a fresh
// conversation.
type ChatRequest struct {
	Text  string          `json:"text"`
	State json.RawMessage `json:"state,omitempty"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	envelope := s.orchestrator.Respond(c.Request.Context(), req.Text, req.State)
	c.JSON(http.StatusOK, envelope)
}

// handleProducts resolves product ids (repeated ids params) to full catalog
// records, preserving request order and skipping unknown ids.
func (s *Server) handleProducts(c *gin.Context) {
	ids := c.QueryArray("ids")
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one ids parameter is required"})
		return
	}

	products := s.catalog.GetByID(ids)
	if len(products) < len(ids) {
		logx.Debug().Int("requested", len(ids)).Int("found", len(products)).Msg("some product ids were unknown")
	}
	c.JSON(http.StatusOK, products)
}
