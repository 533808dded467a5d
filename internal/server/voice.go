package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	// Voice frames carry whole utterances, not streamed chunks.
	ReadBufferSize:  10 * 1024 * 1024,
	WriteBufferSize: 10 * 1024 * 1024,
}

type wsError struct {
	Error string `json:"error"`
}

// handleVoiceAgent runs the voice loop: binary audio in, binary audio out.
// Conversation state lives in Redis keyed by a per-connection id, since the
// socket has no room for the state blob the chat endpoint echoes.
func (s *Server) handleVoiceAgent(c *gin.Context) {
	if s.speech == nil || !s.speech.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "voice is not configured"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logx.Error().Err(err).Msg("failed to upgrade the websocket")
		return
	}
	defer ws.Close()

	conversationID := uuid.NewString()
	ctx := c.Request.Context()
	logx.Info().Str("conversation_id", conversationID).Msg("voice session started")

	for {
		msgType, audio, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logx.Warn().Err(err).Str("conversation_id", conversationID).Msg("voice socket closed unexpectedly")
			}
			return
		}
		if msgType != websocket.BinaryMessage || len(audio) == 0 {
			_ = ws.WriteJSON(wsError{Error: "expected a non-empty binary audio frame"})
			continue
		}

		text, err := s.speech.Transcribe(ctx, audio, "audio.mp3")
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("transcription failed")
			_ = ws.WriteJSON(wsError{Error: "could not transcribe audio"})
			continue
		}

		rawState, err := s.states.Load(ctx, conversationID)
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load voice conversation state")
			// proceed with a fresh state rather than dropping the turn
		}

		envelope := s.orchestrator.Respond(ctx, text, rawState)

		if err := s.states.Save(ctx, conversationID, envelope.State); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to save voice conversation state")
		}

		replyAudio, err := s.speech.Synthesize(ctx, envelope.Message)
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("synthesis failed")
			_ = ws.WriteJSON(wsError{Error: "could not synthesize reply audio"})
			continue
		}

		if err := ws.WriteMessage(websocket.BinaryMessage, replyAudio); err != nil {
			logx.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to write reply audio")
			return
		}
	}
}
