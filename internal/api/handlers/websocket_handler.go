package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/pipeline"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type WebSocketHandler struct {
	engine *pipeline.Engine
}

func NewWebSocketHandler(engine *pipeline.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

// HandleConnection serves one chat connection. The answer is generated in
// full before delivery; chunking here is presentation only.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	sessionID := uuid.New().String()

	for {
		var msg struct {
			Type      string `json:"type"`
			Content   string `json:"content"`
			SessionID string `json:"session_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}

		err = h.streamResponse(c, sessionID, msg.Content)
		if err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, sessionID, utterance string) error {
	ctx := context.Background()

	h.sendChunk(c, "status", "Thinking...")

	response, err := h.engine.Chat(ctx, pipeline.ChatRequest{
		SessionID: sessionID,
		Utterance: utterance,
	})
	if err != nil {
		return err
	}

	words := splitIntoWords(response.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return h.sendComplete(c, response)
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, response *pipeline.ChatResponse) error {
	msg := map[string]interface{}{
		"type":       "complete",
		"turn_id":    response.TurnID,
		"session_id": response.SessionID,
		"language":   response.Language,
		"intent":     response.Intent,
		"grounded":   response.Grounded,
		"sources":    response.Sources,
		"latency_ms": response.LatencyMS,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
