package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/pipeline"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type ChatHandler struct {
	engine *pipeline.Engine
}

func NewChatHandler(engine *pipeline.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	response, err := h.engine.Chat(c.Context(), pipeline.ChatRequest{
		SessionID: req.SessionID,
		Utterance: req.Message,
	})
	if err != nil {
		logger.Error("Failed to process chat turn", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	return c.JSON(response)
}
