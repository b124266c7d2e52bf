package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/internal/storage/models"
	"github.com/merchant-assistant/backend/internal/storage/sqlite"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type FeedbackHandler struct {
	db *sqlite.Client
}

func NewFeedbackHandler(db *sqlite.Client) *FeedbackHandler {
	return &FeedbackHandler{
		db: db,
	}
}

func (h *FeedbackHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		TurnID  string `json:"turn_id"`
		Helpful bool   `json:"helpful"`
		Comment string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.TurnID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "turn_id is required",
		})
	}

	if h.db != nil {
		err := h.db.StoreFeedback(&models.Feedback{
			TurnID:  req.TurnID,
			Helpful: req.Helpful,
			Comment: req.Comment,
		})
		if err != nil {
			logger.Error("Failed to store feedback", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store feedback",
			})
		}
	}

	helpful := "false"
	if req.Helpful {
		helpful = "true"
	}
	metrics.UserSatisfaction.WithLabelValues(helpful).Inc()

	return c.JSON(fiber.Map{"status": "recorded"})
}
