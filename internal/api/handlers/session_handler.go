package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/session"
	"github.com/merchant-assistant/backend/internal/storage/sqlite"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type SessionHandler struct {
	sessions *session.Manager
	db       *sqlite.Client
}

func NewSessionHandler(sessions *session.Manager, db *sqlite.Client) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		db:       db,
	}
}

// GetHistory returns the persisted turns of a session, most recent first.
func (h *SessionHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if h.db == nil {
		return c.JSON(fiber.Map{"session_id": sessionID, "turns": []interface{}{}})
	}

	records, err := h.db.GetSessionHistory(sessionID, limit)
	if err != nil {
		logger.Error("Failed to load session history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	turns := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		turns = append(turns, fiber.Map{
			"turn_id":    r.ID,
			"turn_index": r.TurnIndex,
			"utterance":  r.Utterance,
			"answer":     r.Answer,
			"language":   r.Language,
			"intent":     r.Intent,
			"grounded":   r.Grounded,
			"created_at": r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"turns":      turns,
	})
}

// EndSession drops the in-memory conversation state.
func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session id is required",
		})
	}

	h.sessions.End(sessionID)

	return c.JSON(fiber.Map{"status": "ended"})
}
