package handler

import (
	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	eventRepo *repository.EventRepository
}

func NewEventHandler(eventRepo *repository.EventRepository) *EventHandler {
	return &EventHandler{eventRepo: eventRepo}
}

var feedTypes = map[string]bool{
	model.EventKill:         true,
	model.EventBossKill:     true,
	model.EventRaidComplete: true,
	model.EventMissionDone:  true,
	model.EventDefeat:       true,
}

// Feed lists recent events of one type, newest first.
func (h *EventHandler) Feed(c *fiber.Ctx) error {
	eventType := c.Query("type", model.EventBossKill)
	if !feedTypes[eventType] {
		return c.Status(400).JSON(fiber.Map{"error": "unknown event type: " + eventType})
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	events, err := h.eventRepo.ListByType(c.UserContext(), eventType, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load events"})
	}
	if events == nil {
		events = []model.GameEvent{}
	}
	return c.JSON(fiber.Map{"events": events})
}
