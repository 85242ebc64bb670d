package handler

import (
	"errors"

	"spacegame-combat/internal/middleware"
	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PilotHandler struct {
	progression *service.ProgressionService
}

func NewPilotHandler(progression *service.ProgressionService) *PilotHandler {
	return &PilotHandler{progression: progression}
}

func (h *PilotHandler) Me(c *fiber.Ctx) error {
	pilot, err := h.progression.Pilot(c.UserContext(), middleware.PlayerID(c))
	if errors.Is(err, service.ErrPlayerNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "pilot not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load pilot"})
	}
	return c.JSON(pilot)
}
