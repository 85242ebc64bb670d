package handler

import (
	"context"
	"time"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"
	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PublicHandler struct {
	playerRepo *repository.PlayerRepository
	eventRepo  *repository.EventRepository
	battles    *service.BattleService
	wsHub      *service.WSHub
}

func NewPublicHandler(playerRepo *repository.PlayerRepository, eventRepo *repository.EventRepository, battles *service.BattleService, wsHub *service.WSHub) *PublicHandler {
	return &PublicHandler{
		playerRepo: playerRepo,
		eventRepo:  eventRepo,
		battles:    battles,
		wsHub:      wsHub,
	}
}

func (h *PublicHandler) Stats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	totalPlayers, _ := h.playerRepo.CountTotal(ctx)

	result := fiber.Map{
		"players_total":  totalPlayers,
		"players_online": h.wsHub.OnlineCount(),
		"active_battles": h.battles.ActiveCount(),
		"server_status":  "online",
	}

	// Latest boss kill, if any
	events, err := h.eventRepo.ListByType(ctx, model.EventBossKill, 1)
	if err == nil && len(events) > 0 {
		e := events[0]
		result["last_boss_kill"] = fiber.Map{
			"actor_name":  e.ActorName,
			"target_name": e.TargetName,
			"created_at":  e.CreatedAt,
		}
	}

	return c.JSON(result)
}
