package handler

import (
	"encoding/json"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"
	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	playerRepo   *repository.PlayerRepository
	snapshotRepo *repository.SnapshotRepository
	eventRepo    *repository.EventRepository
	battles      *service.BattleService
	wsHub        *service.WSHub
	log          *zap.Logger
}

func NewAdminHandler(
	playerRepo *repository.PlayerRepository,
	snapshotRepo *repository.SnapshotRepository,
	eventRepo *repository.EventRepository,
	battles *service.BattleService,
	wsHub *service.WSHub,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		playerRepo:   playerRepo,
		snapshotRepo: snapshotRepo,
		eventRepo:    eventRepo,
		battles:      battles,
		wsHub:        wsHub,
		log:          log,
	}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats := model.AdminStats{
		PlayersOnline: h.wsHub.OnlineCount(),
		ActiveBattles: h.battles.ActiveCount(),
	}

	var err error
	if stats.PlayersTotal, err = h.playerRepo.CountTotal(ctx); err != nil {
		h.log.Warn("admin stats: count players", zap.Error(err))
	}
	if stats.Snapshots, err = h.snapshotRepo.Count(ctx); err != nil {
		h.log.Warn("admin stats: count snapshots", zap.Error(err))
	}
	if stats.EventsByType, err = h.eventRepo.CountByType(ctx); err != nil {
		h.log.Warn("admin stats: count events", zap.Error(err))
	}

	return c.JSON(stats)
}

func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var req model.WSAnnounce
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	data, _ := json.Marshal(req)
	h.wsHub.Broadcast(&model.WSEvent{
		Type: model.WSServerAnnounce,
		Data: data,
	})

	return c.JSON(fiber.Map{"ok": true, "online": h.wsHub.OnlineCount()})
}
