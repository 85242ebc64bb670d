package handler

import (
	"errors"

	"spacegame-combat/internal/middleware"
	"spacegame-combat/internal/model"
	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BattleHandler struct {
	battles *service.BattleService
}

func NewBattleHandler(battles *service.BattleService) *BattleHandler {
	return &BattleHandler{battles: battles}
}

func (h *BattleHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.battles.State(middleware.PlayerID(c)))
}

func (h *BattleHandler) StartMission(c *fiber.Ctx) error {
	st, err := h.battles.StartMission(middleware.PlayerID(c), middleware.Username(c), c.Params("id"))
	if err != nil {
		return battleError(c, err)
	}
	return c.Status(201).JSON(st)
}

func (h *BattleHandler) StartRaid(c *fiber.Ctx) error {
	st, err := h.battles.StartRaid(middleware.PlayerID(c), middleware.Username(c), c.Params("id"))
	if err != nil {
		return battleError(c, err)
	}
	return c.Status(201).JSON(st)
}

func (h *BattleHandler) Target(c *fiber.Ctx) error {
	var req model.TargetRequest
	if err := c.BodyParser(&req); err != nil || req.ShipID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "ship_id is required"})
	}
	st, err := h.battles.SelectTarget(middleware.PlayerID(c), req.ShipID)
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(st)
}

// Fire shoots with the given ship, or the lead ship when ship_id is empty.
// Misses and out-of-range shots are normal outcomes, not errors.
func (h *BattleHandler) Fire(c *fiber.Ctx) error {
	var req model.FireRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	resp, err := h.battles.Fire(middleware.PlayerID(c), req.ShipID, req.WeaponIndex)
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(resp)
}

func (h *BattleHandler) AutoAttack(c *fiber.Ctx) error {
	var req model.AutoAttackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	st, err := h.battles.SetAutoAttack(middleware.PlayerID(c), req.Enabled)
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(st)
}

func (h *BattleHandler) Stop(c *fiber.Ctx) error {
	st, err := h.battles.Stop(c.UserContext(), middleware.PlayerID(c))
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(st)
}

func (h *BattleHandler) Resume(c *fiber.Ctx) error {
	st, err := h.battles.Resume(c.UserContext(), middleware.PlayerID(c), middleware.Username(c))
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(st)
}

func battleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownEncounter):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoSnapshot):
		return c.Status(404).JSON(fiber.Map{"error": service.ErrNoSnapshot.Error()})
	case errors.Is(err, service.ErrAlreadyInCombat), errors.Is(err, service.ErrNotInCombat):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTarget):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
