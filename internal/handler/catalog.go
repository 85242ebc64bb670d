package handler

import (
	"spacegame-combat/internal/catalog"
	"spacegame-combat/internal/combat"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

type missionSummary struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Difficulty string        `json:"difficulty"`
	Enemies    int           `json:"enemies"`
	Reward     combat.Reward `json:"reward"`
}

type raidSummary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Difficulty   string        `json:"difficulty"`
	Waves        []string      `json:"waves"`
	TotalRewards combat.Reward `json:"total_rewards"`
}

// List describes what can be started without giving away enemy stats.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	missions := make([]missionSummary, 0, len(h.cat.Missions))
	for _, m := range h.cat.Missions {
		missions = append(missions, missionSummary{
			ID:         m.ID,
			Name:       m.Name,
			Difficulty: m.Difficulty,
			Enemies:    len(m.Enemies),
			Reward:     m.Reward,
		})
	}

	raids := make([]raidSummary, 0, len(h.cat.Raids))
	for _, r := range h.cat.Raids {
		waves := make([]string, 0, len(r.Waves))
		for _, w := range r.Waves {
			waves = append(waves, w.Name)
		}
		raids = append(raids, raidSummary{
			ID:           r.ID,
			Name:         r.Name,
			Difficulty:   r.Difficulty,
			Waves:        waves,
			TotalRewards: r.TotalRewards,
		})
	}

	return c.JSON(fiber.Map{
		"fleet":    h.cat.PlayerFleet(),
		"missions": missions,
		"raids":    raids,
	})
}
