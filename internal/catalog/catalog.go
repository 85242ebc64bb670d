// Package catalog loads the static encounter definitions: the player fleet
// template, single missions and multi-wave raids.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"spacegame-combat/internal/combat"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrInvalid  = errors.New("invalid catalog")
	ErrNotFound = errors.New("definition not found")
)

type Catalog struct {
	Fleet    []combat.Ship    `yaml:"fleet" json:"fleet"`
	Missions []combat.Mission `yaml:"missions" json:"missions"`
	Raids    []combat.Raid    `yaml:"raids" json:"raids"`

	missions map[string]int
	raids    map[string]int
}

// Load reads the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Fleet) == 0 {
		return fmt.Errorf("%w: fleet is empty", ErrInvalid)
	}
	fleetIDs := make(map[string]bool)
	for i := range c.Fleet {
		if err := validateShip(&c.Fleet[i], fleetIDs); err != nil {
			return fmt.Errorf("%w: fleet: %v", ErrInvalid, err)
		}
	}

	c.missions = make(map[string]int, len(c.Missions))
	c.raids = make(map[string]int, len(c.Raids))

	for i := range c.Missions {
		m := &c.Missions[i]
		if m.ID == "" {
			return fmt.Errorf("%w: mission %d has no id", ErrInvalid, i)
		}
		if _, dup := c.missions[m.ID]; dup {
			return fmt.Errorf("%w: duplicate mission %q", ErrInvalid, m.ID)
		}
		if len(m.Enemies) == 0 {
			return fmt.Errorf("%w: mission %q has no enemies", ErrInvalid, m.ID)
		}
		ids := make(map[string]bool)
		for j := range m.Enemies {
			if err := validateShip(&m.Enemies[j], ids); err != nil {
				return fmt.Errorf("%w: mission %q: %v", ErrInvalid, m.ID, err)
			}
		}
		c.missions[m.ID] = i
	}

	for i := range c.Raids {
		r := &c.Raids[i]
		if r.ID == "" {
			return fmt.Errorf("%w: raid %d has no id", ErrInvalid, i)
		}
		if _, dup := c.raids[r.ID]; dup {
			return fmt.Errorf("%w: duplicate raid %q", ErrInvalid, r.ID)
		}
		if len(r.Waves) == 0 {
			return fmt.Errorf("%w: raid %q has no waves", ErrInvalid, r.ID)
		}
		ids := make(map[string]bool)
		for w := range r.Waves {
			if len(r.Waves[w].Enemies) == 0 {
				return fmt.Errorf("%w: raid %q wave %d is empty", ErrInvalid, r.ID, w+1)
			}
			for j := range r.Waves[w].Enemies {
				if err := validateShip(&r.Waves[w].Enemies[j], ids); err != nil {
					return fmt.Errorf("%w: raid %q wave %d: %v", ErrInvalid, r.ID, w+1, err)
				}
			}
		}

		sum := r.SumRewards()
		if r.TotalRewards.IsZero() {
			r.TotalRewards = sum
		} else if !sameReward(r.TotalRewards, sum) {
			return fmt.Errorf("%w: raid %q total_rewards %s does not match wave sum %s",
				ErrInvalid, r.ID, r.TotalRewards, sum)
		}
		c.raids[r.ID] = i
	}
	return nil
}

func validateShip(s *combat.Ship, seen map[string]bool) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("ship %q has no id", s.Name)
	case seen[s.ID]:
		return fmt.Errorf("duplicate ship id %q", s.ID)
	case s.MaxHull <= 0:
		return fmt.Errorf("ship %q: max_hull must be positive", s.ID)
	case s.MaxShield < 0:
		return fmt.Errorf("ship %q: max_shield must not be negative", s.ID)
	case s.Hull <= 0 || s.Hull > s.MaxHull:
		return fmt.Errorf("ship %q: hull out of range", s.ID)
	case s.Shield < 0 || s.Shield > s.MaxShield:
		return fmt.Errorf("ship %q: shield out of range", s.ID)
	}
	seen[s.ID] = true

	for _, w := range s.Weapons {
		if w.Damage < 0 || w.Cooldown < 0 {
			return fmt.Errorf("ship %q weapon %q: negative stats", s.ID, w.Name)
		}
	}
	for _, m := range s.Modules {
		if m.MaxHealth <= 0 || m.Health < 0 || m.Health > m.MaxHealth {
			return fmt.Errorf("ship %q module %q: health out of range", s.ID, m.ID)
		}
	}
	s.RefreshModifiers()
	return nil
}

func sameReward(a, b combat.Reward) bool {
	if a.Credits != b.Credits || a.Experience != b.Experience || len(a.Loot) != len(b.Loot) {
		return false
	}
	for i := range a.Loot {
		if a.Loot[i] != b.Loot[i] {
			return false
		}
	}
	return true
}

// PlayerFleet returns a copy of the fleet template.
func (c *Catalog) PlayerFleet() []combat.Ship {
	out := make([]combat.Ship, len(c.Fleet))
	for i, s := range c.Fleet {
		out[i] = s.Clone()
	}
	return out
}

func (c *Catalog) Mission(id string) (combat.Mission, error) {
	i, ok := c.missions[id]
	if !ok {
		return combat.Mission{}, fmt.Errorf("mission %q: %w", id, ErrNotFound)
	}
	return c.Missions[i], nil
}

func (c *Catalog) Raid(id string) (combat.Raid, error) {
	i, ok := c.raids[id]
	if !ok {
		return combat.Raid{}, fmt.Errorf("raid %q: %w", id, ErrNotFound)
	}
	return c.Raids[i], nil
}
