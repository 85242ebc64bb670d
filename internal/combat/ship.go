package combat

import (
	"encoding/json"
	"math"
	"time"
)

// MaxEngagementRange is the planar distance beyond which no weapon can fire.
const MaxEngagementRange = 400.0

type ModuleType string

const (
	ModuleWeapon ModuleType = "weapon"
	ModuleShield ModuleType = "shield"
	ModuleEngine ModuleType = "engine"
	ModuleSensor ModuleType = "sensor"
	ModuleArmor  ModuleType = "armor"
)

type ModuleStatus string

const (
	ModuleOperational ModuleStatus = "operational"
	ModuleDamaged     ModuleStatus = "damaged"
	ModuleDestroyed   ModuleStatus = "destroyed"
)

// Weapon is a single hardpoint. CurrentCooldown counts down to 0 (ready).
type Weapon struct {
	Name            string        `json:"name" yaml:"name"`
	Damage          int           `json:"damage" yaml:"damage"`
	Range           int           `json:"range" yaml:"range"`
	Cooldown        time.Duration `json:"cooldown" yaml:"cooldown"`
	CurrentCooldown time.Duration `json:"current_cooldown" yaml:"-"`
}

func (w *Weapon) Ready() bool {
	return w.CurrentCooldown <= 0
}

type weaponJSON struct {
	Name              string `json:"name"`
	Damage            int    `json:"damage"`
	Range             int    `json:"range"`
	CooldownMs        int64  `json:"cooldown_ms"`
	CurrentCooldownMs int64  `json:"current_cooldown_ms"`
}

// MarshalJSON writes cooldowns as whole milliseconds.
func (w Weapon) MarshalJSON() ([]byte, error) {
	return json.Marshal(weaponJSON{
		Name:              w.Name,
		Damage:            w.Damage,
		Range:             w.Range,
		CooldownMs:        w.Cooldown.Milliseconds(),
		CurrentCooldownMs: w.CurrentCooldown.Milliseconds(),
	})
}

func (w *Weapon) UnmarshalJSON(data []byte) error {
	var v weaponJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = Weapon{
		Name:            v.Name,
		Damage:          v.Damage,
		Range:           v.Range,
		Cooldown:        time.Duration(v.CooldownMs) * time.Millisecond,
		CurrentCooldown: time.Duration(v.CurrentCooldownMs) * time.Millisecond,
	}
	return nil
}

// Module is an optional ship sub-system whose health scales one of the
// ship-wide damage modifiers.
type Module struct {
	ID                string       `json:"id" yaml:"id"`
	Name              string       `json:"name" yaml:"name"`
	Type              ModuleType   `json:"type" yaml:"type"`
	Health            int          `json:"health" yaml:"health"`
	MaxHealth         int          `json:"max_health" yaml:"max_health"`
	CriticalThreshold int          `json:"critical_threshold" yaml:"critical_threshold"`
	Efficiency        float64      `json:"efficiency" yaml:"-"`
	Status            ModuleStatus `json:"status" yaml:"-"`
}

// refresh recomputes efficiency and status from health.
func (m *Module) refresh() {
	if m.Health < 0 {
		m.Health = 0
	}
	m.Efficiency = HealthPercentage(m.Health, m.MaxHealth)
	switch {
	case m.Health == 0:
		m.Status = ModuleDestroyed
	case m.Health <= m.CriticalThreshold:
		m.Status = ModuleDamaged
	default:
		m.Status = ModuleOperational
	}
}

// DamageModifiers are ship-wide multipliers derived from module efficiency.
type DamageModifiers struct {
	WeaponEfficiency float64 `json:"weapon_efficiency"`
	ShieldRegenRate  float64 `json:"shield_regen_rate"`
	EnginePower      float64 `json:"engine_power"`
	SensorRange      float64 `json:"sensor_range"`
	ArmorResistance  float64 `json:"armor_resistance"`
}

func NeutralModifiers() DamageModifiers {
	return DamageModifiers{
		WeaponEfficiency: 1,
		ShieldRegenRate:  1,
		EnginePower:      1,
		SensorRange:      1,
		ArmorResistance:  1,
	}
}

// DamageModifiersFor derives the modifiers from the first module of each type.
// Missing module types stay at 1.0.
func DamageModifiersFor(modules []Module) DamageModifiers {
	mods := NeutralModifiers()
	seen := make(map[ModuleType]bool, 5)
	for _, m := range modules {
		if seen[m.Type] {
			continue
		}
		seen[m.Type] = true
		v := m.Efficiency / 100
		switch m.Type {
		case ModuleWeapon:
			mods.WeaponEfficiency = v
		case ModuleShield:
			mods.ShieldRegenRate = v
		case ModuleEngine:
			mods.EnginePower = v
		case ModuleSensor:
			mods.SensorRange = v
		case ModuleArmor:
			mods.ArmorResistance = v
		}
	}
	return mods
}

// HealthPercentage returns current/max*100 clamped to [0, 100].
func HealthPercentage(current, max int) float64 {
	if max <= 0 {
		return 0
	}
	p := float64(current) / float64(max) * 100
	return math.Max(0, math.Min(100, p))
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func Distance(a, b Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Ship is one combatant. A nil Modules slice means the ship has no module
// system and always fights with neutral modifiers.
type Ship struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Class      string          `json:"class" yaml:"class"`
	Hull       int             `json:"hull" yaml:"hull"`
	MaxHull    int             `json:"max_hull" yaml:"max_hull"`
	Shield     int             `json:"shield" yaml:"shield"`
	MaxShield  int             `json:"max_shield" yaml:"max_shield"`
	Position   Position        `json:"position" yaml:"position"`
	Player     bool            `json:"player" yaml:"-"`
	Targeted   bool            `json:"targeted" yaml:"-"`
	Wave       int             `json:"wave" yaml:"-"`
	Experience int             `json:"experience,omitempty" yaml:"experience"`
	Weapons    []Weapon        `json:"weapons" yaml:"weapons"`
	Modules    []Module        `json:"modules,omitempty" yaml:"modules"`
	Modifiers  DamageModifiers `json:"modifiers" yaml:"-"`
}

func (s *Ship) Destroyed() bool {
	return s.Hull <= 0
}

func (s *Ship) HasModules() bool {
	return s.Modules != nil
}

func (s *Ship) HullPercentage() float64 {
	return HealthPercentage(s.Hull, s.MaxHull)
}

func (s *Ship) ShieldPercentage() float64 {
	return HealthPercentage(s.Shield, s.MaxShield)
}

// RefreshModifiers recomputes every module's derived fields and the ship
// modifiers. Call it after any module health change.
func (s *Ship) RefreshModifiers() {
	if !s.HasModules() {
		s.Modifiers = NeutralModifiers()
		return
	}
	for i := range s.Modules {
		s.Modules[i].refresh()
	}
	s.Modifiers = DamageModifiersFor(s.Modules)
}

// Clone returns a deep copy so templates are never mutated by combat.
func (s Ship) Clone() Ship {
	c := s
	c.Weapons = append([]Weapon(nil), s.Weapons...)
	if s.Modules != nil {
		c.Modules = append([]Module{}, s.Modules...)
	}
	return c
}

// clamp keeps the pools inside [0, max].
func (s *Ship) clamp() {
	s.Hull = clampInt(s.Hull, 0, s.MaxHull)
	s.Shield = clampInt(s.Shield, 0, s.MaxShield)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
