package combat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShieldAbsorbs(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 4200, 1800)
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, alwaysHit(), log)

	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 420, res.Damage)
	assert.Equal(t, 1380, target.Shield)
	assert.Equal(t, 4200, target.Hull)
	assert.Equal(t, 2*time.Second, attacker.Weapons[0].CurrentCooldown)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, "Plasma Cannon hits Raider e1 for 420 damage", log.Entries()[0].Message)
	assert.Equal(t, LogDamage, log.Entries()[0].Type)
}

func TestResolveShieldOverflowIntoHull(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 4200, 1800)
	target.Shield = 300
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, alwaysHit(), log)

	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 0, target.Shield)
	assert.Equal(t, 4080, target.Hull)
	assert.Equal(t, 300, res.ShieldDamage)
	assert.Equal(t, 120, res.HullDamage)
}

func TestResolveOutOfRange(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 4200, 1800)
	target.Position = Position{X: 300, Y: 400}
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, alwaysHit(), log)

	assert.Equal(t, OutcomeOutOfRange, res.Outcome)
	assert.False(t, res.Mutated())
	assert.Equal(t, 4200, target.Hull)
	assert.Equal(t, 1800, target.Shield)
	assert.True(t, attacker.Weapons[0].Ready(), "out of range never consumes cooldown")
	require.Equal(t, 1, log.Len())
	entry := log.Entries()[0]
	assert.Equal(t, LogMiss, entry.Type)
	assert.True(t, strings.Contains(entry.Message, "out of range"))
}

func TestResolveMissResetsCooldown(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 4200, 1800)
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 1, &scriptedRoller{floats: []float64{0.85}}, log)

	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, 1800, target.Shield)
	assert.Equal(t, time.Second, attacker.Weapons[1].CurrentCooldown)
	assert.Equal(t, "Laser Battery misses Raider e1", log.Entries()[0].Message)
}

func TestResolveRejectedIsNoOp(t *testing.T) {
	cooling := playerShip()
	cooling.Weapons[0].CurrentCooldown = time.Second
	dead := enemyShip("dead", 100, 0)
	dead.Hull = 0

	tests := []struct {
		name     string
		attacker func() *Ship
		target   func() *Ship
		weapon   int
	}{
		{"nil attacker", func() *Ship { return nil }, func() *Ship { s := enemyShip("e", 10, 0); return &s }, 0},
		{"nil target", func() *Ship { s := playerShip(); return &s }, func() *Ship { return nil }, 0},
		{"destroyed target", func() *Ship { s := playerShip(); return &s }, func() *Ship { s := dead.Clone(); return &s }, 0},
		{"bad index", func() *Ship { s := playerShip(); return &s }, func() *Ship { s := enemyShip("e", 10, 0); return &s }, 7},
		{"negative index", func() *Ship { s := playerShip(); return &s }, func() *Ship { s := enemyShip("e", 10, 0); return &s }, -1},
		{"cooling down", func() *Ship { s := cooling.Clone(); return &s }, func() *Ship { s := enemyShip("e", 10, 0); return &s }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, tg := tt.attacker(), tt.target()
			var before *Ship
			if tg != nil {
				c := tg.Clone()
				before = &c
			}
			log := NewBattleLog(fixedClock())

			res := Resolve(a, tg, tt.weapon, alwaysHit(), log)

			assert.Equal(t, OutcomeRejected, res.Outcome)
			assert.Equal(t, 0, log.Len())
			if tg != nil {
				assert.Equal(t, *before, *tg)
			}
		})
	}
}

func TestResolveJitterAndFloor(t *testing.T) {
	attacker := playerShip()
	attacker.Weapons = []Weapon{{Name: "Peashooter", Damage: 20, Cooldown: time.Second}}
	target := enemyShip("e1", 500, 0)
	log := NewBattleLog(fixedClock())

	// Intn(101) = 0 means jitter -50, which would go below zero.
	res := Resolve(&attacker, &target, 0, &scriptedRoller{ints: []int{0}}, log)

	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, 500, target.Hull)
}

func TestResolveKill(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 100, 50)
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, alwaysHit(), log)

	assert.Equal(t, OutcomeKill, res.Outcome)
	assert.Equal(t, 0, target.Hull)
	assert.Equal(t, 0, target.Shield)
	assert.Equal(t, 100, res.HullDamage)
	assert.Equal(t, "Raider e1 destroyed!", log.Entries()[0].Message)
	assert.Equal(t, LogDestroy, log.Entries()[0].Type)
}

func TestResolveWithModules(t *testing.T) {
	attacker := playerShip()
	attacker.Modules = []Module{{ID: "wpn", Type: ModuleWeapon, Health: 50, MaxHealth: 100, CriticalThreshold: 20}}
	attacker.RefreshModifiers()

	target := enemyShip("e1", 4000, 0)
	target.Modules = []Module{
		{ID: "armor", Type: ModuleArmor, Health: 50, MaxHealth: 100, CriticalThreshold: 20},
		{ID: "engine", Type: ModuleEngine, Health: 100, MaxHealth: 100, CriticalThreshold: 20},
	}
	target.RefreshModifiers()
	log := NewBattleLog(fixedClock())

	// Jitter 0, then pick the engine module.
	res := Resolve(&attacker, &target, 0, &scriptedRoller{ints: []int{50, 1}}, log)

	// 420 * 0.5 weapon efficiency * (2 - 0.5 armor) = 315
	assert.Equal(t, 315, res.Damage)
	assert.Equal(t, 4000-315, target.Hull)
	assert.Equal(t, "engine", res.ModuleID)
	assert.Equal(t, 95, res.ModuleDamage)
	assert.Equal(t, 5, target.Modules[1].Health)
	assert.Equal(t, ModuleDamaged, target.Modules[1].Status)
	assert.InDelta(t, 0.05, target.Modifiers.EnginePower, 1e-9)
}

func TestResolveModuleHealthFloorsAtZero(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 10000, 0)
	target.Modules = []Module{{ID: "sensor", Type: ModuleSensor, Health: 10, MaxHealth: 100, CriticalThreshold: 20}}
	target.RefreshModifiers()
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, &scriptedRoller{ints: []int{50, 0}}, log)

	assert.Equal(t, 10, res.ModuleDamage)
	assert.Equal(t, 0, target.Modules[0].Health)
	assert.Equal(t, ModuleDestroyed, target.Modules[0].Status)
	assert.Equal(t, 0.0, target.Modifiers.SensorRange)
}

func TestResolveSkipsDestroyedModules(t *testing.T) {
	attacker := playerShip()
	target := enemyShip("e1", 10000, 0)
	target.Modules = []Module{
		{ID: "gone", Type: ModuleShield, Health: 0, MaxHealth: 100},
		{ID: "alive", Type: ModuleEngine, Health: 100, MaxHealth: 100},
	}
	target.RefreshModifiers()
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, &scriptedRoller{ints: []int{50, 0}}, log)

	assert.Equal(t, "alive", res.ModuleID)
}

func TestResolveWithoutRefreshUsesNeutralModifiers(t *testing.T) {
	attacker := Ship{
		ID: "a", Name: "Courier", Player: true, Hull: 500, MaxHull: 500,
		Weapons: []Weapon{{Name: "Plasma Cannon", Damage: 420, Cooldown: time.Second}},
	}
	target := Ship{ID: "t", Name: "Hauler", Hull: 4200, MaxHull: 4200, Shield: 1800, MaxShield: 1800}
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, alwaysHit(), log)

	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 420, res.Damage)
	assert.Equal(t, 1380, target.Shield)
	assert.Equal(t, 4200, target.Hull)
	assert.Equal(t, NeutralModifiers(), attacker.Modifiers)
}

func TestResolveWithoutRefreshReadsModuleHealth(t *testing.T) {
	attacker := playerShip()
	target := Ship{
		ID: "t", Name: "Bulwark", Hull: 4000, MaxHull: 4000,
		Modules: []Module{{ID: "armor", Type: ModuleArmor, Health: 100, MaxHealth: 100, CriticalThreshold: 20}},
	}
	log := NewBattleLog(fixedClock())

	res := Resolve(&attacker, &target, 0, &scriptedRoller{ints: []int{50, 0}}, log)

	// Intact armor means a 1.0 multiplier, not double damage.
	assert.Equal(t, 420, res.Damage)
	assert.Equal(t, 4000-420, target.Hull)
}

func TestResolveHostileLogNamesAttacker(t *testing.T) {
	lead := playerShip()

	raider := enemyShip("e1", 1000, 0)
	log := NewBattleLog(fixedClock())
	Resolve(&raider, &lead, 0, alwaysHit(), log)
	assert.Equal(t, "Raider e1 hits USS Endeavor for 150 damage", log.Entries()[0].Message)

	other := enemyShip("e2", 1000, 0)
	Resolve(&other, &lead, 0, &scriptedRoller{floats: []float64{0.9}}, log)
	assert.Equal(t, "Raider e2's Pulse Laser misses USS Endeavor", log.Entries()[0].Message)

	far := enemyShip("e3", 1000, 0)
	far.Position = Position{X: 1000}
	Resolve(&far, &lead, 0, alwaysHit(), log)
	assert.Equal(t, "Raider e3's Pulse Laser out of range", log.Entries()[0].Message)
}
