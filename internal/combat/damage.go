package combat

import (
	"fmt"
	"math"
)

const (
	// HitChance is the probability that an in-range shot connects.
	HitChance = 0.85
	// DamageJitter is the half-width of the uniform damage spread.
	DamageJitter = 50
	// ModuleDamageShare is the part of raw damage that also hits a module.
	ModuleDamageShare = 0.30
)

type Outcome int

const (
	// OutcomeRejected means a precondition failed and nothing changed.
	OutcomeRejected Outcome = iota
	OutcomeOutOfRange
	OutcomeMiss
	OutcomeHit
	OutcomeKill
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeOutOfRange:
		return "out_of_range"
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeKill:
		return "kill"
	default:
		return "unknown"
	}
}

// AttackResult describes one resolved weapon-fire event.
type AttackResult struct {
	Outcome      Outcome
	Weapon       string
	Damage       int
	ShieldDamage int
	HullDamage   int
	ModuleID     string
	ModuleDamage int
}

// Mutated reports whether any ship state changed.
func (r AttackResult) Mutated() bool {
	return r.Outcome != OutcomeRejected && r.Outcome != OutcomeOutOfRange
}

// Resolve fires attacker's weapon at target. Game-rule failures never return
// an error: they either leave all state untouched (OutcomeRejected) or only
// add a log entry (OutcomeOutOfRange).
func Resolve(attacker, target *Ship, weaponIndex int, roll Roller, log *BattleLog) AttackResult {
	if attacker == nil || target == nil || attacker.Destroyed() || target.Destroyed() {
		return AttackResult{Outcome: OutcomeRejected}
	}
	if weaponIndex < 0 || weaponIndex >= len(attacker.Weapons) {
		return AttackResult{Outcome: OutcomeRejected}
	}
	weapon := &attacker.Weapons[weaponIndex]
	if !weapon.Ready() {
		return AttackResult{Outcome: OutcomeRejected, Weapon: weapon.Name}
	}

	if Distance(attacker.Position, target.Position) > MaxEngagementRange {
		if attacker.Player {
			log.Append(fmt.Sprintf("Target out of range for %s", weapon.Name), LogMiss)
		} else {
			log.Append(fmt.Sprintf("%s's %s out of range", attacker.Name, weapon.Name), LogMiss)
		}
		return AttackResult{Outcome: OutcomeOutOfRange, Weapon: weapon.Name}
	}

	attacker.RefreshModifiers()
	target.RefreshModifiers()

	if roll.Float64() >= HitChance {
		weapon.CurrentCooldown = weapon.Cooldown
		if attacker.Player {
			log.Append(fmt.Sprintf("%s misses %s", weapon.Name, target.Name), LogMiss)
		} else {
			log.Append(fmt.Sprintf("%s's %s misses %s", attacker.Name, weapon.Name, target.Name), LogMiss)
		}
		return AttackResult{Outcome: OutcomeMiss, Weapon: weapon.Name}
	}

	raw := rawDamage(attacker, target, weapon, roll)
	res := AttackResult{Outcome: OutcomeHit, Weapon: weapon.Name, Damage: raw}
	res.ShieldDamage, res.HullDamage = applyDamage(target, raw)

	if target.HasModules() {
		res.ModuleID, res.ModuleDamage = damageModule(target, raw, roll)
	}

	if target.Destroyed() {
		res.Outcome = OutcomeKill
		log.Append(fmt.Sprintf("%s destroyed!", target.Name), LogDestroy)
	} else if attacker.Player {
		log.Append(fmt.Sprintf("%s hits %s for %d damage", weapon.Name, target.Name, raw), LogDamage)
	} else {
		log.Append(fmt.Sprintf("%s hits %s for %d damage", attacker.Name, target.Name, raw), LogDamage)
	}

	weapon.CurrentCooldown = weapon.Cooldown
	return res
}

// rawDamage is base damage scaled by the attacker's weapon efficiency plus
// jitter, then scaled by the target's degraded armor when it has modules.
func rawDamage(attacker, target *Ship, weapon *Weapon, roll Roller) int {
	dmg := float64(weapon.Damage)*attacker.Modifiers.WeaponEfficiency +
		float64(roll.Intn(2*DamageJitter+1)-DamageJitter)
	if target.HasModules() {
		dmg *= 2 - target.Modifiers.ArmorResistance
	}
	if dmg < 0 {
		return 0
	}
	return int(math.Round(dmg))
}

// applyDamage drains shield first and carries the remainder into hull.
func applyDamage(target *Ship, dmg int) (shieldDmg, hullDmg int) {
	if target.Shield > 0 {
		if dmg >= target.Shield {
			shieldDmg = target.Shield
			dmg -= target.Shield
			target.Shield = 0
		} else {
			target.Shield -= dmg
			shieldDmg = dmg
			dmg = 0
		}
	}
	if dmg > 0 {
		hullDmg = dmg
		if hullDmg > target.Hull {
			hullDmg = target.Hull
		}
		target.Hull -= hullDmg
	}
	target.clamp()
	return shieldDmg, hullDmg
}

// damageModule applies the module share of raw damage to one random
// non-destroyed module and refreshes the ship modifiers.
func damageModule(target *Ship, raw int, roll Roller) (string, int) {
	candidates := make([]int, 0, len(target.Modules))
	for i, m := range target.Modules {
		if m.Status != ModuleDestroyed && m.Health > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return "", 0
	}

	m := &target.Modules[candidates[roll.Intn(len(candidates))]]
	dmg := int(math.Round(float64(raw) * ModuleDamageShare))
	if dmg > m.Health {
		dmg = m.Health
	}
	m.Health -= dmg
	target.RefreshModifiers()
	return m.ID, dmg
}
