package model

import "spacegame-combat/internal/combat"

type TargetRequest struct {
	ShipID string `json:"ship_id"`
}

type FireRequest struct {
	ShipID      string `json:"ship_id"`
	WeaponIndex int    `json:"weapon_index"`
}

type AutoAttackRequest struct {
	Enabled bool `json:"enabled"`
}

// BattleState is what clients render: roster, log and progress.
type BattleState struct {
	EncounterID    string            `json:"encounter_id,omitempty"`
	Phase          combat.Phase      `json:"phase"`
	Result         combat.Result     `json:"result,omitempty"`
	InCombat       bool              `json:"in_combat"`
	Elapsed        int               `json:"elapsed"`
	AutoAttack     bool              `json:"auto_attack"`
	SelectedTarget string            `json:"selected_target,omitempty"`
	TransitionMs   int64             `json:"transition_ms,omitempty"`
	Ships          []combat.Ship     `json:"ships"`
	Log            []combat.LogEntry `json:"log"`
	Progress       *combat.Progress  `json:"progress,omitempty"`
	Revision       uint64            `json:"revision"`
}

type AttackResponse struct {
	Outcome      string      `json:"outcome"`
	Weapon       string      `json:"weapon,omitempty"`
	Damage       int         `json:"damage"`
	ShieldDamage int         `json:"shield_damage"`
	HullDamage   int         `json:"hull_damage"`
	ModuleID     string      `json:"module_id,omitempty"`
	ModuleDamage int         `json:"module_damage,omitempty"`
	State        BattleState `json:"state"`
}

type CompletedPayload struct {
	EncounterID string        `json:"encounter_id"`
	Name        string        `json:"name"`
	Kind        combat.Kind   `json:"kind"`
	Result      combat.Result `json:"result"`
	Reward      combat.Reward `json:"reward"`
	Elapsed     int           `json:"elapsed"`
}

type AdminStats struct {
	PlayersTotal  int            `json:"players_total"`
	PlayersOnline int            `json:"players_online"`
	ActiveBattles int            `json:"active_battles"`
	Snapshots     int            `json:"snapshots"`
	EventsByType  map[string]int `json:"events_by_type"`
}
