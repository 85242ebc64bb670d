package model

import (
	"encoding/json"
	"time"
)

// GameEvent represents a notable in-game event recorded in the DB.
type GameEvent struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	ActorName  string          `json:"actor_name,omitempty"`
	TargetName string          `json:"target_name,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

const (
	EventKill         = "kill"
	EventBossKill     = "boss_kill"
	EventRaidComplete = "raid_complete"
	EventMissionDone  = "mission_complete"
	EventDefeat       = "defeat"
)
