package service

import (
	"context"
	"encoding/json"
	"time"

	"spacegame-combat/internal/combat"
	"spacegame-combat/internal/model"

	"go.uber.org/zap"
)

type EventStore interface {
	Create(ctx context.Context, eventType, actorName, targetName string, details json.RawMessage) (*model.GameEvent, error)
}

type Notifier interface {
	SendBossKill(pilot, boss, weapon, raid string)
	SendRaidComplete(pilot string, c combat.Completed)
}

// EventService records combat events and dispatches the notable ones to
// Discord. Writes happen off the caller's goroutine.
type EventService struct {
	store  EventStore
	notify Notifier
	log    *zap.Logger
}

func NewEventService(store EventStore, notify Notifier, log *zap.Logger) *EventService {
	return &EventService{store: store, notify: notify, log: log}
}

// RecordKill saves a hostile kill. Boss kills also go to the kill feed.
func (s *EventService) RecordKill(pilot, raid string, d combat.ShipDestroyed) {
	eventType := model.EventKill
	if d.Boss {
		eventType = model.EventBossKill
		s.notify.SendBossKill(pilot, d.Ship.Name, d.Weapon, raid)
	}
	details, _ := json.Marshal(map[string]interface{}{
		"weapon": d.Weapon,
		"class":  d.Ship.Class,
		"raid":   raid,
	})
	s.write(eventType, pilot, d.Ship.Name, details)
}

// RecordCompletion saves the end of an encounter. Raids are announced.
func (s *EventService) RecordCompletion(pilot string, c combat.Completed) {
	eventType := model.EventMissionDone
	switch {
	case c.Result == combat.ResultDefeat:
		eventType = model.EventDefeat
	case c.Kind == combat.KindRaid:
		eventType = model.EventRaidComplete
	}
	if c.Kind == combat.KindRaid {
		s.notify.SendRaidComplete(pilot, c)
	}
	details, _ := json.Marshal(map[string]interface{}{
		"encounter_id": c.EncounterID,
		"kind":         c.Kind,
		"result":       c.Result,
		"reward":       c.Reward,
		"elapsed":      c.Elapsed,
	})
	s.write(eventType, pilot, c.Name, details)
}

func (s *EventService) write(eventType, actor, target string, details json.RawMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.store.Create(ctx, eventType, actor, target, details); err != nil {
			s.log.Error("record event", zap.String("type", eventType), zap.Error(err))
		}
	}()
}
