package service

import (
	"context"
	"encoding/json"
	"sync"

	"spacegame-combat/internal/combat"
	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"
)

// hitRoller always hits with zero damage jitter.
type hitRoller struct{}

func (hitRoller) Float64() float64 { return 0 }
func (hitRoller) Intn(n int) int { return n / 2 }

type fakeSnapshots struct {
	mu     sync.Mutex
	rows   map[string][]byte
	onSave func(playerID string)
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{rows: make(map[string][]byte)}
}

func (f *fakeSnapshots) Save(_ context.Context, playerID string, state []byte) error {
	if f.onSave != nil {
		f.onSave(playerID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[playerID] = append([]byte(nil), state...)
	return nil
}

func (f *fakeSnapshots) Get(_ context.Context, playerID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[playerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return row, nil
}

func (f *fakeSnapshots) Delete(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, playerID)
	return nil
}

func (f *fakeSnapshots) snapshot(playerID string) (combat.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[playerID]
	if !ok {
		return combat.Snapshot{}, false
	}
	var s combat.Snapshot
	if err := json.Unmarshal(row, &s); err != nil {
		return combat.Snapshot{}, false
	}
	return s, true
}

type fakeGranter struct {
	mu  sync.Mutex
	got []model.Grant
}

func (f *fakeGranter) Grant(_ string, g model.Grant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, g)
}

func (f *fakeGranter) grants() []model.Grant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Grant(nil), f.got...)
}

type fakeRecorder struct {
	mu          sync.Mutex
	kills       []combat.ShipDestroyed
	completions []combat.Completed
}

func (f *fakeRecorder) RecordKill(_, _ string, d combat.ShipDestroyed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kills = append(f.kills, d)
}

func (f *fakeRecorder) RecordCompletion(_ string, c combat.Completed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, c)
}

type fakePusher struct {
	mu     sync.Mutex
	events []model.WSEvent
}

func (f *fakePusher) SendToPlayer(_ string, e *model.WSEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
}

func (f *fakePusher) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fakeEventStore struct {
	mu     sync.Mutex
	events []model.GameEvent
}

func (f *fakeEventStore) Create(_ context.Context, eventType, actor, target string, details json.RawMessage) (*model.GameEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := model.GameEvent{EventType: eventType, ActorName: actor, TargetName: target, Details: details}
	f.events = append(f.events, e)
	return &e, nil
}

func (f *fakeEventStore) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeNotifier struct {
	mu        sync.Mutex
	bossKills []string
	raids     []string
}

func (f *fakeNotifier) SendBossKill(_, boss, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bossKills = append(f.bossKills, boss)
}

func (f *fakeNotifier) SendRaidComplete(_ string, c combat.Completed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raids = append(f.raids, c.Name)
}
