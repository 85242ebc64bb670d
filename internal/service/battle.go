package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"spacegame-combat/internal/combat"
	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrUnknownEncounter = errors.New("unknown mission or raid")
	ErrAlreadyInCombat  = errors.New("an encounter is already running")
	ErrNotInCombat      = errors.New("no encounter in combat")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrNoSnapshot       = errors.New("no saved encounter to resume")
)

type Catalog interface {
	PlayerFleet() []combat.Ship
	Mission(id string) (combat.Mission, error)
	Raid(id string) (combat.Raid, error)
}

type SnapshotStore interface {
	Save(ctx context.Context, playerID string, state []byte) error
	Get(ctx context.Context, playerID string) ([]byte, error)
	Delete(ctx context.Context, playerID string) error
}

type Granter interface {
	Grant(playerID string, g model.Grant)
}

type CombatRecorder interface {
	RecordKill(pilot, raid string, d combat.ShipDestroyed)
	RecordCompletion(pilot string, c combat.Completed)
}

type Pusher interface {
	SendToPlayer(playerID string, event *model.WSEvent)
}

type BattleOptions struct {
	TickInterval time.Duration
	// NewRoller builds the dice for one pilot's encounters.
	NewRoller func(playerID string) combat.Roller
}

type battleSession struct {
	mu       sync.Mutex
	playerID string
	username string
	enc      *combat.Encounter
	sched    *combat.Scheduler
	pushed   uint64
}

// BattleService hosts one encounter per pilot and pumps its ticks. Every
// access to an encounter holds that pilot's session lock, including the
// scheduler's ticks.
type BattleService struct {
	catalog   Catalog
	snapshots SnapshotStore
	progress  Granter
	events    CombatRecorder
	push      Pusher
	log       *zap.Logger
	opts      BattleOptions

	root   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*battleSession
}

func NewBattleService(
	catalog Catalog,
	snapshots SnapshotStore,
	progress Granter,
	events CombatRecorder,
	push Pusher,
	log *zap.Logger,
	opts BattleOptions,
) *BattleService {
	if opts.NewRoller == nil {
		opts.NewRoller = func(string) combat.Roller { return combat.NewPRNG(0) }
	}
	root, cancel := context.WithCancel(context.Background())
	return &BattleService{
		catalog:   catalog,
		snapshots: snapshots,
		progress:  progress,
		events:    events,
		push:      push,
		log:       log,
		opts:      opts,
		root:      root,
		cancel:    cancel,
		sessions:  make(map[string]*battleSession),
	}
}

func (s *BattleService) session(playerID, username string) *battleSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[playerID]; ok {
		if username != "" {
			sess.username = username
		}
		return sess
	}

	sess := &battleSession{playerID: playerID, username: username}
	sess.enc = combat.NewEncounter(combat.Options{
		Fleet:  s.catalog.PlayerFleet(),
		Roller: s.opts.NewRoller(playerID),
		Rewarder: combat.RewarderFunc(func(r combat.Reward) {
			s.progress.Grant(playerID, model.Grant{
				Experience: r.Experience,
				Credits:    int64(r.Credits),
				Loot:       r.Loot,
			})
		}),
	})
	events := sess.enc.Events()
	events.Subscribe(combat.EventShipDestroyed, combat.ListenerFunc(func(e combat.Event) {
		s.onDestroyed(sess, e.Data.(combat.ShipDestroyed))
	}))
	events.Subscribe(combat.EventCompleted, combat.ListenerFunc(func(e combat.Event) {
		s.onCompleted(sess, e.Data.(combat.Completed))
	}))
	sess.sched = combat.NewScheduler(&sess.mu, s.opts.TickInterval, func(dt time.Duration) bool {
		return s.advance(sess, dt)
	})

	s.sessions[playerID] = sess
	return sess
}

func (s *BattleService) existing(playerID string) *battleSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[playerID]
}

// onDestroyed and onCompleted run on the goroutine that holds sess.mu.
func (s *BattleService) onDestroyed(sess *battleSession, d combat.ShipDestroyed) {
	if !d.ByPlayer {
		s.log.Debug("player ship lost", zap.String("player", sess.username), zap.String("ship", d.Ship.Name))
		return
	}
	s.progress.Grant(sess.playerID, model.Grant{Kills: 1})
	s.events.RecordKill(sess.username, sess.enc.Progress().Name, d)
}

func (s *BattleService) onCompleted(sess *battleSession, c combat.Completed) {
	s.log.Info("encounter completed",
		zap.String("player", sess.username),
		zap.String("encounter", c.Name),
		zap.String("result", string(c.Result)),
		zap.Int("elapsed_s", c.Elapsed),
		zap.Stringer("reward", c.Reward))

	s.events.RecordCompletion(sess.username, c)

	payload, _ := json.Marshal(model.CompletedPayload{
		EncounterID: c.EncounterID,
		Name:        c.Name,
		Kind:        c.Kind,
		Result:      c.Result,
		Reward:      c.Reward,
		Elapsed:     c.Elapsed,
	})
	s.push.SendToPlayer(sess.playerID, &model.WSEvent{Type: model.WSBattleCompleted, Data: payload})

	if data, ok := s.snapshotBytes(sess); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.snapshots.Save(ctx, sess.playerID, data); err != nil {
				s.log.Error("save completed snapshot", zap.String("player_id", sess.playerID), zap.Error(err))
			}
		}()
	}
}

func (s *BattleService) snapshotBytes(sess *battleSession) ([]byte, bool) {
	snap, ok := sess.enc.Snapshot()
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("marshal snapshot", zap.String("player_id", sess.playerID), zap.Error(err))
		return nil, false
	}
	return data, true
}

// advance is one scheduler step. The caller holds sess.mu.
func (s *BattleService) advance(sess *battleSession, dt time.Duration) bool {
	sess.enc.Advance(dt)
	s.pushState(sess)
	return sess.enc.InCombat()
}

// pushState sends the current state when the encounter changed since the
// last push.
func (s *BattleService) pushState(sess *battleSession) {
	rev := sess.enc.Revision()
	if rev == sess.pushed {
		return
	}
	sess.pushed = rev
	data, err := json.Marshal(stateOf(sess.enc))
	if err != nil {
		s.log.Error("marshal battle state", zap.Error(err))
		return
	}
	s.push.SendToPlayer(sess.playerID, &model.WSEvent{Type: model.WSBattleState, Data: data})
}

func stateOf(e *combat.Encounter) model.BattleState {
	st := model.BattleState{
		EncounterID:    e.ID(),
		Phase:          e.Phase(),
		Result:         e.Result(),
		InCombat:       e.InCombat(),
		Elapsed:        e.Elapsed(),
		AutoAttack:     e.AutoAttack(),
		SelectedTarget: e.SelectedTarget(),
		TransitionMs:   e.PendingTransition().Milliseconds(),
		Ships:          e.Ships(),
		Log:            e.Log(),
		Revision:       e.Revision(),
	}
	if e.Phase() != combat.PhaseIdle {
		p := e.Progress()
		st.Progress = &p
	}
	return st
}

func idleState() model.BattleState {
	return model.BattleState{Phase: combat.PhaseIdle, Ships: []combat.Ship{}, Log: []combat.LogEntry{}}
}

func (s *BattleService) State(playerID string) model.BattleState {
	sess := s.existing(playerID)
	if sess == nil {
		return idleState()
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return stateOf(sess.enc)
}

func (s *BattleService) StartMission(playerID, username, missionID string) (model.BattleState, error) {
	m, err := s.catalog.Mission(missionID)
	if err != nil {
		return idleState(), fmt.Errorf("%w: %v", ErrUnknownEncounter, err)
	}
	return s.start(playerID, username, func(e *combat.Encounter) bool { return e.StartMission(m) })
}

func (s *BattleService) StartRaid(playerID, username, raidID string) (model.BattleState, error) {
	r, err := s.catalog.Raid(raidID)
	if err != nil {
		return idleState(), fmt.Errorf("%w: %v", ErrUnknownEncounter, err)
	}
	return s.start(playerID, username, func(e *combat.Encounter) bool { return e.StartRaid(r) })
}

func (s *BattleService) start(playerID, username string, begin func(*combat.Encounter) bool) (model.BattleState, error) {
	sess := s.session(playerID, username)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.enc.InCombat() {
		return stateOf(sess.enc), ErrAlreadyInCombat
	}
	sess.enc.Reset()
	if !begin(sess.enc) {
		return stateOf(sess.enc), ErrUnknownEncounter
	}

	p := sess.enc.Progress()
	s.log.Info("encounter started",
		zap.String("player", sess.username),
		zap.String("kind", string(p.Kind)),
		zap.String("encounter", p.Name))

	s.restartTicks(sess)
	s.pushState(sess)
	return stateOf(sess.enc), nil
}

// restartTicks replaces any scheduler loop still winding down from a
// previous encounter.
func (s *BattleService) restartTicks(sess *battleSession) {
	sess.sched.Stop()
	sess.sched.Start(s.root)
}

func (s *BattleService) SelectTarget(playerID, shipID string) (model.BattleState, error) {
	return s.act(playerID, func(sess *battleSession) error {
		if !sess.enc.SelectTarget(shipID) {
			return ErrInvalidTarget
		}
		return nil
	})
}

func (s *BattleService) SetAutoAttack(playerID string, enabled bool) (model.BattleState, error) {
	return s.act(playerID, func(sess *battleSession) error {
		if !sess.enc.SetAutoAttack(enabled) && enabled {
			return ErrInvalidTarget
		}
		return nil
	})
}

func (s *BattleService) Fire(playerID, shipID string, weaponIndex int) (model.AttackResponse, error) {
	var res combat.AttackResult
	st, err := s.act(playerID, func(sess *battleSession) error {
		res = sess.enc.Fire(shipID, weaponIndex)
		return nil
	})
	if err != nil {
		return model.AttackResponse{State: st}, err
	}
	return model.AttackResponse{
		Outcome:      res.Outcome.String(),
		Weapon:       res.Weapon,
		Damage:       res.Damage,
		ShieldDamage: res.ShieldDamage,
		HullDamage:   res.HullDamage,
		ModuleID:     res.ModuleID,
		ModuleDamage: res.ModuleDamage,
		State:        st,
	}, nil
}

// act runs fn on an encounter that is in combat and pushes the result.
func (s *BattleService) act(playerID string, fn func(*battleSession) error) (model.BattleState, error) {
	sess := s.existing(playerID)
	if sess == nil {
		return idleState(), ErrNotInCombat
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.enc.InCombat() {
		return stateOf(sess.enc), ErrNotInCombat
	}
	err := fn(sess)
	s.pushState(sess)
	return stateOf(sess.enc), err
}

// Stop aborts the pilot's encounter. A running encounter is saved first so it
// can be resumed.
func (s *BattleService) Stop(ctx context.Context, playerID string) (model.BattleState, error) {
	sess := s.existing(playerID)
	if sess == nil {
		return idleState(), ErrNotInCombat
	}
	sess.mu.Lock()
	if sess.enc.Phase() == combat.PhaseIdle {
		state := stateOf(sess.enc)
		sess.mu.Unlock()
		return state, ErrNotInCombat
	}
	var data []byte
	if sess.enc.InCombat() {
		data, _ = s.snapshotBytes(sess)
	}
	sess.enc.Stop()
	sess.sched.Stop()
	s.pushState(sess)
	state := stateOf(sess.enc)
	sess.mu.Unlock()

	// Saved after unlocking; the scheduler shares sess.mu.
	if data != nil {
		if err := s.snapshots.Save(ctx, playerID, data); err != nil {
			s.log.Error("save snapshot on stop", zap.String("player_id", playerID), zap.Error(err))
		}
	}
	return state, nil
}

// Resume restores the pilot's saved encounter and starts ticking it again.
func (s *BattleService) Resume(ctx context.Context, playerID, username string) (model.BattleState, error) {
	data, err := s.snapshots.Get(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.State(playerID), ErrNoSnapshot
	}
	if err != nil {
		return s.State(playerID), fmt.Errorf("load snapshot: %w", err)
	}

	var snap combat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s.State(playerID), fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	if snap.Phase == combat.PhaseCompleted {
		return s.State(playerID), ErrNoSnapshot
	}

	sess := s.session(playerID, username)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.enc.InCombat() {
		return stateOf(sess.enc), ErrAlreadyInCombat
	}
	sess.enc.Reset()
	if err := sess.enc.Restore(snap); err != nil {
		return stateOf(sess.enc), fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	if err := s.snapshots.Delete(ctx, playerID); err != nil {
		s.log.Warn("delete resumed snapshot", zap.String("player_id", playerID), zap.Error(err))
	}

	s.log.Info("encounter resumed", zap.String("player", sess.username), zap.String("encounter", snap.Raid.Name))
	s.restartTicks(sess)
	s.pushState(sess)
	return stateOf(sess.enc), nil
}

// ActiveCount is the number of encounters currently in combat.
func (s *BattleService) ActiveCount() int {
	s.mu.Lock()
	sessions := make([]*battleSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	n := 0
	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.enc.InCombat() {
			n++
		}
		sess.mu.Unlock()
	}
	return n
}

// Shutdown stops every tick loop and saves encounters still in combat.
func (s *BattleService) Shutdown(ctx context.Context) {
	s.cancel()

	s.mu.Lock()
	sessions := make([]*battleSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	saved := 0
	for _, sess := range sessions {
		sess.mu.Lock()
		sess.sched.Stop()
		if sess.enc.InCombat() {
			if data, ok := s.snapshotBytes(sess); ok {
				if err := s.snapshots.Save(ctx, sess.playerID, data); err != nil {
					s.log.Error("save snapshot on shutdown", zap.String("player_id", sess.playerID), zap.Error(err))
				} else {
					saved++
				}
			}
		}
		sess.mu.Unlock()
		sess.sched.Wait()
	}
	s.log.Info("battle service stopped", zap.Int("snapshots_saved", saved))
}
