package combat

import (
	"errors"
	"time"
)

var (
	ErrSnapshotInvalid = errors.New("combat: invalid snapshot")
	ErrAlreadyInCombat = errors.New("combat: encounter already in combat")
)

// Snapshot is the serialisable state of an encounter, enough to continue it
// after a restart.
type Snapshot struct {
	ID             string        `json:"id"`
	Kind           Kind          `json:"kind"`
	Raid           Raid          `json:"raid"`
	Phase          Phase         `json:"phase"`
	Result         Result        `json:"result"`
	Wave           int           `json:"wave"`
	Ships          []Ship        `json:"ships"`
	Selected       string        `json:"selected"`
	AutoAttack     bool          `json:"auto_attack"`
	AutoTarget     string        `json:"auto_target"`
	Accrued        Reward        `json:"accrued"`
	TransitionLeft time.Duration `json:"transition_left"`
	HostileAcc     time.Duration `json:"hostile_acc"`
	ClockAcc       time.Duration `json:"clock_acc"`
	Elapsed        int           `json:"elapsed"`
	Log            []LogEntry    `json:"log"`
	SavedAt        time.Time     `json:"saved_at"`
}

// Snapshot captures the running encounter. ok is false when idle.
func (e *Encounter) Snapshot() (s Snapshot, ok bool) {
	if e.phase == PhaseIdle || e.raid == nil {
		return Snapshot{}, false
	}
	raid := *e.raid
	raid.Waves = append([]Wave(nil), e.raid.Waves...)
	return Snapshot{
		ID:             e.id,
		Kind:           e.kind,
		Raid:           raid,
		Phase:          e.phase,
		Result:         e.result,
		Wave:           e.wave,
		Ships:          e.Ships(),
		Selected:       e.selected,
		AutoAttack:     e.autoAttack,
		AutoTarget:     e.autoTarget,
		Accrued:        e.accrued,
		TransitionLeft: e.transitionLeft,
		HostileAcc:     e.hostileAcc,
		ClockAcc:       e.clockAcc,
		Elapsed:        e.elapsed,
		Log:            e.log.Entries(),
		SavedAt:        e.clock(),
	}, true
}

// Restore replaces the encounter state with s. It refuses while another
// encounter is in combat.
func (e *Encounter) Restore(s Snapshot) error {
	if e.InCombat() {
		return ErrAlreadyInCombat
	}
	switch s.Phase {
	case PhaseActive, PhaseWaveTransition, PhaseCompleted:
	default:
		return ErrSnapshotInvalid
	}
	if len(s.Raid.Waves) == 0 || s.Wave < 0 || s.Wave >= len(s.Raid.Waves) {
		return ErrSnapshotInvalid
	}

	raid := s.Raid
	e.raid = &raid
	e.id = s.ID
	e.kind = s.Kind
	e.phase = s.Phase
	e.result = s.Result
	e.wave = s.Wave
	e.ships = make([]Ship, 0, len(s.Ships))
	for _, sh := range s.Ships {
		c := sh.Clone()
		c.RefreshModifiers()
		c.clamp()
		e.ships = append(e.ships, c)
	}
	e.selected = s.Selected
	e.autoAttack = s.AutoAttack
	e.autoTarget = s.AutoTarget
	e.accrued = s.Accrued
	e.transitionLeft = s.TransitionLeft
	e.hostileAcc = s.HostileAcc
	e.clockAcc = s.ClockAcc
	e.elapsed = s.Elapsed
	e.log.restore(s.Log)
	e.touch()
	return nil
}
