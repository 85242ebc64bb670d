package combat

import (
	"fmt"
	"time"
)

const (
	// HostileTurnInterval is the cadence of autonomous hostile attacks.
	HostileTurnInterval = time.Second
	// WaveTransitionDelay is the pause between a cleared wave and the next one.
	WaveTransitionDelay = 2 * time.Second

	combatClockInterval = time.Second
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseActive         Phase = "active"
	PhaseWaveTransition Phase = "wave_transition"
	PhaseCompleted      Phase = "completed"
)

type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
)

type Options struct {
	// Fleet is the player fleet template, cloned at every encounter start.
	Fleet    []Ship
	Roller   Roller
	Rewarder Rewarder
	Clock    func() time.Time
}

// Encounter owns the roster, battle log and mission progress of one pilot.
// It is a single-threaded state machine: callers serialise access, and time
// only moves when the host calls Advance.
type Encounter struct {
	fleet    []Ship
	roll     Roller
	rewarder Rewarder
	clock    func() time.Time
	events   *Dispatcher
	log      *BattleLog

	id     string
	kind   Kind
	raid   *Raid
	phase  Phase
	result Result
	wave   int
	ships  []Ship

	selected   string
	autoAttack bool
	autoTarget string
	accrued    Reward

	transitionLeft time.Duration
	hostileAcc     time.Duration
	clockAcc       time.Duration
	elapsed        int

	revision uint64
}

func NewEncounter(opts Options) *Encounter {
	if opts.Roller == nil {
		opts.Roller = NewPRNG(0)
	}
	if opts.Rewarder == nil {
		opts.Rewarder = noopRewarder{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Encounter{
		fleet:    opts.Fleet,
		roll:     opts.Roller,
		rewarder: opts.Rewarder,
		clock:    opts.Clock,
		events:   NewDispatcher(),
		log:      NewBattleLog(opts.Clock),
		phase:    PhaseIdle,
	}
}

func (e *Encounter) Events() *Dispatcher { return e.events }

// StartMission seeds the fleet and the mission's enemies. It returns false
// without touching anything when an encounter is already running.
func (e *Encounter) StartMission(m Mission) bool {
	return e.start(m.AsRaid(), KindMission)
}

// StartRaid seeds the fleet and the first wave of the raid.
func (e *Encounter) StartRaid(r Raid) bool {
	return e.start(r, KindRaid)
}

func (e *Encounter) start(r Raid, kind Kind) bool {
	if e.InCombat() || len(r.Waves) == 0 {
		return false
	}

	raid := r
	e.raid = &raid
	e.kind = kind
	e.id = fmt.Sprintf("%s-%d", r.ID, e.clock().UnixNano())
	e.phase = PhaseActive
	e.result = ResultNone
	e.wave = 0
	e.selected = ""
	e.autoAttack = false
	e.autoTarget = ""
	e.accrued = Reward{}
	e.transitionLeft = 0
	e.hostileAcc = 0
	e.clockAcc = 0
	e.elapsed = 0

	e.ships = make([]Ship, 0, len(e.fleet)+len(r.Waves[0].Enemies))
	for _, tmpl := range e.fleet {
		s := tmpl.Clone()
		s.Player = true
		s.Targeted = false
		s.RefreshModifiers()
		s.clamp()
		e.ships = append(e.ships, s)
	}
	e.spawnWave(0)

	if kind == KindRaid {
		e.log.Reset(fmt.Sprintf("Raid %s initiated", r.Name))
		e.logWaveStart()
	} else {
		e.log.Reset(fmt.Sprintf("Mission %s initiated", r.Name))
	}
	e.touch()

	// An empty first wave is cleared immediately.
	e.checkWave()
	return true
}

// spawnWave replaces every hostile ship with the enemies of wave i. Player
// ships keep their slots and state.
func (e *Encounter) spawnWave(i int) {
	kept := e.ships[:0]
	for _, s := range e.ships {
		if s.Player {
			kept = append(kept, s)
		}
	}
	e.ships = kept
	for _, tmpl := range e.raid.Waves[i].Enemies {
		s := tmpl.Clone()
		s.Player = false
		s.Targeted = false
		s.Wave = i
		s.RefreshModifiers()
		s.clamp()
		e.ships = append(e.ships, s)
	}
}

func (e *Encounter) logWaveStart() {
	w := e.raid.Waves[e.wave]
	msg := fmt.Sprintf("Wave %d: %s", e.wave+1, w.Name)
	if w.Boss {
		msg += " [BOSS]"
	}
	e.log.Append(msg, LogInfo)
}

// SelectTarget marks one living hostile as the target.
func (e *Encounter) SelectTarget(id string) bool {
	if !e.InCombat() {
		return false
	}
	t := e.ship(id)
	if t == nil || t.Player || t.Destroyed() {
		return false
	}
	e.setTarget(id)
	e.touch()
	return true
}

func (e *Encounter) setTarget(id string) {
	e.selected = id
	for i := range e.ships {
		e.ships[i].Targeted = !e.ships[i].Player && e.ships[i].ID == id
	}
}

// Fire shoots weapon weaponIndex of attackerID (the lead ship when empty) at
// the selected target.
func (e *Encounter) Fire(attackerID string, weaponIndex int) AttackResult {
	if e.phase != PhaseActive || e.selected == "" {
		return AttackResult{Outcome: OutcomeRejected}
	}
	var attacker *Ship
	if attackerID == "" {
		attacker = e.leadPlayer()
	} else if s := e.ship(attackerID); s != nil && s.Player {
		attacker = s
	}
	target := e.ship(e.selected)
	if attacker == nil || target == nil {
		return AttackResult{Outcome: OutcomeRejected}
	}

	res := Resolve(attacker, target, weaponIndex, e.roll, e.log)
	e.afterAttack(attacker, target, res)
	return res
}

// SetAutoAttack turns auto-attack on against the selected target, or off.
// Enabling without a living selected target is a no-op.
func (e *Encounter) SetAutoAttack(enabled bool) bool {
	if !enabled {
		changed := e.autoAttack
		e.autoAttack = false
		e.autoTarget = ""
		if changed {
			e.touch()
		}
		return changed
	}
	if !e.InCombat() {
		return false
	}
	t := e.ship(e.selected)
	if t == nil || t.Destroyed() {
		return false
	}
	e.autoAttack = true
	e.autoTarget = t.ID
	e.touch()
	return true
}

// Advance moves encounter time forward by dt: weapon cooldowns, the combat
// clock, the pending wave transition, auto-attack and hostile turns.
func (e *Encounter) Advance(dt time.Duration) {
	if dt <= 0 || !e.InCombat() {
		return
	}

	if e.tickCooldowns(dt) {
		e.touch()
	}

	e.clockAcc += dt
	for e.clockAcc >= combatClockInterval {
		e.clockAcc -= combatClockInterval
		e.elapsed++
		e.touch()
	}

	if e.phase == PhaseWaveTransition {
		e.transitionLeft -= dt
		if e.transitionLeft <= 0 {
			e.transitionLeft = 0
			e.nextWave()
			// A freshly spawned wave waits a full turn before acting.
			return
		}
	}

	if e.phase != PhaseActive {
		return
	}

	e.autoAttackStep()

	e.hostileAcc += dt
	for e.hostileAcc >= HostileTurnInterval && e.phase == PhaseActive {
		e.hostileAcc -= HostileTurnInterval
		e.hostileTurn()
	}
}

func (e *Encounter) tickCooldowns(dt time.Duration) bool {
	changed := false
	for i := range e.ships {
		for j := range e.ships[i].Weapons {
			w := &e.ships[i].Weapons[j]
			if w.CurrentCooldown <= 0 {
				continue
			}
			w.CurrentCooldown -= dt
			if w.CurrentCooldown < 0 {
				w.CurrentCooldown = 0
			}
			changed = true
		}
	}
	return changed
}

func (e *Encounter) autoAttackStep() {
	if !e.autoAttack {
		return
	}
	target := e.ship(e.autoTarget)
	if target == nil || target.Destroyed() {
		next := e.firstLivingHostile()
		if next == nil {
			e.autoAttack = false
			e.autoTarget = ""
			e.touch()
			return
		}
		e.autoTarget = next.ID
		e.setTarget(next.ID)
		e.touch()
		target = next
	}

	// Only ready weapons already in range fire; an out-of-range attempt would
	// log every tick without consuming anything.
	for i := range e.ships {
		s := &e.ships[i]
		if !s.Player || s.Destroyed() || Distance(s.Position, target.Position) > MaxEngagementRange {
			continue
		}
		for j := range s.Weapons {
			if !s.Weapons[j].Ready() {
				continue
			}
			res := Resolve(s, target, j, e.roll, e.log)
			e.afterAttack(s, target, res)
			return
		}
	}
}

// hostileTurn lets every living hostile with a ready primary weapon in range
// shoot the lead player ship, in roster order.
func (e *Encounter) hostileTurn() {
	for i := range e.ships {
		if e.phase != PhaseActive {
			return
		}
		h := &e.ships[i]
		if h.Player || h.Destroyed() || len(h.Weapons) == 0 || !h.Weapons[0].Ready() {
			continue
		}
		lead := e.leadPlayer()
		if lead == nil {
			return
		}
		if Distance(h.Position, lead.Position) > MaxEngagementRange {
			continue
		}
		res := Resolve(h, lead, 0, e.roll, e.log)
		e.afterAttack(h, lead, res)
	}
}

func (e *Encounter) afterAttack(attacker, target *Ship, res AttackResult) {
	if res.Outcome == OutcomeRejected {
		return
	}
	e.touch()

	if res.Outcome == OutcomeKill {
		boss := !target.Player && e.raid != nil && e.raid.Waves[target.Wave].Boss
		e.events.Dispatch(Event{Type: EventShipDestroyed, Data: ShipDestroyed{
			Ship:     target.Clone(),
			ByPlayer: attacker.Player,
			Weapon:   res.Weapon,
			Boss:     boss,
		}})
		if attacker.Player && target.Experience > 0 {
			e.rewarder.Grant(Reward{Experience: target.Experience})
		}
	}

	if res.Mutated() {
		e.checkWave()
		e.checkDefeat()
	}
}

// checkWave clears the current wave once every hostile spawned by it is at
// hull 0. Ships from other waves never count.
func (e *Encounter) checkWave() {
	if e.phase != PhaseActive || e.raid == nil {
		return
	}
	for i := range e.ships {
		s := &e.ships[i]
		if !s.Player && s.Wave == e.wave && !s.Destroyed() {
			return
		}
	}

	reward := e.raid.Waves[e.wave].Reward
	e.accrued = e.accrued.Add(reward)
	e.log.Append(fmt.Sprintf("Wave %d cleared: %s", e.wave+1, reward), LogInfo)
	e.events.Dispatch(Event{Type: EventWaveCleared, Data: WaveCleared{Wave: e.wave, Reward: reward}})

	e.phase = PhaseWaveTransition
	e.transitionLeft = WaveTransitionDelay
	e.touch()
}

func (e *Encounter) checkDefeat() {
	if !e.InCombat() {
		return
	}
	players := 0
	for i := range e.ships {
		if !e.ships[i].Player {
			continue
		}
		players++
		if !e.ships[i].Destroyed() {
			return
		}
	}
	if players > 0 {
		e.finish(ResultDefeat)
	}
}

func (e *Encounter) nextWave() {
	if e.wave+1 >= len(e.raid.Waves) {
		e.finish(ResultVictory)
		return
	}
	e.wave++
	e.spawnWave(e.wave)
	e.selected = ""
	e.hostileAcc = 0
	e.phase = PhaseActive
	e.logWaveStart()
	w := e.raid.Waves[e.wave]
	e.events.Dispatch(Event{Type: EventWaveStarted, Data: WaveStarted{Wave: e.wave, Name: w.Name, Boss: w.Boss}})
	e.touch()
	e.checkWave()
}

func (e *Encounter) finish(result Result) {
	e.phase = PhaseCompleted
	e.result = result
	e.transitionLeft = 0
	e.autoAttack = false
	e.autoTarget = ""

	label := "Mission"
	if e.kind == KindRaid {
		label = "Raid"
	}
	switch result {
	case ResultVictory:
		e.log.Append(fmt.Sprintf("%s %s complete! Total rewards: %s", label, e.raid.Name, e.accrued), LogInfo)
	case ResultDefeat:
		e.log.Append("Fleet destroyed. Mission failed.", LogInfo)
	}

	if !e.accrued.IsZero() {
		e.rewarder.Grant(e.accrued)
	}
	e.events.Dispatch(Event{Type: EventCompleted, Data: Completed{
		EncounterID: e.id,
		Name:        e.raid.Name,
		Kind:        e.kind,
		Result:      result,
		Reward:      e.accrued,
		Elapsed:     e.elapsed,
	}})
	e.touch()
}

// Stop aborts the encounter from any phase, dropping the pending wave
// transition. No rewards are paid.
func (e *Encounter) Stop() bool {
	if e.phase == PhaseIdle {
		return false
	}
	e.clear()
	return true
}

// Reset returns a completed encounter to Idle.
func (e *Encounter) Reset() bool {
	if e.phase != PhaseCompleted {
		return false
	}
	e.clear()
	return true
}

func (e *Encounter) clear() {
	e.phase = PhaseIdle
	e.result = ResultNone
	e.raid = nil
	e.kind = ""
	e.id = ""
	e.ships = nil
	e.selected = ""
	e.autoAttack = false
	e.autoTarget = ""
	e.accrued = Reward{}
	e.transitionLeft = 0
	e.hostileAcc = 0
	e.clockAcc = 0
	e.elapsed = 0
	e.touch()
}

func (e *Encounter) touch() { e.revision++ }

func (e *Encounter) ship(id string) *Ship {
	if id == "" {
		return nil
	}
	for i := range e.ships {
		if e.ships[i].ID == id {
			return &e.ships[i]
		}
	}
	return nil
}

func (e *Encounter) leadPlayer() *Ship {
	for i := range e.ships {
		if e.ships[i].Player && !e.ships[i].Destroyed() {
			return &e.ships[i]
		}
	}
	return nil
}

func (e *Encounter) firstLivingHostile() *Ship {
	for i := range e.ships {
		if !e.ships[i].Player && !e.ships[i].Destroyed() {
			return &e.ships[i]
		}
	}
	return nil
}

// InCombat reports whether the combat timer is running.
func (e *Encounter) InCombat() bool {
	return e.phase == PhaseActive || e.phase == PhaseWaveTransition
}

func (e *Encounter) ID() string { return e.id }
func (e *Encounter) Phase() Phase { return e.phase }
func (e *Encounter) Result() Result { return e.result }
func (e *Encounter) Elapsed() int { return e.elapsed }
func (e *Encounter) AutoAttack() bool { return e.autoAttack }
func (e *Encounter) SelectedTarget() string { return e.selected }
func (e *Encounter) Accrued() Reward { return e.accrued }
func (e *Encounter) Revision() uint64 { return e.revision }
func (e *Encounter) Log() []LogEntry { return e.log.Entries() }
func (e *Encounter) PendingTransition() time.Duration { return e.transitionLeft }

// Ships returns a deep copy of the roster.
func (e *Encounter) Ships() []Ship {
	out := make([]Ship, len(e.ships))
	for i, s := range e.ships {
		out[i] = s.Clone()
	}
	return out
}

// Progress describes where the encounter stands in its mission or raid.
type Progress struct {
	ID         string `json:"id"`
	RaidID     string `json:"raid_id"`
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Wave       int    `json:"wave"`
	TotalWaves int    `json:"total_waves"`
	WaveName   string `json:"wave_name"`
	Boss       bool   `json:"boss"`
	Accrued    Reward `json:"accrued"`
	Total      Reward `json:"total"`
}

func (e *Encounter) Progress() Progress {
	if e.raid == nil {
		return Progress{}
	}
	w := e.raid.Waves[e.wave]
	return Progress{
		ID:         e.id,
		RaidID:     e.raid.ID,
		Name:       e.raid.Name,
		Kind:       e.kind,
		Wave:       e.wave + 1,
		TotalWaves: len(e.raid.Waves),
		WaveName:   w.Name,
		Boss:       w.Boss,
		Accrued:    e.accrued,
		Total:      e.raid.TotalRewards,
	}
}
