package combat

// EventType names something notable that happened during an encounter.
type EventType string

const (
	EventShipDestroyed EventType = "ship_destroyed"
	EventWaveCleared   EventType = "wave_cleared"
	EventWaveStarted   EventType = "wave_started"
	EventCompleted     EventType = "encounter_completed"
)

type Event struct {
	Type EventType
	Data interface{}
}

type ShipDestroyed struct {
	Ship     Ship
	ByPlayer bool
	Weapon   string
	Boss     bool
}

type WaveCleared struct {
	Wave   int
	Reward Reward
}

type WaveStarted struct {
	Wave int
	Name string
	Boss bool
}

type Completed struct {
	EncounterID string
	Name        string
	Kind        Kind
	Result      Result
	Reward      Reward
	Elapsed     int
}

// Listener receives encounter events synchronously on the tick goroutine, so
// it must not block.
type Listener interface {
	OnEvent(e Event)
}

type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Dispatcher fans events out to subscribers in subscription order.
type Dispatcher struct {
	listeners map[EventType][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]Listener)}
}

func (d *Dispatcher) Subscribe(t EventType, l Listener) {
	d.listeners[t] = append(d.listeners[t], l)
}

func (d *Dispatcher) Dispatch(e Event) {
	for _, l := range d.listeners[e.Type] {
		l.OnEvent(e)
	}
}

// Rewarder is the player-progression collaborator. It gets kill XP the moment
// a hostile dies and the accrued encounter reward when the encounter ends.
type Rewarder interface {
	Grant(r Reward)
}

type RewarderFunc func(r Reward)

func (f RewarderFunc) Grant(r Reward) { f(r) }

type noopRewarder struct{}

func (noopRewarder) Grant(Reward) {}
