package combat

import "time"

// scriptedRoller replays fixed rolls. When a queue runs dry Float64 hits and
// Intn returns the middle of the range, which is zero jitter for damage.
type scriptedRoller struct {
	floats []float64
	ints   []int
}

func (r *scriptedRoller) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRoller) Intn(n int) int {
	if len(r.ints) == 0 {
		return n / 2
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

func alwaysHit() *scriptedRoller { return &scriptedRoller{} }

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func playerShip() Ship {
	return Ship{
		ID: "player-1", Name: "USS Endeavor", Class: "Heavy Cruiser",
		Hull: 8500, MaxHull: 8500, Shield: 2400, MaxShield: 2400,
		Player: true,
		Weapons: []Weapon{
			{Name: "Plasma Cannon", Damage: 420, Range: 400, Cooldown: 2 * time.Second},
			{Name: "Laser Battery", Damage: 180, Range: 350, Cooldown: time.Second},
		},
	}
}

func enemyShip(id string, hull, shield int) Ship {
	return Ship{
		ID: id, Name: "Raider " + id, Class: "Frigate",
		Hull: hull, MaxHull: hull, Shield: shield, MaxShield: shield,
		Experience: 100,
		Weapons:    []Weapon{{Name: "Pulse Laser", Damage: 150, Range: 300, Cooldown: 1500 * time.Millisecond}},
	}
}

// passiveEnemy has no weapons, so hostile turns never touch the fleet.
func passiveEnemy(id string, hull int) Ship {
	return Ship{ID: id, Name: "Hulk " + id, Class: "Drone", Hull: hull, MaxHull: hull, Experience: 50}
}

type grants struct{ got []Reward }

func (g *grants) Grant(r Reward) { g.got = append(g.got, r) }

func (g *grants) total() Reward {
	var t Reward
	for _, r := range g.got {
		t = t.Add(r)
	}
	return t
}
