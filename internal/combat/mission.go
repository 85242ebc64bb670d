package combat

import "fmt"

// Reward is what a cleared wave pays out.
type Reward struct {
	Credits    int      `json:"credits" yaml:"credits"`
	Experience int      `json:"experience" yaml:"experience"`
	Loot       []string `json:"loot,omitempty" yaml:"loot"`
}

// Add sums the numeric parts and concatenates loot.
func (r Reward) Add(o Reward) Reward {
	out := Reward{
		Credits:    r.Credits + o.Credits,
		Experience: r.Experience + o.Experience,
	}
	if len(r.Loot)+len(o.Loot) > 0 {
		out.Loot = make([]string, 0, len(r.Loot)+len(o.Loot))
		out.Loot = append(out.Loot, r.Loot...)
		out.Loot = append(out.Loot, o.Loot...)
	}
	return out
}

func (r Reward) IsZero() bool {
	return r.Credits == 0 && r.Experience == 0 && len(r.Loot) == 0
}

func (r Reward) String() string {
	s := fmt.Sprintf("+%d credits, +%d XP", r.Credits, r.Experience)
	if len(r.Loot) > 0 {
		s += fmt.Sprintf(", %d item(s)", len(r.Loot))
	}
	return s
}

type Wave struct {
	Name    string `json:"name" yaml:"name"`
	Boss    bool   `json:"boss" yaml:"boss"`
	Enemies []Ship `json:"enemies" yaml:"enemies"`
	Reward  Reward `json:"reward" yaml:"reward"`
}

// Raid is an ordered sequence of waves. A single mission is a raid with one
// wave, see Mission.AsRaid.
type Raid struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Difficulty   string `json:"difficulty" yaml:"difficulty"`
	Waves        []Wave `json:"waves" yaml:"waves"`
	TotalRewards Reward `json:"total_rewards" yaml:"total_rewards"`
}

// SumRewards adds every wave reward in order.
func (r *Raid) SumRewards() Reward {
	var total Reward
	for _, w := range r.Waves {
		total = total.Add(w.Reward)
	}
	return total
}

type Mission struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
	Enemies    []Ship `json:"enemies" yaml:"enemies"`
	Reward     Reward `json:"reward" yaml:"reward"`
}

func (m *Mission) AsRaid() Raid {
	return Raid{
		ID:           m.ID,
		Name:         m.Name,
		Difficulty:   m.Difficulty,
		Waves:        []Wave{{Name: m.Name, Enemies: m.Enemies, Reward: m.Reward}},
		TotalRewards: m.Reward,
	}
}

// Kind distinguishes how an encounter was started.
type Kind string

const (
	KindMission Kind = "mission"
	KindRaid    Kind = "raid"
)
