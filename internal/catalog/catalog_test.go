package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacegame-combat/internal/combat"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Fleet, 1)
	endeavor := c.Fleet[0]
	assert.Equal(t, "USS Endeavor", endeavor.Name)
	assert.Equal(t, 8500, endeavor.Hull)
	assert.Equal(t, 3*time.Second, endeavor.Weapons[0].Cooldown)
	assert.True(t, endeavor.HasModules())
	assert.Equal(t, combat.NeutralModifiers(), endeavor.Modifiers)

	skirmish, err := c.Mission("skirmish")
	require.NoError(t, err)
	assert.Equal(t, "Pirate Skirmish", skirmish.Name)
	require.Len(t, skirmish.Enemies, 2)
	assert.Equal(t, 4200, skirmish.Enemies[0].Hull)
	assert.Equal(t, 6500, skirmish.Enemies[0].MaxHull)
	assert.Equal(t, 2500*time.Millisecond, skirmish.Enemies[0].Weapons[0].Cooldown)
	assert.False(t, skirmish.Enemies[0].HasModules())

	_, err = c.Mission("convoy")
	require.NoError(t, err)

	raid, err := c.Raid("crimson-armada")
	require.NoError(t, err)
	require.Len(t, raid.Waves, 3)
	assert.True(t, raid.Waves[2].Boss)
	assert.Equal(t, raid.SumRewards(), raid.TotalRewards)
}

func TestLookupMissing(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Mission("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Raid("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlayerFleetIsACopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	fleet := c.PlayerFleet()
	fleet[0].Hull = 1
	fleet[0].Weapons[0].Damage = 1
	assert.Equal(t, 8500, c.Fleet[0].Hull)
	assert.Equal(t, 420, c.Fleet[0].Weapons[0].Damage)
}

const fleetYAML = `
fleet:
  - id: p
    name: P
    hull: 100
    max_hull: 100
    weapons:
      - {name: Gun, damage: 10, cooldown: 1s}
`

func TestTotalRewardsFilledWhenAbsent(t *testing.T) {
	c, err := Parse([]byte(fleetYAML + `
raids:
  - id: r
    name: R
    waves:
      - name: One
        reward: {credits: 10, experience: 5, loot: [A]}
        enemies:
          - {id: e1, name: E, hull: 10, max_hull: 10}
      - name: Two
        boss: true
        reward: {credits: 20, loot: [B]}
        enemies:
          - {id: e2, name: E, hull: 10, max_hull: 10}
`))
	require.NoError(t, err)
	r, err := c.Raid("r")
	require.NoError(t, err)
	assert.Equal(t, combat.Reward{Credits: 30, Experience: 5, Loot: []string{"A", "B"}}, r.TotalRewards)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no fleet", `missions: []`},
		{"unknown field", fleetYAML + "bogus: 1\n"},
		{"duplicate mission", fleetYAML + `
missions:
  - {id: m, name: M, enemies: [{id: e, name: E, hull: 1, max_hull: 1}]}
  - {id: m, name: M, enemies: [{id: e, name: E, hull: 1, max_hull: 1}]}
`},
		{"mission without enemies", fleetYAML + `
missions:
  - {id: m, name: M}
`},
		{"empty wave", fleetYAML + `
raids:
  - id: r
    name: R
    waves:
      - {name: Empty}
`},
		{"raid without waves", fleetYAML + `
raids:
  - {id: r, name: R}
`},
		{"zero max hull", fleetYAML + `
missions:
  - {id: m, name: M, enemies: [{id: e, name: E, hull: 0, max_hull: 0}]}
`},
		{"hull above max", fleetYAML + `
missions:
  - {id: m, name: M, enemies: [{id: e, name: E, hull: 20, max_hull: 10}]}
`},
		{"total mismatch", fleetYAML + `
raids:
  - id: r
    name: R
    waves:
      - name: One
        reward: {credits: 10}
        enemies: [{id: e, name: E, hull: 1, max_hull: 1}]
    total_rewards: {credits: 99}
`},
		{"bad module", fleetYAML + `
missions:
  - id: m
    name: M
    enemies:
      - id: e
        name: E
        hull: 1
        max_hull: 1
        modules: [{id: x, type: armor, health: 5, max_health: 0}]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fleetYAML), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "P", c.Fleet[0].Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err = Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Raids)
}
