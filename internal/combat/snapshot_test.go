package combat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEncounter(alwaysHit(), nil)
	require.True(t, e.StartRaid(twoWaveRaid()))
	require.True(t, e.SelectTarget("s1"))
	require.Equal(t, OutcomeKill, e.Fire("", 0).Outcome)
	e.Advance(1200 * time.Millisecond)

	snap, ok := e.Snapshot()
	require.True(t, ok)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := newTestEncounter(alwaysHit(), nil)
	require.NoError(t, restored.Restore(decoded))

	assert.Equal(t, e.Phase(), restored.Phase())
	assert.Equal(t, e.Elapsed(), restored.Elapsed())
	assert.Equal(t, e.SelectedTarget(), restored.SelectedTarget())
	assert.Equal(t, e.Progress(), restored.Progress())
	assert.Equal(t, e.Ships(), restored.Ships())
	require.Len(t, restored.Log(), len(e.Log()))
	for i, entry := range e.Log() {
		assert.Equal(t, entry.ID, restored.Log()[i].ID)
		assert.Equal(t, entry.Message, restored.Log()[i].Message)
	}

	// The restored encounter plays on: kill s2 and the wave clears.
	require.True(t, restored.SelectTarget("s2"))
	require.Equal(t, OutcomeKill, restored.Fire("", 1).Outcome)
	assert.Equal(t, PhaseWaveTransition, restored.Phase())
}

func TestSnapshotIdle(t *testing.T) {
	e := newTestEncounter(alwaysHit(), nil)
	_, ok := e.Snapshot()
	assert.False(t, ok)
}

func TestRestoreRejects(t *testing.T) {
	busy := newTestEncounter(alwaysHit(), nil)
	require.True(t, busy.StartRaid(twoWaveRaid()))
	snap, ok := busy.Snapshot()
	require.True(t, ok)

	assert.ErrorIs(t, busy.Restore(snap), ErrAlreadyInCombat)

	fresh := newTestEncounter(alwaysHit(), nil)
	bad := snap
	bad.Wave = 9
	assert.ErrorIs(t, fresh.Restore(bad), ErrSnapshotInvalid)

	bad = snap
	bad.Phase = PhaseIdle
	assert.ErrorIs(t, fresh.Restore(bad), ErrSnapshotInvalid)
	assert.Equal(t, PhaseIdle, fresh.Phase())
}
