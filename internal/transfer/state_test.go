package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDownloadedTracksCounters(t *testing.T) {
	state := NewState(100, 0, 10)
	require.Len(t, state.Chunks, 10)
	assert.Equal(t, int64(0), state.Downloaded())
	assert.False(t, state.Complete())

	state.AddProgress(0, 10)
	state.AddProgress(3, 4)
	assert.Equal(t, int64(14), state.Downloaded())
	assert.Equal(t, int64(4), state.ChunkProgress(3))
	assert.False(t, state.Complete())

	for i := range state.Chunks {
		remaining := state.Chunks[i].Length - state.ChunkProgress(i)
		if remaining > 0 {
			state.AddProgress(i, remaining)
		}
	}
	assert.Equal(t, int64(100), state.Downloaded())
	assert.True(t, state.Complete())
}

func TestStateResumeBaseline(t *testing.T) {
	state := NewState(100, 55, 10)
	assert.Equal(t, int64(55), state.BytesAlreadyPresent)
	assert.Equal(t, int64(55), state.Downloaded())
	assert.Equal(t, 5, state.Pending())
	assert.False(t, state.Complete())
}

func TestStateDownloadedNeverExceedsTotal(t *testing.T) {
	// Existing bytes cover half of chunk 5; the worker re-downloads the
	// whole chunk, so the raw sum would exceed the total without a clamp.
	state := NewState(100, 55, 10)
	state.AddProgress(5, 10)
	for i := 6; i < 10; i++ {
		state.AddProgress(i, 10)
	}
	assert.Equal(t, int64(100), state.Downloaded())
	assert.True(t, state.Complete())
}
