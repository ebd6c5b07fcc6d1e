package progress

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	downloaded atomic.Int64
}

func (f *fakeSource) Downloaded() int64 {
	return f.downloaded.Load()
}

func TestComputeSample(t *testing.T) {
	s := Compute(5000, 10000, 0, 10*time.Second)
	assert.Equal(t, int64(5000), s.Downloaded)
	assert.InDelta(t, 50.0, s.Percent, 0.001)
	assert.InDelta(t, 500.0, s.ThroughputBps, 0.001)
	require.True(t, s.ETAKnown)
	assert.InDelta(t, 10.0, s.ETA.Seconds(), 0.1)
}

func TestComputeExcludesBaselineFromThroughput(t *testing.T) {
	// 4000 bytes were already on disk; only 1000 were fetched this run
	s := Compute(5000, 10000, 4000, 10*time.Second)
	assert.InDelta(t, 100.0, s.ThroughputBps, 0.001)
	require.True(t, s.ETAKnown)
	assert.InDelta(t, 50.0, s.ETA.Seconds(), 0.1)
}

func TestComputeUnknownETAWithoutThroughput(t *testing.T) {
	s := Compute(4000, 10000, 4000, 10*time.Second)
	assert.Equal(t, float64(0), s.ThroughputBps)
	assert.False(t, s.ETAKnown)

	s = Compute(0, 10000, 0, 0)
	assert.False(t, s.ETAKnown)
}

func TestTrackerStopsOnCompletion(t *testing.T) {
	source := &fakeSource{}
	var buf bytes.Buffer
	tracker := NewTracker(Options{
		Source:      source,
		TotalLength: 1000,
		Label:       "object.bin",
		Interval:    5 * time.Millisecond,
		Out:         &buf,
	})
	tracker.Start()
	source.downloaded.Store(1000)

	select {
	case <-tracker.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not observe completion")
	}
	// Stop after self-termination must not hang
	tracker.Stop()
	assert.Contains(t, buf.String(), "object.bin")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestTrackerStopRendersFinalLine(t *testing.T) {
	source := &fakeSource{}
	source.downloaded.Store(250)
	var buf bytes.Buffer
	tracker := NewTracker(Options{
		Source:      source,
		TotalLength: 1000,
		Label:       "object.bin",
		Interval:    time.Hour, // never ticks, Stop forces the render
		Out:         &buf,
	})
	tracker.Start()
	tracker.Stop()
	assert.Contains(t, buf.String(), "25.0%")
	assert.Contains(t, buf.String(), "\n")
}

func TestTrackerTruncatesLongLabels(t *testing.T) {
	source := &fakeSource{}
	var buf bytes.Buffer
	tracker := NewTracker(Options{
		Source:      source,
		TotalLength: 1000,
		Label:       "a-very-long-output-path-that-should-be-truncated.bin",
		Interval:    time.Hour,
		Out:         &buf,
	})
	tracker.Start()
	tracker.Stop()
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), "a-very-long-output-path")
}
