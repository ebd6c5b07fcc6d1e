package transfer

import "sync/atomic"

// State is the shared view of a running transfer. The worker pool bumps
// per-chunk live counters (one writer per chunk index), the progress
// tracker reads them without locking. Counter reads are eventually
// consistent snapshots for display only, never for correctness.
type State struct {
	TotalLength         int64
	ChunkSize           int64
	BytesAlreadyPresent int64
	Chunks              []Chunk

	counters []atomic.Int64
}

// NewState plans the chunk list and prepares live counters.
func NewState(totalLength, existingLength, chunkSize int64) *State {
	chunks := Plan(totalLength, existingLength, chunkSize)
	return &State{
		TotalLength:         totalLength,
		ChunkSize:           chunkSize,
		BytesAlreadyPresent: min(existingLength, totalLength),
		Chunks:              chunks,
		counters:            make([]atomic.Int64, len(chunks)),
	}
}

// AddProgress records n freshly written bytes for a chunk. Only the
// worker that owns the chunk index may call this.
func (s *State) AddProgress(index int, n int64) {
	s.counters[index].Add(n)
}

// ChunkProgress returns the bytes written so far for a chunk this run.
func (s *State) ChunkProgress(index int) int64 {
	return s.counters[index].Load()
}

// Downloaded returns the total bytes accounted for: the pre-existing
// local prefix plus all live counters. Done-at-plan-time chunks sit
// inside the prefix, so they are never double counted. Monotone for a
// single run and never exceeds TotalLength.
func (s *State) Downloaded() int64 {
	total := s.BytesAlreadyPresent
	for i := range s.counters {
		total += s.counters[i].Load()
	}
	if total > s.TotalLength {
		total = s.TotalLength
	}
	return total
}

// Pending returns how many chunks still need downloading.
func (s *State) Pending() int {
	pending := 0
	for i := range s.Chunks {
		if !s.Chunks[i].Done {
			pending++
		}
	}
	return pending
}

// Complete reports whether every chunk is fully written.
func (s *State) Complete() bool {
	for i := range s.Chunks {
		if !s.Chunks[i].Done && s.counters[i].Load() < s.Chunks[i].Length {
			return false
		}
	}
	return true
}
