// Package store holds the shared state between the ingestion source and
// the render driver: the latest measurement per channel, the full timing
// history and the set of observed channels.
package store

import (
	"sort"
	"sync"

	"csi-monitor/internal/wire"
)

// Store serializes all mutation behind a single mutex. One ingestion
// goroutine writes through Ingest; the render driver reads through
// Snapshot and Channels. The lock is held only for the duration of the
// copy, never across derived computation.
type Store struct {
	mu       sync.Mutex
	latest   map[int][]complex64 // most recent measurement per channel id
	history  []float64           // timing offsets in µs, ingestion order, unbounded
	channels map[int]struct{}    // every channel id ever observed
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		latest:   make(map[int][]complex64),
		channels: make(map[int]struct{}),
	}
}

// Ingest records one decoded sample as a single atomic unit: the channel
// map, the timing history and the channel set are never observably out of
// step with each other. The measurement is copied so callers may reuse
// their buffers.
func (s *Store) Ingest(sample wire.Sample) {
	meas := make([]complex64, len(sample.Measurement))
	copy(meas, sample.Measurement)
	micros := sample.TimingOffsetMicros()

	s.mu.Lock()
	s.latest[sample.ChannelID] = meas
	s.history = append(s.history, micros)
	s.channels[sample.ChannelID] = struct{}{}
	s.mu.Unlock()
}

// Seed marks channel ids as observed before any sample for them arrives,
// so a replay driver can fix the plot layout without waiting for the
// first record. The latest map and the history are untouched.
func (s *Store) Seed(ids []int) {
	s.mu.Lock()
	for _, id := range ids {
		s.channels[id] = struct{}{}
	}
	s.mu.Unlock()
}

// Snapshot returns independent copies of the latest-per-channel map and
// the timing history, taken at a single consistent instant. The caller
// may use them without any further locking.
func (s *Store) Snapshot() (map[int][]complex64, []float64) {
	s.mu.Lock()
	latest := make(map[int][]complex64, len(s.latest))
	for id, meas := range s.latest {
		cp := make([]complex64, len(meas))
		copy(cp, meas)
		latest[id] = cp
	}
	history := make([]float64, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	return latest, history
}

// Channels returns a sorted copy of the set of channel ids observed so
// far. The set only ever grows.
func (s *Store) Channels() []int {
	s.mu.Lock()
	ids := make([]int, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Ints(ids)
	return ids
}
