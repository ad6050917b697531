// Package rng provides the campaign's single seeded pseudo-random stream.
// Every random decision in the decision engine — movement tie-breaks,
// coalition service order, support/AA shuffle order — draws from one
// instance so that a campaign's turns are reproducible from its recorded
// seed, per the snapshot's seeded-RNG invariant.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Stream wraps a *rand.Rand behind a mutex. The campaign's own lock already
// serializes turn processing, but the stream is exposed independently so
// ancillary code (tests, the observer broadcaster) can draw from it too
// without reaching through Campaign.
type Stream struct {
	mu   sync.Mutex
	seed int64
	r    *rand.Rand
}

// New seeds a stream explicitly, used when resuming a campaign from a
// snapshot that recorded its original seed.
func New(seed int64) *Stream {
	return &Stream{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// NewFromClock seeds a stream from the current time, used only when
// starting a brand new campaign that has no prior seed to resume.
func NewFromClock() *Stream {
	return New(time.Now().UnixNano())
}

// Seed returns the seed this stream was constructed with, for inclusion in
// the campaign snapshot.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Rand returns the *rand.Rand for direct use by a caller that already
// holds the campaign lock. Callers outside that lock must not call this;
// use the Intn/Shuffle helpers below instead, which take the lock
// themselves.
func (s *Stream) Rand() *rand.Rand {
	return s.r
}

// Intn is a locked convenience wrapper over rand.Rand.Intn.
func (s *Stream) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Shuffle is a locked convenience wrapper over rand.Rand.Shuffle.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}
