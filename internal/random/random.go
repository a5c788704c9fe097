// internal/random/random.go
//
// Uniform sampling for the game engine.
// Every random decision in a session (which clue, which distractors, option
// order, which fact) goes through a Source from this package so that tests can
// pin the outcome with a fixed seed.
//
//   - New(seed):      deterministic PCG source.
//   - NewUnseeded():  ChaCha8 source seeded from crypto/rand.
//   - Shuffle/Pick/Sample: generic helpers over a Source.
//
// Sources returned here are safe for concurrent use; one Source is shared by all
// sessions of a server.

package random

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// Source yields uniform integers in [0, n). n must be > 0.
type Source interface {
	IntN(n int) int
}

// locked serialises access to a *rand.Rand, which is not goroutine-safe.
type locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// New returns a deterministic Source. The same seed always yields the same sequence.
func New(seed uint64) Source {
	return &locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewUnseeded returns a Source seeded from the operating system's CSPRNG.
func NewUnseeded() Source {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return &locked{r: rand.New(rand.NewChaCha8(seed))}
}

// Shuffle permutes s in place (Fisher–Yates).
func Shuffle[T any](src Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Pick returns one element of s chosen uniformly, or false if s is empty.
func Pick[T any](src Source, s []T) (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[src.IntN(len(s))], true
}

// Sample returns k elements from distinct positions of s in random order.
// k is clamped to [0, len(s)]; s is not modified.
func Sample[T any](src Source, s []T, k int) []T {
	if k > len(s) {
		k = len(s)
	}
	if k <= 0 {
		return []T{}
	}
	cp := append([]T(nil), s...)
	// Partial Fisher–Yates: the first k slots end up a uniform k-subset.
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:k]
}
