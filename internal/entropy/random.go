// Package entropy provides the random sources behind stochastic behavior
// selection. The default source draws from crypto/rand; a seeded source
// makes selection sequences reproducible in tests and simulations.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

// Source yields uniform random floats in [0, 1).
type Source interface {
	Float64() float64
}

// Crypto is a Source backed by crypto/rand. The zero value is ready to use.
type Crypto struct{}

// Float64 returns a random float64 in [0, 1).
func (Crypto) Float64() float64 {
	return cryptoRandFloat()
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Seeded is a deterministic Source safe for concurrent use.
type Seeded struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded creates a deterministic source from a seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mathrand.New(mathrand.NewSource(seed))}
}

// Float64 returns the next float64 in [0, 1) from the seeded stream.
func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
