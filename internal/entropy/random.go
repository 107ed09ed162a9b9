// Package entropy supplies the random rolls behind rival spawning and naming.
// Rolls come from crypto/rand by default, from random.org when a key is
// configured, or from a seeded generator in tests.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniform random values.
type Source interface {
	// Float returns a value in [0, 1).
	Float() float64
	// Intn returns a value in [0, n). n <= 0 returns 0.
	Intn(n int) int
}

// Crypto is a Source backed by crypto/rand.
type Crypto struct{}

// Float implements Source.
func (Crypto) Float() float64 { return cryptoRandFloat() }

// Intn implements Source.
func (Crypto) Intn(n int) int { return intn(cryptoRandFloat(), n) }

// Default returns the crypto-backed source.
func Default() Source { return Crypto{} }

// Seeded is a deterministic Source for tests and replays.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float implements Source.
func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Intn implements Source.
func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Fixed always returns the same float. Intn scales it into range.
type Fixed float64

// Float implements Source.
func (f Fixed) Float() float64 { return float64(f) }

// Intn implements Source.
func (f Fixed) Intn(n int) int { return intn(float64(f), n) }

func intn(f float64, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
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
