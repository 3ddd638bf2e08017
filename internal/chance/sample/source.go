// Package sample provides the uniform random samplers behind every chance tool:
// indices over a finite set, integer and decimal ranges, and list picks.
package sample

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source is the randomness provider for all samplers.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Int64N returns a non-negative random int64 in [0, n).
	//
	// Precondition: n > 0.
	Int64N(n int64) int64
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Int64N is in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Int64N returns a random int64 in [0, n) read from crypto/rand.
//
// Precondition: n > 0. Panics with "sample: Int64N called with n <= 0" otherwise.
func (cryptoSource) Int64N(n int64) int64 {
	if n <= 0 {
		panic("sample: Int64N called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic("sample: crypto/rand failure: " + err.Error())
	}
	return val.Int64()
}

// Float64 returns a random float64 in [0, 1) with 53 bits of precision.
func (c cryptoSource) Float64() float64 {
	return float64(c.Int64N(1<<53)) / (1 << 53)
}

// SeededSource is a deterministic Source over a PCG generator guarded by a mutex.
type SeededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed.
//
// Postcondition: Two sources built from the same seed yield identical sequences.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Int64N returns a value in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Int64N(n int64) int64 {
	if n <= 0 {
		panic("sample: Int64N called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Int64N(n)
}

// Float64 returns a value in [0, 1).
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// New returns a SeededSource when seed is non-zero and a crypto source otherwise.
func New(seed uint64) Source {
	if seed == 0 {
		return NewCryptoSource()
	}
	return NewSeededSource(seed)
}
