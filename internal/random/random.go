package random

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"
)

// Source provides the random integers used for generated identifiers and
// placeholder values.
type Source interface {
	// Intn returns a value in [0, n). It returns 0 when n <= 0.
	Intn(n int) int
}

// SecureSource implements Source with cryptographically secure randomness
type SecureSource struct{}

// NewSecureSource creates a new secure random source
func NewSecureSource() *SecureSource {
	return &SecureSource{}
}

func (s *SecureSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(val.Int64())
}

// SeededSource is a deterministic Source for tests and reproducible runs.
type SeededSource struct {
	mu   sync.Mutex
	rand *mrand.Rand
}

// NewSeededSource creates a source from seed. A zero seed picks one from the clock.
func NewSeededSource(seed int64) *SeededSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SeededSource{rand: mrand.New(mrand.NewSource(seed))} // #nosec G404 - not used for security
}

func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Intn(n)
}

// Fixed always returns the same value, clamped into range.
type Fixed int

func (f Fixed) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v
}
