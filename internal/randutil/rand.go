package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every game gets its own generator so that a seed fully determines the
// spudmaster number, the first holder and every draw that follows.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSeed draws a high-entropy seed for runs where the caller did not pick one.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Sequence replays a scripted list of draws. Each IntN call consumes the
// next value. Running out of values, or a value outside [0, n), panics so a
// mis-scripted game fails at the exact draw that went wrong.
type Sequence struct {
	values []int
	pos    int
}

// NewSequence creates a scripted source returning values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// IntN returns the next scripted value.
func (s *Sequence) IntN(n int) int {
	if s.pos >= len(s.values) {
		panic(fmt.Sprintf("randutil: sequence exhausted after %d draws", s.pos))
	}
	v := s.values[s.pos]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("randutil: scripted draw %d is %d, want [0, %d)", s.pos, v, n))
	}
	s.pos++
	return v
}

// Remaining reports how many scripted values have not been consumed.
func (s *Sequence) Remaining() int {
	return len(s.values) - s.pos
}
