// Package status provides sources of the 8-bit machine status word.
package status

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

// ErrExhausted is returned by Sequence once every sample has been read.
var ErrExhausted = errors.New("status: sequence exhausted")

// Reader returns the current status byte, one bit per machine, MSB first.
type Reader interface {
	Read(ctx context.Context) (byte, error)
}

// Simulated flips each of the low-order bits covered by mask with the given
// probability on every read.
type Simulated struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	state  byte
	mask   byte
	chance float64
}

// NewSimulated returns a reader for machines machines (1..8) whose bits flip
// with probability chance per read. The sequence is reproducible for a seed.
func NewSimulated(machines int, chance float64, seed int64) *Simulated {
	machines = max(1, min(machines, 8))
	return &Simulated{
		rnd:    rand.New(rand.NewSource(seed)),
		mask:   byte(0xFF << (8 - machines)),
		chance: chance,
	}
}

func (s *Simulated) Read(ctx context.Context) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < 8; i++ {
		bit := byte(0x80 >> i)
		if s.mask&bit == 0 {
			continue
		}
		if s.rnd.Float64() < s.chance {
			s.state ^= bit
		}
	}
	return s.state, nil
}

// Sequence replays a fixed list of samples, then returns ErrExhausted.
type Sequence struct {
	mu      sync.Mutex
	samples []byte
	next    int
}

func NewSequence(samples ...byte) *Sequence {
	return &Sequence{samples: samples}
}

func (s *Sequence) Read(ctx context.Context) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.samples) {
		return 0, ErrExhausted
	}
	b := s.samples[s.next]
	s.next++
	return b, nil
}
