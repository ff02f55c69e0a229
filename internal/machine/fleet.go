package machine

import (
	"strconv"
	"time"
)

// MaxFleet is the number of machines one status byte can describe.
const MaxFleet = 8

// Fleet is a group of up to MaxFleet machines fed by a single status byte.
// Machine i reads bit i counted from the most significant bit.
// Fleet is not safe for concurrent use.
type Fleet struct {
	machines []*Machine
}

// NewFleet creates n machines with ids "1".."n". n is clamped to [1, MaxFleet].
func NewFleet(n int) *Fleet {
	n = max(1, min(n, MaxFleet))
	f := &Fleet{machines: make([]*Machine, n)}
	for i := range f.machines {
		f.machines[i] = New(strconv.Itoa(i + 1))
	}
	return f
}

func (f *Fleet) Len() int { return len(f.machines) }

// Machine returns the i-th machine.
func (f *Fleet) Machine(i int) *Machine { return f.machines[i] }

// Apply updates every machine from status observed at now and returns the
// intervals closed by the resulting transitions, in machine order.
func (f *Fleet) Apply(status byte, now time.Time) []Interval {
	bits := Bits(status)
	var out []Interval
	for i, m := range f.machines {
		if iv, ok := m.Set(bits[i], now); ok {
			out = append(out, iv)
		}
	}
	return out
}

// Status encodes the current machine states back into a status byte.
func (f *Fleet) Status() byte {
	var b byte
	for i, m := range f.machines {
		if m.IsOn() {
			b |= 0x80 >> i
		}
	}
	return b
}
