// Package machine tracks the on/off state of monitored machines and turns
// state transitions into run and down intervals.
package machine

import (
	"fmt"
	"time"
)

// Kind tells whether an interval was spent running or standing still.
type Kind string

const (
	KindRun  Kind = "run"
	KindDown Kind = "down"
)

// Interval is a closed period during which a machine kept one state.
type Interval struct {
	MachineID string
	Kind      Kind
	Start     time.Time
	End       time.Time
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

func (iv Interval) String() string {
	return fmt.Sprintf("%s %s %s", iv.MachineID, iv.Kind, iv.Duration())
}

// Machine is the observed state of one machine.
// A machine starts off with no known stop time, so its first power-on
// reports no down interval.
type Machine struct {
	id      string
	on      bool
	started time.Time
	stopped time.Time
}

// New returns a machine in the off state.
func New(id string) *Machine { return &Machine{id: id} }

func (m *Machine) ID() string { return m.id }

func (m *Machine) IsOn() bool { return m.on }

// TurnOn switches the machine on at now. It returns the down interval that
// just ended, or false if the machine was already on or was never stopped.
func (m *Machine) TurnOn(now time.Time) (Interval, bool) {
	if m.on {
		return Interval{}, false
	}
	m.on = true
	m.started = now
	if m.stopped.IsZero() || !now.After(m.stopped) {
		return Interval{}, false
	}
	return Interval{MachineID: m.id, Kind: KindDown, Start: m.stopped, End: now}, true
}

// TurnOff switches the machine off at now. It returns the run interval that
// just ended, or false if the machine was already off.
func (m *Machine) TurnOff(now time.Time) (Interval, bool) {
	if !m.on {
		return Interval{}, false
	}
	m.on = false
	m.stopped = now
	if !now.After(m.started) {
		return Interval{}, false
	}
	return Interval{MachineID: m.id, Kind: KindRun, Start: m.started, End: now}, true
}

// Set applies an observed state at now.
func (m *Machine) Set(on bool, now time.Time) (Interval, bool) {
	if on {
		return m.TurnOn(now)
	}
	return m.TurnOff(now)
}

// Bits expands a status byte into eight flags, most significant bit first.
func Bits(status byte) [8]bool {
	var bits [8]bool
	for i := range bits {
		bits[i] = status&(0x80>>i) != 0
	}
	return bits
}
