// Package sink delivers machine intervals to their destination.
package sink

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ygrebnov/workpool/internal/machine"
)

// Sink stores intervals. Write must be safe for concurrent use: it is called
// from every pool worker.
type Sink interface {
	Write(ctx context.Context, iv machine.Interval) error
	Close() error
}

// Record is the stored form of an interval.
type Record struct {
	ID              string    `db:"id" msgpack:"id"`
	MachineID       string    `db:"machine_id" msgpack:"machine_id"`
	Kind            string    `db:"kind" msgpack:"kind"`
	StartedAt       time.Time `db:"started_at" msgpack:"started_at"`
	EndedAt         time.Time `db:"ended_at" msgpack:"ended_at"`
	DurationSeconds float64   `db:"duration_seconds" msgpack:"duration_seconds"`
}

// NewRecord assigns a fresh ULID to iv.
func NewRecord(iv machine.Interval) Record {
	return Record{
		ID:              ulid.Make().String(),
		MachineID:       iv.MachineID,
		Kind:            string(iv.Kind),
		StartedAt:       iv.Start.UTC(),
		EndedAt:         iv.End.UTC(),
		DurationSeconds: iv.Duration().Seconds(),
	}
}
