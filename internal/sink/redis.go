package sink

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ygrebnov/workpool/internal/machine"
)

// RedisSink appends intervals to a Redis stream. Each entry carries the
// machine id and kind as plain fields and the full record msgpack-encoded
// under "record".
type RedisSink struct {
	client *redis.Client
	stream string
}

// NewRedisSink wraps client. The stream is created by the first write.
func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

// Ping checks the connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *RedisSink) Write(ctx context.Context, iv machine.Interval) error {
	rec := NewRecord(iv)
	payload, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("cannot encode record: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"machine_id": rec.MachineID,
			"kind":       rec.Kind,
			"record":     payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("cannot append to stream %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error { return s.client.Close() }

// DecodeRecord reverses the "record" field of a stream entry.
func DecodeRecord(payload []byte) (Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("cannot decode record: %w", err)
	}
	return rec, nil
}
