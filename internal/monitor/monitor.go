// Package monitor polls machine status, derives run/down intervals and
// forwards each interval to a sink through a workpool.Pool.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ygrebnov/workpool"
	"github.com/ygrebnov/workpool/internal/machine"
	"github.com/ygrebnov/workpool/internal/sink"
	"github.com/ygrebnov/workpool/internal/status"
)

// Config tunes a Monitor.
type Config struct {
	Machines     int
	PollInterval time.Duration
	// WriteRate caps sink writes per second across workers; 0 disables the cap.
	WriteRate  float64
	WriteBurst int
	// Now is the clock used to time transitions; time.Now if nil.
	Now func() time.Time
}

// Stats counts what a Monitor has done so far.
type Stats struct {
	Polls      int // samples read successfully
	ReadErrors int
	Intervals  int
	Submitted  int
	Rejected   int
	Written    int
	Failed     int
	Pending    int
}

type writeItem = workpool.Item[machine.Interval, struct{}]

// Monitor owns the machine fleet state. Poll and Run must not be called
// concurrently with each other; Stats and Drain may be called from anywhere.
type Monitor struct {
	pool    *workpool.Pool
	reader  status.Reader
	sink    sink.Sink
	fleet   *machine.Fleet
	limiter *rate.Limiter
	every   time.Duration
	now     func() time.Time
	log     *zap.Logger

	mu       sync.Mutex
	inflight []*writeItem
	stats    Stats
}

// New builds a monitor. The pool is used as is: the caller starts and stops it.
func New(pool *workpool.Pool, reader status.Reader, s sink.Sink, cfg Config, log *zap.Logger) *Monitor {
	m := &Monitor{
		pool:   pool,
		reader: reader,
		sink:   s,
		fleet:  machine.NewFleet(cfg.Machines),
		every:  cfg.PollInterval,
		now:    cfg.Now,
		log:    log.Named("monitor"),
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.every <= 0 {
		m.every = time.Second
	}
	if cfg.WriteRate > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(cfg.WriteRate), max(1, cfg.WriteBurst))
	}
	return m
}

// Run polls every PollInterval until ctx is done or the reader is exhausted.
// Read failures are logged and the loop carries on.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()

	m.log.Info("monitor started", zap.Int("machines", m.fleet.Len()), zap.Duration("interval", m.every))
	for {
		err := m.Poll(ctx)
		switch {
		case errors.Is(err, status.ErrExhausted):
			m.log.Info("status source exhausted")
			return nil
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, workpool.ErrPoolStopped):
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll reads one status sample, applies it to the fleet and submits one work
// item per closed interval. Finished items are reaped afterwards.
func (m *Monitor) Poll(ctx context.Context) error {
	defer m.reap()

	b, err := m.reader.Read(ctx)
	if err != nil {
		if !errors.Is(err, status.ErrExhausted) && ctx.Err() == nil {
			m.mu.Lock()
			m.stats.ReadErrors++
			m.mu.Unlock()
			m.log.Warn("cannot read machine status", zap.Error(err))
		}
		return err
	}
	m.mu.Lock()
	m.stats.Polls++
	m.mu.Unlock()

	for _, iv := range m.fleet.Apply(b, m.now()) {
		if err := m.submit(iv); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) submit(iv machine.Interval) error {
	item := workpool.NewItem(m.write, iv, workpool.WithID(iv.MachineID+"/"+string(iv.Kind)))
	queue, err := m.pool.Add(item)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Intervals++
	if err != nil {
		m.stats.Rejected++
		m.log.Warn("interval dropped", zap.Stringer("interval", iv), zap.Error(err))
		return err
	}
	m.stats.Submitted++
	m.inflight = append(m.inflight, item)
	m.log.Debug("interval submitted", zap.Stringer("interval", iv), zap.Int("queue", queue))
	return nil
}

// write is the job executed on pool workers.
func (m *Monitor) write(ctx context.Context, iv machine.Interval) (struct{}, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, m.sink.Write(ctx, iv)
}

// reap drops finished items from the in-flight list and accounts for them.
func (m *Monitor) reap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.inflight[:0]
	for _, it := range m.inflight {
		select {
		case <-it.Done():
		default:
			kept = append(kept, it)
			continue
		}
		if err := it.Err(); err != nil {
			m.stats.Failed++
			m.log.Warn("cannot write interval", zap.Stringer("interval", it.Input()), zap.Error(err))
			continue
		}
		m.stats.Written++
	}
	clear(m.inflight[len(kept):])
	m.inflight = kept
}

// Drain waits until every submitted item has finished or ctx is done, then
// returns the stats. Items abandoned by a stopped pool never finish, so ctx
// should carry a deadline.
func (m *Monitor) Drain(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	pending := append([]*writeItem(nil), m.inflight...)
	m.mu.Unlock()

	var err error
	for _, it := range pending {
		select {
		case <-it.Done():
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err != nil {
			break
		}
	}
	m.reap()
	return m.Stats(), err
}

// Stats returns a snapshot of the counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Pending = len(m.inflight)
	return s
}

// Status returns the last applied status byte.
// Not safe to call concurrently with Poll.
func (m *Monitor) Status() byte { return m.fleet.Status() }
