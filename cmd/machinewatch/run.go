package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygrebnov/workpool"
	"github.com/ygrebnov/workpool/internal/config"
	"github.com/ygrebnov/workpool/internal/logger"
	"github.com/ygrebnov/workpool/internal/monitor"
	"github.com/ygrebnov/workpool/internal/sink"
	"github.com/ygrebnov/workpool/internal/status"
	"github.com/ygrebnov/workpool/metrics"
)

var (
	workers      int
	machines     int
	pollInterval time.Duration
	sinkKind     string
	seed         int64
	runFor       time.Duration
	drainTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll machine status and forward intervals",
	Long: `Poll a simulated machine status source and forward every run/down interval
to the configured sink until interrupted (SIGINT/SIGTERM) or --for elapses.`,
	RunE: runWatch,
}

func init() {
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Pool size (overrides config)")
	runCmd.Flags().IntVarP(&machines, "machines", "m", 0, "Number of machines, 1-8 (overrides config)")
	runCmd.Flags().DurationVarP(&pollInterval, "interval", "i", 0, "Status poll interval (overrides config)")
	runCmd.Flags().StringVarP(&sinkKind, "sink", "s", "", "Sink: log, redis or sqlite (overrides config)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the simulated status source (default: current time)")
	runCmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this long (default: run until interrupted)")
	runCmd.Flags().DurationVar(&drainTimeout, "drain-timeout", 5*time.Second, "How long to wait for submitted intervals on shutdown")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Pool.Workers = workers
	}
	if flags.Changed("machines") {
		cfg.Monitor.Machines = machines
	}
	if flags.Changed("interval") {
		cfg.Monitor.PollInterval = pollInterval
	}
	if flags.Changed("sink") {
		cfg.Sink.Kind = sinkKind
	}
	return cfg, cfg.Validate()
}

func openSink(ctx context.Context, cfg config.SinkConfig, log *zap.Logger) (sink.Sink, error) {
	switch cfg.Kind {
	case config.SinkRedis:
		s := sink.NewRedisSink(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.RedisStream)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		log.Info("Connected to Redis successfully", zap.String("addr", cfg.RedisAddr), zap.String("stream", cfg.RedisStream))
		return s, nil
	case config.SinkSQLite:
		s, err := sink.NewSQLiteSink(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("Opened SQLite database", zap.String("path", cfg.SQLitePath))
		return s, nil
	default:
		return sink.NewLogSink(log), nil
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()
	log.Info(getVersionInfo())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}

	out, err := openSink(ctx, cfg.Sink, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Warn("Failed to close sink", zap.Error(err))
		}
	}()

	mp := metrics.NewBasicProvider()
	pool, err := workpool.New(cfg.Pool.Workers,
		workpool.WithName(cfg.Pool.Name),
		workpool.WithLogger(log),
		workpool.WithMetrics(mp),
	)
	if err != nil {
		return err
	}
	// workers exit only through Stop, after the drain below
	if err := pool.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}
	reader := status.NewSimulated(cfg.Monitor.Machines, cfg.Monitor.FlipChance, seed)

	mon := monitor.New(pool, reader, out, monitor.Config{
		Machines:     cfg.Monitor.Machines,
		PollInterval: cfg.Monitor.PollInterval,
		WriteRate:    cfg.Monitor.WriteRate,
		WriteBurst:   cfg.Monitor.WriteBurst,
	}, log)

	runErr := mon.Run(ctx)
	log.Info("Shutting down", zap.Int("pending", pool.Pending()))

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	stats, drainErr := mon.Drain(drainCtx)
	if drainErr != nil {
		log.Warn("Intervals still in flight at shutdown", zap.Int("pending", stats.Pending), zap.Error(drainErr))
	}
	abandoned := pool.Stop()

	printStats(cmd, stats, abandoned)
	printMetrics(cmd, mp)
	return runErr
}

func printStats(cmd *cobra.Command, st monitor.Stats, abandoned int) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "polls=%d read_errors=%d intervals=%d submitted=%d rejected=%d written=%d failed=%d abandoned=%d\n",
		st.Polls, st.ReadErrors, st.Intervals, st.Submitted, st.Rejected, st.Written, st.Failed, abandoned)
}

func printMetrics(cmd *cobra.Command, mp *metrics.BasicProvider) {
	w := cmd.OutOrStdout()
	for _, s := range mp.Snapshot() {
		switch s.Kind {
		case "histogram":
			fmt.Fprintf(w, "%-40s count=%d mean=%.6f max=%.6f\n", s.Name, s.Hist.Count, s.Hist.Mean, s.Hist.Max)
		default:
			fmt.Fprintf(w, "%-40s %d\n", s.Name, s.Value)
		}
	}
}
