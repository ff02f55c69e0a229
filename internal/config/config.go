// Package config loads machinewatch settings from defaults, an optional YAML
// file and environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/workpool/internal/logger"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("machinewatch: invalid configuration")

// Sink kinds.
const (
	SinkLog    = "log"
	SinkRedis  = "redis"
	SinkSQLite = "sqlite"
)

// Config holds the complete application configuration.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Monitor MonitorConfig `yaml:"monitor"`
	Sink    SinkConfig    `yaml:"sink"`
	Log     logger.Config `yaml:"log"`
}

type PoolConfig struct {
	Name    string `yaml:"name"`
	Workers int    `yaml:"workers"`
}

type MonitorConfig struct {
	Machines     int           `yaml:"machines"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// WriteRate caps sink writes per second across all workers; 0 disables the cap.
	WriteRate  float64 `yaml:"write_rate"`
	WriteBurst int     `yaml:"write_burst"`
	// FlipChance is the per-poll probability that a simulated machine changes state.
	FlipChance float64 `yaml:"flip_chance"`
}

type SinkConfig struct {
	Kind          string `yaml:"kind"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisStream   string `yaml:"redis_stream"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			Name:    "machinewatch",
			Workers: 4,
		},
		Monitor: MonitorConfig{
			Machines:     8,
			PollInterval: time.Second,
			WriteRate:    50,
			WriteBurst:   10,
			FlipChance:   0.1,
		},
		Sink: SinkConfig{
			Kind:        SinkLog,
			RedisAddr:   "localhost:6379",
			RedisStream: "machine_status",
			SQLitePath:  "machinewatch.db",
		},
		Log: logger.Config{
			Level:      "info",
			MaxSizeMB:  100,
			MaxAgeDays: 30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if not
// empty), then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Pool.Name = getEnv("POOL_NAME", c.Pool.Name)
	c.Pool.Workers = getEnvInt("POOL_WORKERS", c.Pool.Workers)

	c.Monitor.Machines = getEnvInt("MONITOR_MACHINES", c.Monitor.Machines)
	c.Monitor.PollInterval = getEnvDuration("MONITOR_POLL_INTERVAL", c.Monitor.PollInterval)
	c.Monitor.WriteRate = getEnvFloat("MONITOR_WRITE_RATE", c.Monitor.WriteRate)
	c.Monitor.WriteBurst = getEnvInt("MONITOR_WRITE_BURST", c.Monitor.WriteBurst)
	c.Monitor.FlipChance = getEnvFloat("MONITOR_FLIP_CHANCE", c.Monitor.FlipChance)

	c.Sink.Kind = getEnv("SINK_KIND", c.Sink.Kind)
	c.Sink.RedisAddr = getEnv("REDIS_ADDR", c.Sink.RedisAddr)
	c.Sink.RedisPassword = getEnv("REDIS_PASSWORD", c.Sink.RedisPassword)
	c.Sink.RedisDB = getEnvInt("REDIS_DB", c.Sink.RedisDB)
	c.Sink.RedisStream = getEnv("REDIS_STREAM", c.Sink.RedisStream)
	c.Sink.SQLitePath = getEnv("SQLITE_PATH", c.Sink.SQLitePath)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.Pool.Workers <= 0:
		return errorc.With(ErrInvalid, errorc.String("pool.workers", strconv.Itoa(c.Pool.Workers)))
	case c.Monitor.Machines < 1 || c.Monitor.Machines > 8:
		return errorc.With(ErrInvalid, errorc.String("monitor.machines", strconv.Itoa(c.Monitor.Machines)))
	case c.Monitor.PollInterval <= 0:
		return errorc.With(ErrInvalid, errorc.String("monitor.poll_interval", c.Monitor.PollInterval.String()))
	case c.Monitor.WriteRate < 0:
		return errorc.With(ErrInvalid, errorc.String("monitor.write_rate", "must not be negative"))
	case c.Monitor.FlipChance < 0 || c.Monitor.FlipChance > 1:
		return errorc.With(ErrInvalid, errorc.String("monitor.flip_chance", "must be within [0, 1]"))
	}

	switch c.Sink.Kind {
	case SinkLog, SinkRedis, SinkSQLite:
	default:
		return errorc.With(ErrInvalid, errorc.String("sink.kind", c.Sink.Kind))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
