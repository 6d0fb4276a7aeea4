package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. KOA_LOGGING_LEVEL.
const EnvPrefix = "KOA"

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Player   PlayerConfig   `mapstructure:"player"`
}

type ServerConfig struct {
	WebSocket   WebSocketConfig `mapstructure:"websocket"`
	GRPC        GRPCConfig      `mapstructure:"grpc"`
	LeasePeriod time.Duration   `mapstructure:"lease_period"`
	MaxSessions int             `mapstructure:"max_sessions"`
}

type WebSocketConfig struct {
	Address         string   `mapstructure:"address"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ReadBufferSize  int      `mapstructure:"read_buffer_size"`
	WriteBufferSize int      `mapstructure:"write_buffer_size"`
}

type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// CombatConfig holds the animation and pacing delays and the RNG seed.
// A zero seed seeds from the clock.
type CombatConfig struct {
	MoveDelay        time.Duration `mapstructure:"move_delay"`
	BurnDelay        time.Duration `mapstructure:"burn_delay"`
	PacingDelay      time.Duration `mapstructure:"pacing_delay"`
	DefaultCastDelay time.Duration `mapstructure:"default_cast_delay"`
	Reshuffles       int           `mapstructure:"reshuffles"`
	Seed             uint64        `mapstructure:"seed"`
	ReplayDir        string        `mapstructure:"replay_dir"`
}

// PlayerConfig names the profile new sessions play and an optional deck list
// file overriding the default deck.
type PlayerConfig struct {
	Profile  string `mapstructure:"profile"`
	DeckFile string `mapstructure:"deck_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.lease_period", 5*time.Minute)
	v.SetDefault("server.max_sessions", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("combat.move_delay", 450*time.Millisecond)
	v.SetDefault("combat.burn_delay", 1200*time.Millisecond)
	v.SetDefault("combat.pacing_delay", 500*time.Millisecond)
	v.SetDefault("combat.default_cast_delay", 800*time.Millisecond)
	v.SetDefault("combat.reshuffles", 2)
	v.SetDefault("combat.seed", 0)
	v.SetDefault("combat.replay_dir", "")

	v.SetDefault("player.profile", "Koa XIII")
	v.SetDefault("player.deck_file", "")
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.WebSocket.Address == "" {
		errs = append(errs, errors.New("server.websocket.address is required"))
	}
	if c.Server.GRPC.Address == "" {
		errs = append(errs, errors.New("server.grpc.address is required"))
	}
	if c.Server.LeasePeriod <= 0 {
		errs = append(errs, errors.New("server.lease_period must be positive"))
	}
	if c.Server.MaxSessions <= 0 {
		errs = append(errs, errors.New("server.max_sessions must be positive"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			errs = append(errs, fmt.Errorf("database.url is required for driver %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	delays := []struct {
		key   string
		value time.Duration
	}{
		{"combat.move_delay", c.Combat.MoveDelay},
		{"combat.burn_delay", c.Combat.BurnDelay},
		{"combat.pacing_delay", c.Combat.PacingDelay},
		{"combat.default_cast_delay", c.Combat.DefaultCastDelay},
	}
	for _, d := range delays {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", d.key))
		}
	}
	if c.Combat.Reshuffles < 0 {
		errs = append(errs, errors.New("combat.reshuffles must not be negative"))
	}

	return errors.Join(errs...)
}
