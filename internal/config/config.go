// Package config loads server configuration from YAML and HEARTH_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. HEARTH_SERVER_HTTP_ADDRESS.
const EnvPrefix = "HEARTH"

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig groups the listeners.
type ServerConfig struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	GRPC       GRPCConfig      `mapstructure:"grpc"`
	WebSocket  WebSocketConfig `mapstructure:"websocket"`
	MaxMatches int             `mapstructure:"max_matches"`
}

// HTTPConfig configures the REST API listener.
type HTTPConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// GRPCConfig configures the gRPC listener.
type GRPCConfig struct {
	Address              string        `mapstructure:"address"`
	MaxConcurrentStreams int           `mapstructure:"max_concurrent_streams"`
	KeepaliveTime        time.Duration `mapstructure:"keepalive_time"`
	KeepaliveTimeout     time.Duration `mapstructure:"keepalive_timeout"`
}

// WebSocketConfig configures the websocket transport, which is mounted on the
// HTTP listener at Path.
type WebSocketConfig struct {
	Path            string `mapstructure:"path"`
	ReadBufferSize  int    `mapstructure:"read_buffer_size"`
	WriteBufferSize int    `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64  `mapstructure:"max_message_size"`
	SendBuffer      int    `mapstructure:"send_buffer"`
}

// GameConfig holds rules engine and match settings.
type GameConfig struct {
	TurnTimeout    time.Duration `mapstructure:"turn_timeout"`
	LogCapacity    int           `mapstructure:"log_capacity"`
	LogLines       int           `mapstructure:"log_lines"`
	CataloguePath  string        `mapstructure:"catalogue_path"`
	Seed           int64         `mapstructure:"seed"`
	DefaultDeck    string        `mapstructure:"default_deck"`
	DefaultHero    string        `mapstructure:"default_hero"`
	RetainFinished time.Duration `mapstructure:"retain_finished"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the optional Postgres result store.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.http.read_timeout", 15*time.Second)
	v.SetDefault("server.http.write_timeout", 15*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.http.mode", "release")
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.grpc.keepalive_time", 30*time.Second)
	v.SetDefault("server.grpc.keepalive_timeout", 10*time.Second)
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.max_message_size", 4096)
	v.SetDefault("server.websocket.send_buffer", 64)
	v.SetDefault("server.max_matches", 500)

	v.SetDefault("game.turn_timeout", 90*time.Second)
	v.SetDefault("game.log_capacity", 200)
	v.SetDefault("game.log_lines", 10)
	v.SetDefault("game.catalogue_path", "")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.default_deck", "starter")
	v.SetDefault("game.default_hero", "mage")
	v.SetDefault("game.retain_finished", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 5*time.Second)
}

// Load reads configuration from path. A missing file is tolerated when path is
// empty; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.HTTP.Address == "" {
		errs = append(errs, errors.New("server.http.address is required"))
	}
	if c.Server.GRPC.Address == "" {
		errs = append(errs, errors.New("server.grpc.address is required"))
	}
	if !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
		errs = append(errs, errors.New("server.websocket.path must start with /"))
	}
	if c.Server.MaxMatches <= 0 {
		errs = append(errs, errors.New("server.max_matches must be positive"))
	}
	if c.Game.TurnTimeout < 0 {
		errs = append(errs, errors.New("game.turn_timeout must not be negative"))
	}
	if c.Game.LogCapacity <= 0 {
		errs = append(errs, errors.New("game.log_capacity must be positive"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}
	if c.Database.Enabled && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required when database.enabled"))
	}
	return errors.Join(errs...)
}
