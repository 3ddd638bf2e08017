// Package config provides Viper-based configuration loading for the chance server.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// StorageConfig selects where persisted wheel options live.
type StorageConfig struct {
	// Backend is one of "memory", "file", "sqlite", or "postgres".
	Backend string `mapstructure:"backend"`
	// Dir is the directory used by the file backend.
	Dir string `mapstructure:"dir"`
	// Path is the database file used by the sqlite backend.
	Path string `mapstructure:"path"`
}

// HealthConfig holds the gRPC health service settings.
type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// Interval is how often backing dependencies are probed.
	Interval time.Duration `mapstructure:"interval"`
}

// Addr returns the "host:port" gRPC address.
func (h HealthConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// ToolsConfig holds animation timings and randomness settings for the chance tools.
type ToolsConfig struct {
	WheelSpin time.Duration `mapstructure:"wheel_spin"`

	CoinFlip   time.Duration `mapstructure:"coin_flip"`
	CoinSettle time.Duration `mapstructure:"coin_settle"`

	DiceRoll   time.Duration `mapstructure:"dice_roll"`
	DiceTick   time.Duration `mapstructure:"dice_tick"`
	DiceJitter time.Duration `mapstructure:"dice_jitter"`

	NumberDuration time.Duration `mapstructure:"number_duration"`
	NumberTick     time.Duration `mapstructure:"number_tick"`
	NumberSettle   time.Duration `mapstructure:"number_settle"`

	DrawShort  time.Duration `mapstructure:"draw_short"`
	DrawMedium time.Duration `mapstructure:"draw_medium"`
	DrawLong   time.Duration `mapstructure:"draw_long"`
	DrawTick   time.Duration `mapstructure:"draw_tick"`
	DrawSpread time.Duration `mapstructure:"draw_spread"`
	DrawSettle time.Duration `mapstructure:"draw_settle"`

	// Presets is an optional YAML file of named wheel option lists.
	Presets string `mapstructure:"presets"`
	// Seed makes every run reproducible when non-zero; zero selects crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultTools returns the stock timings.
func DefaultTools() ToolsConfig {
	return ToolsConfig{
		WheelSpin:      10 * time.Second,
		CoinFlip:       1400 * time.Millisecond,
		CoinSettle:     180 * time.Millisecond,
		DiceRoll:       2300 * time.Millisecond,
		DiceTick:       70 * time.Millisecond,
		DiceJitter:     60 * time.Millisecond,
		NumberDuration: 700 * time.Millisecond,
		NumberTick:     55 * time.Millisecond,
		NumberSettle:   120 * time.Millisecond,
		DrawShort:      3 * time.Second,
		DrawMedium:     6 * time.Second,
		DrawLong:       12 * time.Second,
		DrawTick:       35 * time.Millisecond,
		DrawSpread:     260 * time.Millisecond,
		DrawSettle:     160 * time.Millisecond,
	}
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Health   HealthConfig   `mapstructure:"health"`
	Tools    ToolsConfig    `mapstructure:"tools"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHealth(c.Health); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTools(c.Tools); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendMemory, BackendPostgres:
		return nil
	case BackendFile:
		if s.Dir == "" {
			return errors.New("storage.dir must not be empty for the file backend")
		}
		return nil
	case BackendSQLite:
		if s.Path == "" {
			return errors.New("storage.path must not be empty for the sqlite backend")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be one of [memory, file, sqlite, postgres], got %q", s.Backend)
	}
}

func validateHealth(h HealthConfig) error {
	if !h.Enabled {
		return nil
	}
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("health.port must be 1-65535, got %d", h.Port))
	}
	if h.Interval <= 0 {
		errs = append(errs, "health.interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTools(t ToolsConfig) error {
	var errs []string
	nonNegative := map[string]time.Duration{
		"tools.wheel_spin":      t.WheelSpin,
		"tools.coin_flip":       t.CoinFlip,
		"tools.coin_settle":     t.CoinSettle,
		"tools.dice_roll":       t.DiceRoll,
		"tools.dice_jitter":     t.DiceJitter,
		"tools.number_duration": t.NumberDuration,
		"tools.number_settle":   t.NumberSettle,
		"tools.draw_spread":     t.DrawSpread,
		"tools.draw_settle":     t.DrawSettle,
	}
	for _, key := range sortedKeys(nonNegative) {
		if nonNegative[key] < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", key))
		}
	}
	positive := map[string]time.Duration{
		"tools.dice_tick":   t.DiceTick,
		"tools.number_tick": t.NumberTick,
		"tools.draw_tick":   t.DrawTick,
		"tools.draw_short":  t.DrawShort,
		"tools.draw_medium": t.DrawMedium,
		"tools.draw_long":   t.DrawLong,
	}
	for _, key := range sortedKeys(positive) {
		if positive[key] <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", key))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func sortedKeys(m map[string]time.Duration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CHANCE_ prefix
	v.SetEnvPrefix("CHANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "chance")
	v.SetDefault("database.password", "chance")
	v.SetDefault("database.name", "chance")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.path", "")

	v.SetDefault("health.enabled", false)
	v.SetDefault("health.host", "127.0.0.1")
	v.SetDefault("health.port", 50051)
	v.SetDefault("health.interval", "10s")

	d := DefaultTools()
	v.SetDefault("tools.wheel_spin", d.WheelSpin)
	v.SetDefault("tools.coin_flip", d.CoinFlip)
	v.SetDefault("tools.coin_settle", d.CoinSettle)
	v.SetDefault("tools.dice_roll", d.DiceRoll)
	v.SetDefault("tools.dice_tick", d.DiceTick)
	v.SetDefault("tools.dice_jitter", d.DiceJitter)
	v.SetDefault("tools.number_duration", d.NumberDuration)
	v.SetDefault("tools.number_tick", d.NumberTick)
	v.SetDefault("tools.number_settle", d.NumberSettle)
	v.SetDefault("tools.draw_short", d.DrawShort)
	v.SetDefault("tools.draw_medium", d.DrawMedium)
	v.SetDefault("tools.draw_long", d.DrawLong)
	v.SetDefault("tools.draw_tick", d.DrawTick)
	v.SetDefault("tools.draw_spread", d.DrawSpread)
	v.SetDefault("tools.draw_settle", d.DrawSettle)
	v.SetDefault("tools.presets", "")
	v.SetDefault("tools.seed", 0)
}
