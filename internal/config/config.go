package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the simulator config path.
const EnvPath = "GRIDWALK_CONFIG"

// DefaultPath is where the simulator looks for its config.
const DefaultPath = "config/gridsim.yaml"

// Storage drivers for the geography store.
const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Simulator holds all configuration for the simulation host.
type Simulator struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Dataset file (.yaml or .yaml.zst)
	Dataset string `yaml:"dataset"`

	// World tick period
	TickInterval time.Duration `yaml:"tick_interval"`
	// Stop after this many ticks (0 = run until signalled)
	MaxTicks uint64 `yaml:"max_ticks"`
	// Seed for NPC randomness (0 = time based)
	Seed int64 `yaml:"seed"`

	Search   SearchConfig   `yaml:"search"`
	Debug    DebugConfig    `yaml:"debug"`
	Database DatabaseConfig `yaml:"database"`
	Observer ObserverConfig `yaml:"observer"`
}

// SearchConfig tunes the move-toward search.
type SearchConfig struct {
	// Budget caps node expansions per step.
	Budget int `yaml:"budget"`
	// ChaseRange - beyond this Manhattan distance chasers wander.
	ChaseRange int32 `yaml:"chase_range"`
}

// DebugConfig holds developer switches.
type DebugConfig struct {
	// Passthrough lets the player walk through everything inside the map.
	Passthrough bool `yaml:"passthrough"`
}

// DatabaseConfig selects where the geography index is loaded from.
// With an empty driver the index comes from the dataset itself.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`

	// SQLite
	Path string `yaml:"path"`

	// PostgreSQL
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ObserverConfig configures the websocket feed.
type ObserverConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	AllowRemote bool   `yaml:"allow_remote"`
}

// DefaultSimulator returns Simulator config with sensible defaults.
func DefaultSimulator() Simulator {
	return Simulator{
		LogLevel:     "info",
		Dataset:      "data/world.yaml",
		TickInterval: 250 * time.Millisecond,
		Search: SearchConfig{
			Budget:     350,
			ChaseRange: 20,
		},
		Database: DatabaseConfig{
			Path:     "data/geography.db",
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gridwalk",
			Password: "gridwalk",
			DBName:   "gridwalk",
			SSLMode:  "disable",
		},
		Observer: ObserverConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// Validate checks values that would otherwise fail deep inside the run.
func (s Simulator) Validate() error {
	switch s.Database.Driver {
	case DriverNone, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", s.Database.Driver)
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", s.TickInterval)
	}
	if s.Search.Budget <= 0 {
		return fmt.Errorf("search.budget must be positive, got %d", s.Search.Budget)
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset path is empty")
	}
	return nil
}

// Path returns the config path, honouring GRIDWALK_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadSimulator loads simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulator(path string) (Simulator, error) {
	cfg := DefaultSimulator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
