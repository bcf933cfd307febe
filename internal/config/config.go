package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GUIDEQUEUE_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
	Roster    RosterConfig    `yaml:"roster"`
	Slots     SlotsConfig     `yaml:"slots"`
	Auth      AuthConfig      `yaml:"auth"`
	Reset     ResetConfig     `yaml:"reset"`
}

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode" validate:"oneof=http stdio"`
	// MCP mounts the streamable MCP endpoint at /mcp in http mode.
	MCP bool `yaml:"mcp"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=sqlite redis memory"`
	Path          string `yaml:"path" validate:"required_if=Backend sqlite"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"min=0,max=15"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type RosterConfig struct {
	// Path is an optional YAML roster. Empty generates Size guides.
	Path string `yaml:"path"`
	Size int    `yaml:"size" validate:"min=1,max=999"`
}

type SlotsConfig struct {
	Capacity int `yaml:"capacity" validate:"min=1,max=50"`
}

type AuthConfig struct {
	// AdminToken gates privileged commands. Empty disables the check.
	AdminToken string `yaml:"admin_token"`
}

type ResetConfig struct {
	// Schedule is a standard cron expression. Empty disables the reset.
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
			MCP:  true,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "guidequeue.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Roster: RosterConfig{
			Size: 70,
		},
		Slots: SlotsConfig{
			Capacity: 5,
		},
		Reset: ResetConfig{
			Timezone: "Asia/Jakarta",
		},
	}
}

// RegisterFlags defines the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("host", "", "listen host")
	fs.Int("port", 0, "listen port")
	fs.String("transport", "", "transport mode: http or stdio")
	fs.String("store", "", "store backend: sqlite, redis or memory")
	fs.String("db", "", "sqlite database path")
	fs.String("redis-addr", "", "redis address")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("roster", "", "path to a YAML roster file")
	fs.String("admin-token", "", "bearer token for privileged commands")
	fs.String("reset-schedule", "", "cron expression for the daily reset")
}

// Load builds the configuration from defaults, an optional YAML file,
// GUIDEQUEUE_* environment variables and the flags changed on fs, in that
// order, and validates the result. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := Default()

	path := os.Getenv(envPrefix + "CONFIG_PATH")
	if fs != nil && fs.Changed("config") {
		path, _ = fs.GetString("config")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if fs != nil {
		if err := applyFlags(fs, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints, the timezone and the reset schedule.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Reset.Timezone); err != nil {
		return fmt.Errorf("invalid config: reset timezone: %w", err)
	}
	if c.Reset.Schedule != "" {
		if _, err := cron.ParseStandard(c.Reset.Schedule); err != nil {
			return fmt.Errorf("invalid config: reset schedule: %w", err)
		}
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	envString("SERVER_HOST", &cfg.Server.Host)
	envString("TRANSPORT_MODE", &cfg.Transport.Mode)
	envString("STORE_BACKEND", &cfg.Store.Backend)
	envString("STORE_PATH", &cfg.Store.Path)
	envString("STORE_REDIS_ADDR", &cfg.Store.RedisAddr)
	envString("STORE_REDIS_PASSWORD", &cfg.Store.RedisPassword)
	envString("STORE_KEY_PREFIX", &cfg.Store.KeyPrefix)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("ROSTER_PATH", &cfg.Roster.Path)
	envString("AUTH_ADMIN_TOKEN", &cfg.Auth.AdminToken)
	envString("RESET_SCHEDULE", &cfg.Reset.Schedule)
	envString("RESET_TIMEZONE", &cfg.Reset.Timezone)

	for name, dst := range map[string]*int{
		"SERVER_PORT":    &cfg.Server.Port,
		"STORE_REDIS_DB": &cfg.Store.RedisDB,
		"ROSTER_SIZE":    &cfg.Roster.Size,
		"SLOTS_CAPACITY": &cfg.Slots.Capacity,
	} {
		if err := envInt(name, dst); err != nil {
			return err
		}
	}

	if raw := os.Getenv(envPrefix + "TRANSPORT_MCP"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %sTRANSPORT_MCP: %w", envPrefix, err)
		}
		cfg.Transport.MCP = v
	}
	return nil
}

func envString(name string, dst *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) error {
	raw := os.Getenv(envPrefix + name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = v
	return nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	stringFlags := map[string]*string{
		"host":           &cfg.Server.Host,
		"transport":      &cfg.Transport.Mode,
		"store":          &cfg.Store.Backend,
		"db":             &cfg.Store.Path,
		"redis-addr":     &cfg.Store.RedisAddr,
		"log-level":      &cfg.Log.Level,
		"roster":         &cfg.Roster.Path,
		"admin-token":    &cfg.Auth.AdminToken,
		"reset-schedule": &cfg.Reset.Schedule,
	}
	for name, dst := range stringFlags {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
		*dst = v
	}
	if fs.Lookup("port") != nil && fs.Changed("port") {
		v, err := fs.GetInt("port")
		if err != nil {
			return fmt.Errorf("flag --port: %w", err)
		}
		cfg.Server.Port = v
	}
	return nil
}
