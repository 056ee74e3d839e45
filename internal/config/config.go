// Package config loads schemacheck settings from defaults, an optional YAML
// file and SCHEMACHECK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/schemacheck/internal/logging"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/schema"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCHEMACHECK_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverFile   = "file"
	DriverNone   = "none"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	MCP    MCPConfig    `mapstructure:"mcp" yaml:"mcp"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

type EngineConfig struct {
	Default      string        `mapstructure:"default" yaml:"default"`
	MaxDepth     int           `mapstructure:"max_depth" yaml:"max_depth"`
	RegexTimeout time.Duration `mapstructure:"regex_timeout" yaml:"regex_timeout"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"` // empty allows any origin
}

type StoreConfig struct {
	Driver   string        `mapstructure:"driver" yaml:"driver"`
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Limit    int           `mapstructure:"limit" yaml:"limit"` // memory driver only; 0 is unlimited
	Dir      string        `mapstructure:"dir" yaml:"dir"`     // file driver only
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Engine: EngineConfig{
			Default:      string(domain.EngineSubset),
			MaxDepth:     schema.DefaultMaxDepth,
			RegexTimeout: schema.DefaultRegexTimeout,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    10 << 20,
			ShutdownTimeout: 5 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Addr:   "localhost:6379",
			Limit:  1000,
		},
		MCP: MCPConfig{Transport: TransportStdio, Port: 8081},
	}
}

// envKeys lists every overridable setting as a path into the config tree.
var envKeys = [][]string{
	{"log", "level"}, {"log", "format"},
	{"engine", "default"}, {"engine", "max_depth"}, {"engine", "regex_timeout"},
	{"server", "addr"}, {"server", "max_body_bytes"}, {"server", "shutdown_timeout"}, {"server", "cors_origins"},
	{"store", "driver"}, {"store", "addr"}, {"store", "password"}, {"store", "db"},
	{"store", "prefix"}, {"store", "ttl"}, {"store", "limit"}, {"store", "dir"},
	{"mcp", "transport"}, {"mcp", "port"},
}

// EnvName returns the variable that overrides the setting at path.
func EnvName(path ...string) string {
	return EnvPrefix + strings.ToUpper(strings.Join(path, "_"))
}

// Load reads the YAML file at path (skipped when empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for _, key := range envKeys {
		if v, ok := lookup(EnvName(key...)); ok {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	if err := decode(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setPath(m map[string]any, path []string, v any) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if _, err := domain.ParseEngine(c.Engine.Default); err != nil {
		errs = append(errs, fmt.Errorf("engine.default: %w", err))
	}
	if c.Engine.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("engine.max_depth must be positive, got %d", c.Engine.MaxDepth))
	}
	if c.Engine.RegexTimeout < 0 {
		errs = append(errs, fmt.Errorf("engine.regex_timeout must not be negative"))
	}

	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}

	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverNone:
	case DriverRedis:
		if c.Store.Addr == "" {
			errs = append(errs, fmt.Errorf("store.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be memory, redis, file or none, got %q", c.Store.Driver))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, fmt.Errorf("store.ttl must not be negative"))
	}

	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("mcp.transport must be stdio or sse, got %q", c.MCP.Transport))
	}
	if c.MCP.Port < 1 || c.MCP.Port > 65535 {
		errs = append(errs, fmt.Errorf("mcp.port out of range: %d", c.MCP.Port))
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level; Validate has already vetted it.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
