// Package config loads forge's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/forge/config.toml (falling back to
// ~/.config/forge/config.toml). A missing file is not an error: [Load]
// returns [Default]. Unknown keys are rejected so that typos surface
// instead of being silently ignored.
//
//	gap = 8
//	workspace_layout = "hsplit"
//	monitor_layout = "hsplit"
//	float_classes = ["pavucontrol", "gcr-prompter"]
//
//	[log]
//	level = "info"
//
//	[cache]
//	backend = "file"   # file, redis or none
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[trace]
//	otlp_endpoint = "localhost:4318"
//
//	[server]
//	addr = "127.0.0.1:7878"
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/forgewm/forge/pkg/errors"
	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/tree"
)

const appName = "forge"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

var backends = []string{BackendFile, BackendRedis, BackendNone}

// Config is the decoded configuration file.
type Config struct {
	Gap             int      `toml:"gap"`
	WorkspaceLayout string   `toml:"workspace_layout"`
	MonitorLayout   string   `toml:"monitor_layout"`
	FloatClasses    []string `toml:"float_classes"`

	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Trace  TraceConfig  `toml:"trace"`
	Server ServerConfig `toml:"server"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir,omitempty"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// TraceConfig enables OTLP span export when OTLPEndpoint is set.
type TraceConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Gap:             tree.DefaultGap,
		WorkspaceLayout: tree.LayoutHSplit.String(),
		MonitorLayout:   tree.LayoutHSplit.String(),
		Log:             LogConfig{Level: "info"},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Trace:  TraceConfig{ServiceName: appName},
		Server: ServerConfig{Addr: "127.0.0.1:7878"},
	}
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath]. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values that TOML decoding cannot.
func (c Config) Validate() error {
	if c.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gap must be >= 0, got %d", c.Gap)
	}
	if _, err := tree.ParseLayout(c.WorkspaceLayout); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "workspace_layout")
	}
	if _, err := tree.ParseLayout(c.MonitorLayout); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "monitor_layout")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of %s, got %q",
			strings.Join(backends, ", "), c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must be >= 0")
	}
	return nil
}

// LogLevel returns the parsed log level, or info if it is invalid.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// TreeOptions converts the layout fields to tree options.
func (c Config) TreeOptions(logger *log.Logger) (tree.Options, error) {
	ws, err := tree.ParseLayout(c.WorkspaceLayout)
	if err != nil {
		return tree.Options{}, err
	}
	mon, err := tree.ParseLayout(c.MonitorLayout)
	if err != nil {
		return tree.Options{}, err
	}
	return tree.Options{
		Gap:             c.Gap,
		WorkspaceLayout: ws,
		MonitorLayout:   mon,
		Logger:          logger,
	}, nil
}

// ManagerOptions converts the configuration to forge manager options.
func (c Config) ManagerOptions(logger *log.Logger) (forge.Options, error) {
	topts, err := c.TreeOptions(logger)
	if err != nil {
		return forge.Options{}, err
	}
	return forge.Options{
		Tree:         topts,
		FloatClasses: slices.Clone(c.FloatClasses),
		Logger:       logger,
	}, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
