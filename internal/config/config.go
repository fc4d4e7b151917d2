// Package config loads the atomstore YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/atomstore/internal/atoms"
)

// ErrUnknownBackend is returned for a backend name other than file or sqlite.
var ErrUnknownBackend = errors.New("unknown backend")

const (
	BackendFile   = "file"
	BackendSqlite = "sqlite"
)

// Config is the on-disk configuration. Durations are YAML duration strings
// such as "30s" or "23h".
type Config struct {
	Backend      string `yaml:"backend"`
	SnapshotPath string `yaml:"snapshot_path"`
	SqlitePath   string `yaml:"sqlite_path"`

	// BuildID tags persisted snapshots. Defaults to a fingerprint of the
	// running binary.
	BuildID string `yaml:"build_id"`

	LowMemory bool `yaml:"low_memory"`
	Debug     bool `yaml:"debug"`

	SaveImmediately bool          `yaml:"save_immediately"`
	UpdateSaveDelay time.Duration `yaml:"update_save_delay"`
	PullSaveDelay   time.Duration `yaml:"pull_save_delay"`

	Cooldown  time.Duration            `yaml:"cooldown"`
	Cooldowns map[string]time.Duration `yaml:"cooldowns"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the YAML file at path. Unset fields take their
// defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML document.
func Parse(b []byte) (*Config, error) {
	// Unknown keys are rejected so a misspelled option is not silently dropped.
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "atomstore.snapshot"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "atomstore.db"
	}
	if c.BuildID == "" {
		c.BuildID = BuildFingerprint()
	}
	if c.UpdateSaveDelay == 0 {
		c.UpdateSaveDelay = 30 * time.Second
	}
	if c.PullSaveDelay == 0 {
		c.PullSaveDelay = 500 * time.Millisecond
	}
	if c.Cooldown == 0 {
		c.Cooldown = 23 * time.Hour
		if c.Debug {
			c.Cooldown = 10 * time.Second
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSqlite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.UpdateSaveDelay < 0 || c.PullSaveDelay < 0 {
		return errors.New("save delays must not be negative")
	}
	if c.Cooldown < 0 {
		return errors.New("cooldown must not be negative")
	}
	if _, err := c.KindCooldowns(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// KindCooldowns resolves the per-kind cooldown overrides.
func (c *Config) KindCooldowns() (map[atoms.Kind]time.Duration, error) {
	out := make(map[atoms.Kind]time.Duration, len(c.Cooldowns))
	for name, d := range c.Cooldowns {
		k, err := atoms.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("cooldowns: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("cooldowns: %s: must not be negative", name)
		}
		out[k] = d
	}
	return out, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Profile returns the capacity profile selected by LowMemory.
func (c *Config) Profile() atoms.Profile {
	return atoms.Profile{LowMemory: c.LowMemory}
}

// BuildFingerprint identifies the running binary by module version and VCS
// revision. Snapshots written by another build are discarded on load.
func BuildFingerprint() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	parts := []string{info.Main.Path, info.Main.Version}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified":
			parts = append(parts, s.Value)
		}
	}
	return strings.Join(parts, "@")
}
