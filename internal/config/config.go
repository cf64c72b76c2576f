package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/logging"
	"github.com/dshills/docshell/internal/vfs"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "DOCSHELL"

// Backend names accepted in rules.
const (
	BackendText = "text"
	BackendJSON = "json"
	BackendGzip = "gzip"
)

// Config is the complete docshell configuration.
type Config struct {
	Logging  LoggingConfig `toml:"logging" yaml:"logging" envconfig:"LOGGING"`
	Session  SessionConfig `toml:"session" yaml:"session" envconfig:"SESSION"`
	Metrics  MetricsConfig `toml:"metrics" yaml:"metrics" envconfig:"METRICS"`
	Backends []BackendRule `toml:"backends" yaml:"backends" ignored:"true"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string   `toml:"level" yaml:"level" envconfig:"LEVEL"`
	Development bool     `toml:"development" yaml:"development" envconfig:"DEVELOPMENT"`
	OutputPaths []string `toml:"output_paths" yaml:"output_paths" envconfig:"OUTPUT_PATHS"`
}

// SessionConfig configures the document session.
type SessionConfig struct {
	// MaxFileSize is the largest file backends load, in bytes. Zero disables the limit.
	MaxFileSize int64 `toml:"max_file_size" yaml:"max_file_size" envconfig:"MAX_FILE_SIZE"`

	// Watch enables reloading documents changed on disk.
	Watch bool `toml:"watch" yaml:"watch" envconfig:"WATCH"`

	// WatchDelayMS is the coalescing window for disk changes.
	WatchDelayMS int `toml:"watch_delay_ms" yaml:"watch_delay_ms" envconfig:"WATCH_DELAY_MS"`

	// ConfirmClose answers the save-before-close prompt when no
	// interactive prompt is available: "save", "discard" or "cancel".
	ConfirmClose string `toml:"confirm_close" yaml:"confirm_close" envconfig:"CONFIRM_CLOSE"`

	// QueueSize is the capacity of the event loop queue.
	QueueSize int `toml:"queue_size" yaml:"queue_size" envconfig:"QUEUE_SIZE"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" envconfig:"ENABLED"`
	Addr    string `toml:"addr" yaml:"addr" envconfig:"ADDR"`
}

// BackendRule binds a set of matchers to an editor backend. Any matcher
// that accepts a path selects the rule; rules are tried in file order.
type BackendRule struct {
	Name       string   `toml:"name" yaml:"name"`
	Patterns   []string `toml:"patterns" yaml:"patterns"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
	MIME       []string `toml:"mime" yaml:"mime"`
	Lua        string   `toml:"lua" yaml:"lua"`

	// ReadOnlyPatterns open matching files read-only.
	ReadOnlyPatterns []string `toml:"readonly_patterns" yaml:"readonly_patterns"`

	// JSON formatting.
	Format   bool   `toml:"format" yaml:"format"`
	Indent   string `toml:"indent" yaml:"indent"`
	SortKeys bool   `toml:"sort_keys" yaml:"sort_keys"`

	// Gzip compression level.
	Level int `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:       "info",
			OutputPaths: []string{"stderr"},
		},
		Session: SessionConfig{
			MaxFileSize:  16 << 20,
			Watch:        true,
			WatchDelayMS: 100,
			ConfirmClose: "cancel",
			QueueSize:    256,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
		Backends: []BackendRule{
			{Name: BackendJSON, Extensions: []string{".json"}},
			{Name: BackendGzip, Extensions: []string{".gz"}},
		},
	}
}

// Load reads path from fsys over the defaults, applies environment
// overrides and validates the result. An empty path or a missing file
// leaves the defaults in place.
func Load(fsys vfs.VFS, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(fsys, path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(fsys vfs.VFS, path string, cfg *Config) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Rules in the file replace the built-in ones rather than extend them.
	defaults := cfg.Backends
	cfg.Backends = nil

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	if cfg.Backends == nil {
		cfg.Backends = defaults
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "unknown level", c.Logging.Level)
	}

	if c.Session.MaxFileSize < 0 {
		add("session.max_file_size", "must not be negative", c.Session.MaxFileSize)
	}
	if c.Session.WatchDelayMS < 0 {
		add("session.watch_delay_ms", "must not be negative", c.Session.WatchDelayMS)
	}
	switch c.Session.ConfirmClose {
	case "", "save", "discard", "cancel":
	default:
		add("session.confirm_close", `must be "save", "discard" or "cancel"`, c.Session.ConfirmClose)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		add("metrics.addr", "required when metrics are enabled", nil)
	}

	for i, rule := range c.Backends {
		prefix := fmt.Sprintf("backends[%d]", i)
		switch rule.Name {
		case BackendText, BackendJSON, BackendGzip:
		default:
			add(prefix+".name", "unknown backend", rule.Name)
		}
		if len(rule.Patterns)+len(rule.Extensions)+len(rule.MIME) == 0 && rule.Lua == "" {
			add(prefix, "needs at least one of patterns, extensions, mime or lua", nil)
		}
		for _, p := range rule.Patterns {
			if !doublestar.ValidatePattern(p) {
				add(prefix+".patterns", "invalid glob", p)
			}
		}
		for _, p := range rule.ReadOnlyPatterns {
			if !doublestar.ValidatePattern(p) {
				add(prefix+".readonly_patterns", "invalid glob", p)
			}
		}
		if rule.Lua != "" {
			if _, err := editor.CompileLua(rule.Lua); err != nil {
				add(prefix+".lua", err.Error(), nil)
			}
		}
	}

	return errors.Join(errs...)
}

// ConfirmChoice returns the configured close answer.
func (c SessionConfig) ConfirmChoice() editor.CloseChoice {
	return editor.ParseCloseChoice(c.ConfirmClose)
}
