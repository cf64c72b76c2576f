package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/vfs"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(vfs.NewMemFS(), "/nope.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load(vfs.NewMemFS(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_TOML(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/docshell.toml", `
[logging]
level = "debug"

[session]
max_file_size = 1024
confirm_close = "discard"

[[backends]]
name = "json"
patterns = ["**/*.jsonc"]
format = true
sort_keys = true

[[backends]]
name = "text"
lua = "return ext == '.conf'"
readonly_patterns = ["/etc/**"]
`))

	cfg, err := Load(fs, "/docshell.toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(1024), cfg.Session.MaxFileSize)
	assert.Equal(t, editor.CloseDiscard, cfg.Session.ConfirmChoice())
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Session.WatchDelayMS)

	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, BackendJSON, cfg.Backends[0].Name)
	assert.True(t, cfg.Backends[0].Format)
	assert.True(t, cfg.Backends[0].SortKeys)
	assert.Equal(t, []string{"/etc/**"}, cfg.Backends[1].ReadOnlyPatterns)
}

func TestLoad_YAML(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/docshell.yaml", `
session:
  watch: false
  queue_size: 16
metrics:
  enabled: true
  addr: ":9000"
backends:
  - name: gzip
    extensions: [".gz"]
    level: 9
`))

	cfg, err := Load(fs, "/docshell.yaml")
	require.NoError(t, err)

	assert.False(t, cfg.Session.Watch)
	assert.Equal(t, 16, cfg.Session.QueueSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9000", cfg.Metrics.Addr)
	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, 9, cfg.Backends[0].Level)
}

func TestLoad_UnknownFormat(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/docshell.ini", "x=1"))

	_, err := Load(fs, "/docshell.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_ParseError(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/docshell.toml", "[logging\nlevel="))

	_, err := Load(fs, "/docshell.toml")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "/docshell.toml", perr.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCSHELL_LOGGING_LEVEL", "warn")
	t.Setenv("DOCSHELL_SESSION_MAX_FILE_SIZE", "2048")
	t.Setenv("DOCSHELL_SESSION_CONFIRM_CLOSE", "save")

	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/docshell.toml", "[logging]\nlevel = \"debug\"\n"))

	cfg, err := Load(fs, "/docshell.toml")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, int64(2048), cfg.Session.MaxFileSize)
	assert.Equal(t, editor.CloseSave, cfg.Session.ConfirmChoice())
}

func TestLoad_EnvInvalidValue(t *testing.T) {
	t.Setenv("DOCSHELL_SESSION_QUEUE_SIZE", "lots")

	_, err := Load(vfs.NewMemFS(), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative size", func(c *Config) { c.Session.MaxFileSize = -1 }, "session.max_file_size"},
		{"negative delay", func(c *Config) { c.Session.WatchDelayMS = -5 }, "session.watch_delay_ms"},
		{"bad confirm", func(c *Config) { c.Session.ConfirmClose = "maybe" }, "session.confirm_close"},
		{"metrics without addr", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Addr = ""
		}, "metrics.addr"},
		{"unknown backend", func(c *Config) {
			c.Backends = []BackendRule{{Name: "hex", Extensions: []string{".bin"}}}
		}, "backends[0].name"},
		{"no matcher", func(c *Config) {
			c.Backends = []BackendRule{{Name: BackendText}}
		}, "backends[0]"},
		{"bad glob", func(c *Config) {
			c.Backends = []BackendRule{{Name: BackendText, Patterns: []string{"[a-"}}}
		}, "backends[0].patterns"},
		{"bad readonly glob", func(c *Config) {
			c.Backends = []BackendRule{{Name: BackendText, Extensions: []string{".x"}, ReadOnlyPatterns: []string{"{a"}}}
		}, "backends[0].readonly_patterns"},
		{"bad lua", func(c *Config) {
			c.Backends = []BackendRule{{Name: BackendText, Lua: "return ("}}
		}, "backends[0].lua"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	cfg.Session.MaxFileSize = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "session.max_file_size")
}
