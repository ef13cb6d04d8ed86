package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/export"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"seconds", "2s", 2 * time.Second, false},
		{"invalid", "soon", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration{250 * time.Millisecond}.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "250ms", string(text))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Format.Indent)
	assert.Equal(t, export.JSON, cfg.Export.Format)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.True(t, cfg.Serve.Watch)

	_, ok := cfg.Lookup("indent")
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[log]
level = "debug"

[format]
align_rows = true

[export]
format = "YAML"

[serve]
port = 9000
watch = false
debounce = "250ms"
`))
	assert.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Format.Indent)
	assert.True(t, cfg.Format.AlignRows)
	assert.Equal(t, export.YAML, cfg.Export.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.False(t, cfg.Serve.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Serve.Debounce.Duration)

	tests := []struct {
		flag  string
		value string
		ok    bool
	}{
		{"log-level", "debug", true},
		{"align", "true", true},
		{"format", "yaml", true},
		{"port", "9000", true},
		{"watch", "false", true},
		{"debounce", "250ms", true},
		{"indent", "", false},
		{"host", "", false},
		{"read-only", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			value, ok := cfg.Lookup(tt.flag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"syntax", "[log\n", "failed to parse config"},
		{"unknown key", "[format]\nwidth = 3\n", "unknown config keys: format.width"},
		{"bad export format", "[export]\nformat = \"xml\"\n", `unknown export format "xml"`},
		{"bad level", "[log]\nlevel = \"loud\"\n", `log.level must be one of debug, info, warn, error, got "loud"`},
		{"negative indent", "[format]\nindent = -1\n", "format.indent must not be negative"},
		{"port range", "[serve]\nport = 70000\n", "serve.port must be between 0 and 65535"},
		{"bad duration", "[serve]\ndebounce = \"soon\"\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "macra.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[format]\nindent = 4\n"), 0o644))

	t.Setenv("MACRA_TEST_DIR", dir)
	cfg, err := Load("$MACRA_TEST_DIR/macra.toml")
	assert.NoError(t, err)
	assert.Equal(t, 4, cfg.Format.Indent)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, os.WriteFile(path, []byte("[format]\nindent = -2\n"), 0o644))
	_, err = Load(path)
	assert.Contains(t, err.Error(), path+": format.indent")
}

func TestPaths(t *testing.T) {
	t.Run("EnvVarFirst", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.toml")
		t.Setenv(EnvVar, path)

		paths := Paths()
		assert.Equal(t, path, paths[0])
		assert.Equal(t, "macra.toml", paths[1])
	})

	t.Run("WithoutEnvVar", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		assert.Equal(t, "macra.toml", Paths()[0])
	})
}
