// Package config reads the optional macra.toml file that supplies defaults
// for command line flags.
//
//	[log]
//	level = "info"
//
//	[format]
//	indent = 4
//	align_rows = true
//
//	[export]
//	format = "yaml"
//
//	[serve]
//	host = "127.0.0.1"
//	port = 8080
//	watch = true
//	read_only = false
//	debounce = "100ms"
//
//	[loader]
//	max_size = 1048576
//
// Flags given on the command line always win over file values.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robinvdvleuten/macrascript/export"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "MACRA_CONFIG"

// Config holds the complete configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Format FormatConfig `toml:"format"`
	Export ExportConfig `toml:"export"`
	Serve  ServeConfig  `toml:"serve"`
	Loader LoaderConfig `toml:"loader"`

	// flags holds the flag values of keys present in the file.
	flags map[string]string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// FormatConfig holds formatter settings
type FormatConfig struct {
	Indent    int  `toml:"indent"`
	AlignRows bool `toml:"align_rows"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	Format export.Format `toml:"format"`
}

// ServeConfig holds preview server settings
type ServeConfig struct {
	Host     string   `toml:"host"`
	Port     int      `toml:"port"`
	Watch    bool     `toml:"watch"`
	ReadOnly bool     `toml:"read_only"`
	Debounce Duration `toml:"debounce"`
}

// LoaderConfig holds file loading settings
type LoaderConfig struct {
	MaxSize int64 `toml:"max_size"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "warn"},
		Format: FormatConfig{Indent: 2},
		Export: ExportConfig{Format: export.JSON},
		Serve: ServeConfig{
			Host:     "127.0.0.1",
			Port:     8080,
			Watch:    true,
			Debounce: Duration{100 * time.Millisecond},
		},
		flags: map[string]string{},
	}
}

// keyFlags maps TOML keys to the command line flags they provide defaults
// for.
var keyFlags = map[string]string{
	"log.level":         "log-level",
	"format.indent":     "indent",
	"format.align_rows": "align",
	"export.format":     "format",
	"serve.host":        "host",
	"serve.port":        "port",
	"serve.watch":       "watch",
	"serve.read_only":   "read-only",
	"serve.debounce":    "debounce",
	"loader.max_size":   "max-size",
}

// Decode reads TOML from r on top of the defaults. Unknown keys are an
// error so typos do not go unnoticed.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for key, flag := range keyFlags {
		if md.IsDefined(strings.Split(key, ".")...) {
			cfg.flags[flag] = cfg.value(key)
		}
	}

	return cfg, nil
}

// Load loads configuration from a TOML file. Environment variables in path
// are expanded.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Paths returns the locations searched for a config file, most specific
// first: $MACRA_CONFIG, ./macra.toml and the user config directory.
func Paths() []string {
	var paths []string
	if env := os.Getenv(EnvVar); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, "macra.toml")
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "macra", "config.toml"))
	}
	return paths
}

// Lookup returns the value the file sets for a command line flag. Flags the
// file does not mention report false, so their built-in defaults apply.
func (c *Config) Lookup(flag string) (string, bool) {
	v, ok := c.flags[flag]
	return v, ok
}

// Addr returns the preview server's listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Serve.Host, c.Serve.Port)
}

func (c *Config) value(key string) string {
	switch key {
	case "log.level":
		return c.Log.Level
	case "format.indent":
		return strconv.Itoa(c.Format.Indent)
	case "format.align_rows":
		return strconv.FormatBool(c.Format.AlignRows)
	case "export.format":
		return c.Export.Format.String()
	case "serve.host":
		return c.Serve.Host
	case "serve.port":
		return strconv.Itoa(c.Serve.Port)
	case "serve.watch":
		return strconv.FormatBool(c.Serve.Watch)
	case "serve.read_only":
		return strconv.FormatBool(c.Serve.ReadOnly)
	case "serve.debounce":
		return c.Serve.Debounce.String()
	case "loader.max_size":
		return strconv.FormatInt(c.Loader.MaxSize, 10)
	default:
		return ""
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Format.Indent < 0 {
		return fmt.Errorf("format.indent must not be negative, got %d", c.Format.Indent)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 0 and 65535, got %d", c.Serve.Port)
	}
	if c.Loader.MaxSize < 0 {
		return fmt.Errorf("loader.max_size must not be negative, got %d", c.Loader.MaxSize)
	}
	return nil
}
