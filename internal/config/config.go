// Package config loads sonika's runtime configuration.
//
// Values are resolved in layers: built-in defaults, an optional TOML or YAML
// configuration file, environment variables (optionally seeded from a .env
// file), and finally command-line flags applied by the caller.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default values. These reproduce the historical behavior of the server: a
// fixed loopback address and directories relative to the working directory.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultStaticDir       = "static"
	DefaultTunesDir        = "tunes"
	DefaultIndexFile       = "index.html"
	DefaultExtension       = "mp3"
	DefaultShutdownTimeout = 5 * time.Second
)

// EnvPrefix is the prefix shared by all environment variable overrides.
const EnvPrefix = "SONIKA_"

// Environment variable names.
const (
	EnvAddr            = EnvPrefix + "ADDR"
	EnvStaticDir       = EnvPrefix + "STATIC_DIR"
	EnvTunesDir        = EnvPrefix + "TUNES_DIR"
	EnvIndexFile       = EnvPrefix + "INDEX_FILE"
	EnvExtension       = EnvPrefix + "EXTENSION"
	EnvStaticListing   = EnvPrefix + "STATIC_LISTING"
	EnvCORSOrigins     = EnvPrefix + "CORS_ORIGINS"
	EnvMaxConnections  = EnvPrefix + "MAX_CONNECTIONS"
	EnvShutdownTimeout = EnvPrefix + "SHUTDOWN_TIMEOUT"
	EnvDebug           = EnvPrefix + "DEBUG"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP address the server listens on.
	Addr string `toml:"addr" yaml:"addr"`
	// StaticDir is the root of the static asset tree and holds the home page.
	StaticDir string `toml:"static_dir" yaml:"static_dir"`
	// TunesDir is the directory scanned for tunes.
	TunesDir string `toml:"tunes_dir" yaml:"tunes_dir"`
	// IndexFile is the home page file name inside StaticDir.
	IndexFile string `toml:"index_file" yaml:"index_file"`
	// Extension is the tune file extension, without the leading dot. Matching
	// is case-sensitive.
	Extension string `toml:"extension" yaml:"extension"`
	// StaticListing enables directory listings under /static/.
	StaticListing bool `toml:"static_listing" yaml:"static_listing"`
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string `toml:"cors_origins" yaml:"cors_origins"`
	// MaxConnections caps simultaneous connections. Zero means unlimited.
	MaxConnections int `toml:"max_connections" yaml:"max_connections"`
	// ShutdownTimeout bounds the graceful shutdown drain.
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	// Debug enables debug logging.
	Debug bool `toml:"debug" yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		StaticDir:       DefaultStaticDir,
		TunesDir:        DefaultTunesDir,
		IndexFile:       DefaultIndexFile,
		Extension:       DefaultExtension,
		StaticListing:   true,
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
	}
}

// IndexPath returns the path of the home page file.
func (c *Config) IndexPath() string {
	return filepath.Join(c.StaticDir, c.IndexFile)
}

// Load builds a configuration from the defaults, the file at path (if path is
// non-empty), and the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile merges the configuration file at path into c. The format is
// selected by extension: .toml, .yaml or .yml.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "unable to read configuration file")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), c)
		if err != nil {
			return errors.Wrapf(err, "unable to parse %s", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return errors.Errorf("unknown configuration key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(c); err != nil {
			return errors.Wrapf(err, "unable to parse %s", path)
		}
	default:
		return errors.Errorf("unsupported configuration file format: %q", ext)
	}

	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "unable to load %s", path)
	}
	return nil
}

// ApplyEnvironment overrides fields from SONIKA_* variables found through
// lookup.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvAddr:      &c.Addr,
		EnvStaticDir: &c.StaticDir,
		EnvTunesDir:  &c.TunesDir,
		EnvIndexFile: &c.IndexFile,
		EnvExtension: &c.Extension,
	}
	for name, field := range strs {
		if value, ok := lookup(name); ok {
			*field = value
		}
	}

	bools := map[string]*bool{
		EnvStaticListing: &c.StaticListing,
		EnvDebug:         &c.Debug,
	}
	for name, field := range bools {
		if value, ok := lookup(name); ok {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return errors.Wrapf(err, "invalid value for %s", name)
			}
			*field = parsed
		}
	}

	if value, ok := lookup(EnvMaxConnections); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid value for %s", EnvMaxConnections)
		}
		c.MaxConnections = parsed
	}

	if value, ok := lookup(EnvShutdownTimeout); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid value for %s", EnvShutdownTimeout)
		}
		c.ShutdownTimeout = Duration(parsed)
	}

	if value, ok := lookup(EnvCORSOrigins); ok {
		c.CORSOrigins = splitList(value)
	}

	return nil
}

// splitList splits a comma-separated list, dropping empty elements.
func splitList(value string) []string {
	var result []string
	for _, element := range strings.Split(value, ",") {
		if element = strings.TrimSpace(element); element != "" {
			result = append(result, element)
		}
	}
	return result
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("empty listen address")
	}
	if c.StaticDir == "" {
		return errors.New("empty static directory")
	}
	if c.TunesDir == "" {
		return errors.New("empty tunes directory")
	}
	if c.IndexFile == "" || strings.ContainsAny(c.IndexFile, `/\`) {
		return errors.Errorf("invalid index file name: %q", c.IndexFile)
	}
	if c.Extension == "" || strings.ContainsAny(c.Extension, `./\`) {
		return errors.Errorf("invalid tune extension: %q", c.Extension)
	}
	if c.MaxConnections < 0 {
		return errors.Errorf("negative connection limit: %d", c.MaxConnections)
	}
	if c.ShutdownTimeout < 0 {
		return errors.Errorf("negative shutdown timeout: %s", c.ShutdownTimeout)
	}
	return nil
}
