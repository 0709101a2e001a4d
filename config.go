package codex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/codingconcepts/env"
	"gopkg.in/ini.v1"
)

const (
	// ServiceSection is the reserved section holding the active service pointer.
	ServiceSection = "service"
	// ServiceKey is the key inside ServiceSection naming the active section.
	ServiceKey = "service"
	// ConfigFileName is the file looked up under the config directory.
	ConfigFileName = "zsh_codex.ini"
)

// Environment holds the process environment consulted by zsh-codex.
type Environment struct {
	ConfigPath    string `env:"ZSH_CODEX_CONFIG"`
	Service       string `env:"ZSH_CODEX_SERVICE"`
	Verbose       bool   `env:"ZSH_CODEX_VERBOSE"`
	Transcript    string `env:"ZSH_CODEX_TRANSCRIPT"`
	XDGConfigHome string `env:"XDG_CONFIG_HOME"`
	XDGCacheHome  string `env:"XDG_CACHE_HOME"`
}

// LoadEnvironment reads Environment from the process environment.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Set(&e); err != nil {
		return Environment{}, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// ConfigDir returns the directory holding zsh_codex.ini.
// Resolution order: $XDG_CONFIG_HOME > ~/.config
func (e Environment) ConfigDir() string {
	if e.XDGConfigHome != "" {
		return e.XDGConfigHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "zsh-codex-config")
	}
	return filepath.Join(home, ".config")
}

// ResolveConfigPath returns the config file path.
// Priority: $ZSH_CODEX_CONFIG env > flag value > ConfigDir()/zsh_codex.ini.
func (e Environment) ResolveConfigPath(flagPath string) string {
	if e.ConfigPath != "" {
		return e.ConfigPath
	}
	if flagPath != "" {
		return flagPath
	}
	return filepath.Join(e.ConfigDir(), ConfigFileName)
}

// ResolveService returns the service section override, if any.
// Priority: $ZSH_CODEX_SERVICE env > flag value.
func (e Environment) ResolveService(flagService string) string {
	if e.Service != "" {
		return e.Service
	}
	return flagService
}

// CacheDir returns the directory for cached completions.
// Resolution order: $XDG_CACHE_HOME/zsh_codex > ~/.cache/zsh_codex
func (e Environment) CacheDir() string {
	if e.XDGCacheHome != "" {
		return filepath.Join(e.XDGCacheHome, "zsh_codex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "zsh-codex-cache")
	}
	return filepath.Join(home, ".cache", "zsh_codex")
}

// Config is the option mapping of the active service section.
type Config struct {
	// Path is the file the configuration was read from.
	Path string
	// Service is the name of the active section.
	Service string
	// Options maps option names to values. Keys are lower case.
	Options map[string]string
}

// NewConfig builds a Config from an in-memory option mapping.
func NewConfig(service string, options map[string]string) *Config {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(k)] = v
	}
	return &Config{Service: service, Options: opts}
}

// LoadConfig reads the INI file at path and returns the options of the active
// section. The active section is named by [service] service, unless service
// is non-empty, in which case it names the section directly.
func LoadConfig(path, service string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Path: path, Err: ErrConfigNotFound}
		}
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	if service == "" {
		sec, err := f.GetSection(ServiceSection)
		if err != nil {
			return nil, &ConfigurationError{Path: path, Section: ServiceSection, Err: errors.New("section is missing")}
		}
		if !sec.HasKey(ServiceKey) {
			return nil, &ConfigurationError{Path: path, Section: ServiceSection, Key: ServiceKey, Err: errors.New("key is missing")}
		}
		service = strings.TrimSpace(sec.Key(ServiceKey).String())
		if service == "" {
			return nil, &ConfigurationError{Path: path, Section: ServiceSection, Key: ServiceKey, Err: errors.New("value is empty")}
		}
	}

	sec, err := f.GetSection(service)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Section: service, Err: errors.New("active section is missing")}
	}

	// DEFAULT values apply to every section, active keys win.
	opts := make(map[string]string)
	for k, v := range f.Section(ini.DefaultSection).KeysHash() {
		opts[k] = v
	}
	for k, v := range sec.KeysHash() {
		opts[k] = v
	}

	return &Config{Path: path, Service: service, Options: opts}, nil
}

// Get returns the option value, or def when the option is absent or empty.
func (c *Config) Get(key, def string) string {
	if v := strings.TrimSpace(c.Options[key]); v != "" {
		return v
	}
	return def
}

// Require returns the option value or a ConfigurationError when it is absent or empty.
func (c *Config) Require(key string) (string, error) {
	v := strings.TrimSpace(c.Options[key])
	if v == "" {
		return "", &ConfigurationError{Path: c.Path, Section: c.Service, Key: key, Err: errors.New("required key is missing")}
	}
	return v, nil
}

// Float parses the option as a float, returning def when absent.
func (c *Config) Float(key string, def float64) (float64, error) {
	v := c.Get(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ConfigurationError{Path: c.Path, Section: c.Service, Key: key, Err: err}
	}
	return f, nil
}

// Duration parses the option as a Go duration ("30s", "10m"), returning def when absent.
func (c *Config) Duration(key string, def time.Duration) (time.Duration, error) {
	v := c.Get(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigurationError{Path: c.Path, Section: c.Service, Key: key, Err: err}
	}
	if d < 0 {
		return 0, &ConfigurationError{Path: c.Path, Section: c.Service, Key: key, Err: errors.New("duration must not be negative")}
	}
	return d, nil
}

// APIType returns the normalized api_type option.
func (c *Config) APIType() string {
	return strings.ToLower(c.Get("api_type", ""))
}

// Keys returns the option names in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.Options))
	for k := range c.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
