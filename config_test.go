package codex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigActiveSection(t *testing.T) {
	path := writeConfig(t, `[service]
service = openai_test

[openai_test]
api_type = openai
api_key = test_key
model = test_model

[groq_test]
api_type = groq
api_key = other
`)

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "openai_test", cfg.Service)
	assert.Equal(t, "openai", cfg.APIType())
	assert.Equal(t, "test_key", cfg.Options["api_key"])
	assert.Equal(t, "test_model", cfg.Options["model"])
	assert.Len(t, cfg.Options, 3)
}

func TestLoadConfigServiceOverride(t *testing.T) {
	path := writeConfig(t, `[service]
service = openai_test

[openai_test]
api_type = openai

[groq_test]
api_type = groq
`)

	cfg, err := LoadConfig(path, "groq_test")
	require.NoError(t, err)
	assert.Equal(t, "groq_test", cfg.Service)
	assert.Equal(t, "groq", cfg.APIType())
}

func TestLoadConfigOverrideWithoutServiceSection(t *testing.T) {
	path := writeConfig(t, "[mine]\napi_type = mistral\n")

	cfg, err := LoadConfig(path, "mine")
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.APIType())
}

func TestLoadConfigDefaultSectionInherited(t *testing.T) {
	path := writeConfig(t, `[DEFAULT]
temperature = 0.2
model = shared

[service]
service = a

[a]
api_type = openai
model = own
`)

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "0.2", cfg.Options["temperature"])
	assert.Equal(t, "own", cfg.Options["model"])
}

func TestLoadConfigKeysCaseInsensitive(t *testing.T) {
	path := writeConfig(t, "[service]\nSERVICE = a\n\n[a]\nAPI_TYPE = OpenAI\n")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.APIType())
}

func TestLoadConfigValueKeepsHash(t *testing.T) {
	path := writeConfig(t, "[service]\nservice = a\n\n[a]\napi_key = abc #def\n")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "abc #def", cfg.Options["api_key"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.ini")

	_, err := LoadConfig(path, "")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
	assert.Contains(t, err.Error(), path)
}

func TestLoadConfigMissingServiceSection(t *testing.T) {
	path := writeConfig(t, "[openai_test]\napi_type = openai\n")

	_, err := LoadConfig(path, "")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ServiceSection, ce.Section)
	assert.Empty(t, ce.Key)
}

func TestLoadConfigMissingServiceKey(t *testing.T) {
	path := writeConfig(t, "[service]\nother = x\n")

	_, err := LoadConfig(path, "")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ServiceKey, ce.Key)
}

func TestLoadConfigMissingActiveSection(t *testing.T) {
	path := writeConfig(t, "[service]\nservice = ghost\n")

	_, err := LoadConfig(path, "")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ghost", ce.Section)
	assert.Contains(t, err.Error(), "[ghost]")
}

func TestConfigRequire(t *testing.T) {
	cfg := NewConfig("s", map[string]string{"API_KEY": "k", "blank": "  "})

	v, err := cfg.Require("api_key")
	require.NoError(t, err)
	assert.Equal(t, "k", v)

	_, err = cfg.Require("blank")
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "blank", ce.Key)
	assert.Equal(t, "s", ce.Section)

	_, err = cfg.Require("model")
	assert.True(t, IsConfigurationError(err))
}

func TestConfigFloat(t *testing.T) {
	cfg := NewConfig("s", map[string]string{"temperature": "0.5", "bad": "warm"})

	f, err := cfg.Float("temperature", 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-9)

	f, err = cfg.Float("missing", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 1e-9)

	_, err = cfg.Float("bad", 1)
	assert.True(t, IsConfigurationError(err))
}

func TestConfigDuration(t *testing.T) {
	cfg := NewConfig("s", map[string]string{"cache_ttl": "10m", "neg": "-1s", "bad": "soon"})

	d, err := cfg.Duration("cache_ttl", 0)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, d)

	d, err = cfg.Duration("timeout", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	_, err = cfg.Duration("neg", 0)
	assert.True(t, IsConfigurationError(err))
	_, err = cfg.Duration("bad", 0)
	assert.True(t, IsConfigurationError(err))
}

func TestConfigKeysSorted(t *testing.T) {
	cfg := NewConfig("s", map[string]string{"model": "m", "api_type": "openai", "api_key": "k"})
	assert.Equal(t, []string{"api_key", "api_type", "model"}, cfg.Keys())
}

func TestEnvironmentResolveConfigPath(t *testing.T) {
	e := Environment{XDGConfigHome: "/xdg"}
	assert.Equal(t, "/xdg/zsh_codex.ini", e.ResolveConfigPath(""))
	assert.Equal(t, "/flag.ini", e.ResolveConfigPath("/flag.ini"))

	e.ConfigPath = "/env.ini"
	assert.Equal(t, "/env.ini", e.ResolveConfigPath("/flag.ini"))
}

func TestEnvironmentResolveService(t *testing.T) {
	e := Environment{}
	assert.Equal(t, "", e.ResolveService(""))
	assert.Equal(t, "flag", e.ResolveService("flag"))

	e.Service = "env"
	assert.Equal(t, "env", e.ResolveService("flag"))
}

func TestEnvironmentCacheDir(t *testing.T) {
	e := Environment{XDGCacheHome: "/cache"}
	assert.Equal(t, "/cache/zsh_codex", e.CacheDir())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("ZSH_CODEX_CONFIG", "/tmp/x.ini")
	t.Setenv("ZSH_CODEX_SERVICE", "groq_test")
	t.Setenv("ZSH_CODEX_VERBOSE", "true")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	e, err := LoadEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.ini", e.ConfigPath)
	assert.Equal(t, "groq_test", e.Service)
	assert.True(t, e.Verbose)
	assert.Equal(t, "/xdg", e.XDGConfigHome)
}

func TestUnsupportedServiceError(t *testing.T) {
	err := &UnsupportedServiceError{APIType: "cohere", Supported: []string{"groq", "openai"}}
	assert.Equal(t, `unsupported api_type "cohere" (supported: groq, openai)`, err.Error())
	assert.True(t, IsUnsupportedService(err))
	assert.False(t, IsConfigurationError(err))
}
