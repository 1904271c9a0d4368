package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
llm:
  model: "gpt-4o"
  timeout: 30s
guidelines:
  dir: "./refs"
output:
  dir: "./out"
log:
  level: "debug"
  format: "json"
server:
  port: 9090
  mode: "debug"
redis:
  enabled: true
  addr: "redis:6379"
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`

// clearEnv blanks every variable the loader reads so host settings cannot
// leak into assertions.  Viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range legacyEnv {
		t.Setenv(name, "")
	}
	for _, key := range configKeys {
		t.Setenv(envName(key), "")
	}
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, DefaultLLMBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "./refs", cfg.Guidelines.Dir)
	assert.Equal(t, "./out", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(createTempConfigFile(t, "llm: ["))
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	clearEnv(t)
	_, err := Load(createTempConfigFile(t, "server:\n  mode: \"prod\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEISAI_SERVER_PORT", "9999")
	t.Setenv("MEISAI_LLM_MODEL", "gpt-4.1-mini")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
}

func TestLoadFromEnv_LegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("OPENAI_MODEL", "local-model")
	t.Setenv("GUIDELINES_DIR", "/srv/guidelines")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, "/srv/guidelines", cfg.Guidelines.Dir)
	assert.True(t, cfg.LLMEnabled())
}

func TestLoadFromEnv_PrefixedNameWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "legacy")
	t.Setenv("MEISAI_LLM_MODEL", "prefixed")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.LLM.Model)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, cfg.LLM.Model)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	const fresh = "MEISAI_DOTENV_TEST_FRESH"
	const existing = "MEISAI_DOTENV_TEST_EXISTING"
	t.Setenv(existing, "from-env")
	os.Unsetenv(fresh)
	t.Cleanup(func() { os.Unsetenv(fresh) })

	path := filepath.Join(t.TempDir(), ".env")
	content := fresh + "=from-file\n" + existing + "=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(fresh))
	assert.Equal(t, "from-env", os.Getenv(existing))
}

func TestLoadDotEnv_MissingFileIsNoop(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := createTempConfigFile(t, validConfigYAML)

	var mu sync.Mutex
	var got *Config
	require.NoError(t, Watch(path, func(c *Config) {
		mu.Lock()
		got = c
		mu.Unlock()
	}, nil))

	updated := validConfigYAML + "metrics:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Metrics.Enabled
	}, 5*time.Second, 50*time.Millisecond)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	clearEnv(t)
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
