package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of every MEISAI_* environment override.
const envPrefix = "MEISAI"

// DotEnvFile is the file merged into the process environment before loading.
const DotEnvFile = ".env"

// configKeys lists every leaf key so that AutomaticEnv overrides reach
// Unmarshal even when no config file mentions the key.
var configKeys = []string{
	"llm.api_key", "llm.base_url", "llm.model", "llm.timeout",
	"guidelines.dir",
	"output.dir",
	"log.level", "log.format", "log.output_paths",
	"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.max_upload_bytes", "server.upload_dir",
	"metrics.enabled", "metrics.namespace",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key",
	"minio.use_ssl", "minio.region", "minio.bucket",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.key_prefix", "redis.ttl",
	"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.write_timeout",
}

// legacyEnv maps keys to the un-prefixed variable names that existing
// deployments already export.  The MEISAI_* name wins when both are set.
var legacyEnv = map[string]string{
	"llm.api_key":    "OPENAI_API_KEY",
	"llm.base_url":   "OPENAI_BASE_URL",
	"llm.model":      "OPENAI_MODEL",
	"guidelines.dir": "GUIDELINES_DIR",
}

// newViper builds a Viper instance with YAML file type, the MEISAI_ env
// prefix, "." → "_" key replacement and every known key bound.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range configKeys {
		if legacy, ok := legacyEnv[key]; ok {
			prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			_ = v.BindEnv(key, prefixed, legacy)
			continue
		}
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath (skipped when empty), merges
// environment overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from environment variables and defaults only.
//
//	MEISAI_<SECTION>_<FIELD>   e.g.  MEISAI_LLM_MODEL, MEISAI_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// LoadDotEnv merges KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone.  A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: failed to stat %q: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to parse %q: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("config: failed to export %s: %w", name, err)
		}
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and passes the new
// Config to onChange.  Changes that fail to parse or validate are reported to
// onError (when non-nil) and onChange is not called.  Watch returns at once;
// viper runs the fsnotify loop in the background.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error.  Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
