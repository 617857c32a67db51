// Package config provides configuration loading, defaults, and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "REFINARY"

// newViper builds a pre-configured Viper instance: YAML file type, REFINARY_
// env prefix, automatic env binding, and a key replacer mapping "." → "_"
// so that nested keys like "fold.base_url" resolve to
// "REFINARY_FOLD_BASE_URL".
// settingKeys lists every configuration key.  Viper's Unmarshal only sees
// environment-variable values for keys it already knows about, so each key
// is bound explicitly here.
var settingKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"evolution.variants_per_generation", "evolution.generations", "evolution.mutation_rate",
	"evolution.parallelism", "evolution.seed", "evolution.output_dir", "evolution.temp_root",
	"evolution.auto_view",
	"design.base_url", "design.chain", "design.sampling_temp", "design.timeout",
	"fold.base_url", "fold.timeout",
	"ligand.cactus_base_url", "ligand.pubchem_base_url", "ligand.timeout",
	"vina.bin_path", "vina.exhaustiveness", "vina.cpu", "vina.size_x", "vina.size_y", "vina.size_z",
	"foldx.bin_path", "foldx.rotabase_path",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.key_prefix", "redis.ttl",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
	"history.enabled", "history.path",
	"viewer.bin_path",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges REFINARY_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from REFINARY_* environment variables
// and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
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

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Only safe-to-reload settings
// (log level, timeouts) should be applied at runtime; callers own that
// filtering.  If a changed file fails to parse or validate, onChange is not
// called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on any error.  Intended for main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
