// Package config defines all configuration structures for protein-refinary.
// No I/O or parsing logic lives in this file, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds tunables for the HTTP status surface.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// EvolutionConfig holds the generation-loop parameters.
type EvolutionConfig struct {
	// VariantsPerGeneration is the number of candidate sequences scored in
	// each generation.
	VariantsPerGeneration int `mapstructure:"variants_per_generation"`

	// Generations is the number of rounds to run.  There is no early-stop
	// criterion; the loop always runs the full count.
	Generations int `mapstructure:"generations"`

	// MutationRate is the fraction of positions mutated by the local
	// fallback mutator.
	MutationRate float64 `mapstructure:"mutation_rate"`

	// Parallelism bounds concurrent variant processing within one
	// generation.  1 (the default) preserves strictly sequential scoring.
	Parallelism int `mapstructure:"parallelism"`

	// Seed initialises the fallback mutator's RNG.  0 means derive from
	// the wall clock.
	Seed int64 `mapstructure:"seed"`

	// OutputDir is the root under which each session writes its
	// per-generation best structures.
	OutputDir string `mapstructure:"output_dir"`

	// TempRoot is the root for engine scratch directories.
	TempRoot string `mapstructure:"temp_root"`

	// AutoView opens each generation's best structure in the external
	// viewer when one is available.
	AutoView bool `mapstructure:"auto_view"`
}

// DesignConfig holds parameters for the remote sequence-design service.
type DesignConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Chain        string        `mapstructure:"chain"`
	SamplingTemp string        `mapstructure:"sampling_temp"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// FoldConfig holds parameters for the remote structure-prediction service.
type FoldConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LigandConfig holds parameters for SMILES-to-structure resolution.
type LigandConfig struct {
	CactusBaseURL  string        `mapstructure:"cactus_base_url"`
	PubChemBaseURL string        `mapstructure:"pubchem_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// VinaConfig holds docking-engine invocation parameters.
type VinaConfig struct {
	// BinPath is the engine binary.  When the file does not exist the
	// adapter also probes the working directory and server/bin/.
	BinPath        string  `mapstructure:"bin_path"`
	Exhaustiveness int     `mapstructure:"exhaustiveness"`
	CPU            int     `mapstructure:"cpu"`
	SizeX          float64 `mapstructure:"size_x"`
	SizeY          float64 `mapstructure:"size_y"`
	SizeZ          float64 `mapstructure:"size_z"`
}

// FoldXConfig holds stability-engine invocation parameters.
type FoldXConfig struct {
	BinPath string `mapstructure:"bin_path"`

	// RotabasePath overrides rotamer-library discovery.  Empty means
	// search next to the binary, then the working directory.
	RotabasePath string `mapstructure:"rotabase_path"`
}

// RedisConfig holds the optional fold-cache connection parameters.
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// MinIOConfig holds the optional object-store archival parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// HistoryConfig holds run-history store parameters.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ViewerConfig holds external molecular-viewer parameters.
type ViewerConfig struct {
	// BinPath overrides viewer discovery.  Empty means probe the known
	// install locations and then $PATH.
	BinPath string `mapstructure:"bin_path"`
}

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Evolution EvolutionConfig `mapstructure:"evolution"`
	Design    DesignConfig    `mapstructure:"design"`
	Fold      FoldConfig      `mapstructure:"fold"`
	Ligand    LigandConfig    `mapstructure:"ligand"`
	Vina      VinaConfig      `mapstructure:"vina"`
	FoldX     FoldXConfig     `mapstructure:"foldx"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	History   HistoryConfig   `mapstructure:"history"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; any error is fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Evolution.VariantsPerGeneration < 1 {
		return fmt.Errorf("config: evolution.variants_per_generation must be ≥ 1, got %d", c.Evolution.VariantsPerGeneration)
	}
	if c.Evolution.Generations < 1 {
		return fmt.Errorf("config: evolution.generations must be ≥ 1, got %d", c.Evolution.Generations)
	}
	if c.Evolution.MutationRate <= 0 || c.Evolution.MutationRate > 1 {
		return fmt.Errorf("config: evolution.mutation_rate %.3f is out of range (0, 1]", c.Evolution.MutationRate)
	}
	if c.Evolution.Parallelism < 1 {
		return fmt.Errorf("config: evolution.parallelism must be ≥ 1, got %d", c.Evolution.Parallelism)
	}
	if c.Evolution.OutputDir == "" {
		return fmt.Errorf("config: evolution.output_dir is required")
	}
	if c.Evolution.TempRoot == "" {
		return fmt.Errorf("config: evolution.temp_root is required")
	}

	if c.Fold.BaseURL == "" {
		return fmt.Errorf("config: fold.base_url is required")
	}
	if c.Design.BaseURL == "" {
		return fmt.Errorf("config: design.base_url is required")
	}

	if c.Vina.Exhaustiveness < 1 {
		return fmt.Errorf("config: vina.exhaustiveness must be ≥ 1, got %d", c.Vina.Exhaustiveness)
	}
	if c.Vina.CPU < 1 {
		return fmt.Errorf("config: vina.cpu must be ≥ 1, got %d", c.Vina.CPU)
	}
	if c.Vina.SizeX <= 0 || c.Vina.SizeY <= 0 || c.Vina.SizeZ <= 0 {
		return fmt.Errorf("config: vina box size must be positive on every axis")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio.enabled is true")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio.enabled is true")
		}
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("config: history.path is required when history.enabled is true")
	}

	return nil
}
