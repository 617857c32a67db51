package config

import "time"

// Default values applied to unset fields before validation.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultVariantsPerGen  = 5
	DefaultGenerations     = 5
	DefaultMutationRate    = 0.10
	DefaultParallelism     = 1
	DefaultOutputDir       = "outputs"
	DefaultTempRoot        = "temp"
	DefaultDesignBaseURL   = "https://simonduerr-proteinmpnn.hf.space"
	DefaultDesignChain     = "A"
	DefaultSamplingTemp    = "0.1"
	DefaultDesignTimeout   = 60 * time.Second
	DefaultFoldBaseURL     = "https://api.esmatlas.com/foldSequence/v1/pdb/"
	DefaultFoldTimeout     = 120 * time.Second
	DefaultCactusBaseURL   = "https://cactus.nci.nih.gov/chemical/structure"
	DefaultPubChemBaseURL  = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultLigandTimeout   = 15 * time.Second
	DefaultVinaBin         = "bin/vina"
	DefaultExhaustiveness  = 8
	DefaultVinaCPU         = 4
	DefaultBoxEdge         = 20.0
	DefaultFoldXBin        = "bin/foldx"
	DefaultRedisKeyPrefix  = "refinary:fold:"
	DefaultRedisTTL        = 24 * time.Hour
	DefaultHistoryPath     = "refinary.db"
	DefaultServerTimeout   = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// ApplyDefaults fills every unset field of cfg with its default value.
// Explicitly-set values are never overridden.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Evolution.VariantsPerGeneration == 0 {
		cfg.Evolution.VariantsPerGeneration = DefaultVariantsPerGen
	}
	if cfg.Evolution.Generations == 0 {
		cfg.Evolution.Generations = DefaultGenerations
	}
	if cfg.Evolution.MutationRate == 0 {
		cfg.Evolution.MutationRate = DefaultMutationRate
	}
	if cfg.Evolution.Parallelism == 0 {
		cfg.Evolution.Parallelism = DefaultParallelism
	}
	if cfg.Evolution.OutputDir == "" {
		cfg.Evolution.OutputDir = DefaultOutputDir
	}
	if cfg.Evolution.TempRoot == "" {
		cfg.Evolution.TempRoot = DefaultTempRoot
	}

	if cfg.Design.BaseURL == "" {
		cfg.Design.BaseURL = DefaultDesignBaseURL
	}
	if cfg.Design.Chain == "" {
		cfg.Design.Chain = DefaultDesignChain
	}
	if cfg.Design.SamplingTemp == "" {
		cfg.Design.SamplingTemp = DefaultSamplingTemp
	}
	if cfg.Design.Timeout == 0 {
		cfg.Design.Timeout = DefaultDesignTimeout
	}

	if cfg.Fold.BaseURL == "" {
		cfg.Fold.BaseURL = DefaultFoldBaseURL
	}
	if cfg.Fold.Timeout == 0 {
		cfg.Fold.Timeout = DefaultFoldTimeout
	}

	if cfg.Ligand.CactusBaseURL == "" {
		cfg.Ligand.CactusBaseURL = DefaultCactusBaseURL
	}
	if cfg.Ligand.PubChemBaseURL == "" {
		cfg.Ligand.PubChemBaseURL = DefaultPubChemBaseURL
	}
	if cfg.Ligand.Timeout == 0 {
		cfg.Ligand.Timeout = DefaultLigandTimeout
	}

	if cfg.Vina.BinPath == "" {
		cfg.Vina.BinPath = DefaultVinaBin
	}
	if cfg.Vina.Exhaustiveness == 0 {
		cfg.Vina.Exhaustiveness = DefaultExhaustiveness
	}
	if cfg.Vina.CPU == 0 {
		cfg.Vina.CPU = DefaultVinaCPU
	}
	if cfg.Vina.SizeX == 0 {
		cfg.Vina.SizeX = DefaultBoxEdge
	}
	if cfg.Vina.SizeY == 0 {
		cfg.Vina.SizeY = DefaultBoxEdge
	}
	if cfg.Vina.SizeZ == 0 {
		cfg.Vina.SizeZ = DefaultBoxEdge
	}

	if cfg.FoldX.BinPath == "" {
		cfg.FoldX.BinPath = DefaultFoldXBin
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
}
