package calculator

import (
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
	"soilsim/gas"
)

// Config holds the tuning parameters of the solvers. It is passed to constructors.
type Config struct {
	NodesPerLayer    int     // heat grid nodes per soil layer
	ImplicitSteps    int     // time steps per day of the implicit solver
	MaxExplicitSteps int     // ceiling of explicit sub-steps per day
	Workers          int     // executor workers
	Verify           bool    // conservation diagnostics
	Tolerance        float64 // relative tolerance of the diagnostics

	DiffusionStrategy string // explicit | implicit | crank-nicolson
	DiffusionSteps    int    // steps per day of the implicit diffusion strategies
	MaxDiffusionSteps int
	Gas               bool // O2 and CH4 transport

	SnapshotCapacity int // daily snapshots kept per column
	Addr             string
}

func DefaultConfig() Config {
	return Config{
		NodesPerLayer:     2,
		ImplicitSteps:     1,
		MaxExplicitSteps:  1000000,
		Workers:           4,
		Tolerance:         1e-6,
		DiffusionStrategy: "implicit",
		DiffusionSteps:    1,
		MaxDiffusionSteps: 1000000,
		Gas:               true,
		SnapshotCapacity:  32,
		Addr:              ":9000",
	}
}

// LoadConfig reads path. A missing or unreadable file yields the defaults.
func LoadConfig(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		log.WithFields(log.Fields{
			"path": path,
			"err":  err,
		}).Warn("配置文件读取错误, 使用默认配置")
		return DefaultConfig(), err
	}
	return loadCfg(file), nil
}

func loadCfg(file *ini.File) Config {
	d := DefaultConfig()
	cfg := Config{
		NodesPerLayer:     file.Section("calculator").Key("NodesPerLayer").MustInt(d.NodesPerLayer),
		ImplicitSteps:     file.Section("calculator").Key("ImplicitSteps").MustInt(d.ImplicitSteps),
		MaxExplicitSteps:  file.Section("calculator").Key("MaxExplicitSteps").MustInt(d.MaxExplicitSteps),
		Workers:           file.Section("calculator").Key("Workers").MustInt(d.Workers),
		Verify:            file.Section("calculator").Key("Verify").MustBool(d.Verify),
		Tolerance:         file.Section("calculator").Key("Tolerance").MustFloat64(d.Tolerance),
		DiffusionStrategy: file.Section("diffusion").Key("Strategy").In(d.DiffusionStrategy, []string{"explicit", "implicit", "crank-nicolson"}),
		DiffusionSteps:    file.Section("diffusion").Key("Steps").MustInt(d.DiffusionSteps),
		MaxDiffusionSteps: file.Section("diffusion").Key("MaxSteps").MustInt(d.MaxDiffusionSteps),
		Gas:               file.Section("gas").Key("Enabled").MustBool(d.Gas),
		SnapshotCapacity:  file.Section("server").Key("SnapshotCapacity").MustInt(d.SnapshotCapacity),
		Addr:              file.Section("server").Key("Addr").MustString(d.Addr),
	}
	if cfg.NodesPerLayer < 1 {
		cfg.NodesPerLayer = d.NodesPerLayer
	}
	if cfg.ImplicitSteps < 1 {
		cfg.ImplicitSteps = d.ImplicitSteps
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log.WithFields(log.Fields{
		"NodesPerLayer":     cfg.NodesPerLayer,
		"ImplicitSteps":     cfg.ImplicitSteps,
		"MaxExplicitSteps":  cfg.MaxExplicitSteps,
		"Verify":            cfg.Verify,
		"DiffusionStrategy": cfg.DiffusionStrategy,
		"Gas":               cfg.Gas,
	}).Info("加载配置")
	return cfg
}

// GasConfig is the gas engine configuration derived from c.
func (c Config) GasConfig() gas.Config {
	return gas.Config{
		Strategy:  c.DiffusionStrategy,
		Steps:     c.DiffusionSteps,
		MaxSteps:  c.MaxDiffusionSteps,
		Verify:    c.Verify,
		Tolerance: c.Tolerance,
	}
}
