package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile      = flag.String("log-file", "", "Also write logs to this file")
	flagFlat         = flag.Bool("flat", false, "Emit one normal per face instead of smoothing")
	flagModelNormals = flag.Bool("model-normals", false, "Use normals stored in the model file")
	flagNoMaterials  = flag.Bool("no-materials", false, "Treat every face as opaque")
	flagWorkers      = flag.Int("workers", -1, "Goroutines for vertex smoothing (0 = all CPUs, 1 = sequential)")
	flagLegacyBounds = flag.Bool("legacy-bounds", false, "Transform only the min and max box corners")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFlat {
		cfg.Render.SmoothShading = false
	}
	if *flagModelNormals {
		cfg.Render.PreferModelNormals = true
	}
	if *flagNoMaterials {
		cfg.Render.UseMaterialTransparency = false
	}
	if *flagWorkers >= 0 {
		cfg.Normals.Workers = *flagWorkers
	}
	if *flagLegacyBounds {
		cfg.Bounds.LegacyCornerTransform = true
	}
}
