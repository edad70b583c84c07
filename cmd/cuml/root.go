package main

import (
	"log/slog"
	"os"

	"cuml/internal/config"
	"cuml/internal/slogutil"
	"cuml/internal/version"

	"github.com/spf13/cobra"
)

var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cuml",
	Short: "cuml - C++ facts to UML model generator",
	Long: `cuml turns type facts extracted from C++ codebases into a UML model,
serialized as XMI with an optional diagram notation file. Relationships are
inferred from field types, declared relations, base lists, and operation
signatures.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cuml version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to a configuration file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: text or json (default: from config)")
}

// loadConfig reads the configured file and layers CLI flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slogutil.NewLogger(os.Stderr,
		slogutil.LevelFromString(cfg.Logging.Level), cfg.Logging.Format)
}
