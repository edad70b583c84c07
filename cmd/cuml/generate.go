package main

import (
	"fmt"
	"os"
	"strings"

	"cuml/internal/builder"
	"cuml/internal/facts"
	"cuml/internal/notation"
	"cuml/internal/profile"
	"cuml/internal/uml"
	"cuml/internal/xmi"

	"github.com/spf13/cobra"
)

var (
	outputFlag   string
	notationFlag string
	projectFlag  string
	profileFlag  string
	strictFlag   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <facts-file>",
	Short: "Generate a UML model from an analyzer facts file",
	Long: `Generate reads a JSON facts file (optionally zstd-compressed, by .zst
suffix), builds the UML model, and writes it as XMI. With --notation a
diagram placement file is written alongside.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "",
		"Output XMI path (default: facts file name with .uml extension)")
	generateCmd.Flags().StringVar(&notationFlag, "notation", "",
		"Also write a diagram notation file at this path")
	generateCmd.Flags().StringVar(&projectFlag, "project", "",
		"Model name (default: from facts file or config)")
	generateCmd.Flags().StringVar(&profileFlag, "profile", "",
		"Path to a YAML type-vocabulary profile")
	generateCmd.Flags().BoolVar(&strictFlag, "strict", false,
		"Only emit associations backed by real fields on both sides")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictMode = strictFlag
	}
	if projectFlag != "" {
		cfg.ProjectName = projectFlag
	}
	if profileFlag != "" {
		cfg.ProfilePath = profileFlag
	}
	logger := newLogger(cfg)

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	factsPath := args[0]
	fs, err := facts.Load(factsPath)
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}
	logger.Info("facts loaded", "path", factsPath, "types", len(fs.Types))

	opts := builder.Options{
		ProjectName:          cfg.ProjectName,
		Strict:               cfg.StrictMode,
		OwnershipAnnotations: cfg.OwnershipAnnotations,
		PlaceholderStubs:     cfg.PlaceholderStubs,
		Profile:              prof,
		Logger:               logger,
	}
	model, diags, err := builder.New(opts).Build(fs)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logger.Info("model built",
		"elements", len(model.Elements),
		"associations", len(model.Associations),
		"dependencies", len(model.Dependencies),
		"generalizations", len(model.Generalizations),
		"diagnostics", len(diags))

	outPath := outputFlag
	if outPath == "" {
		outPath = defaultOutputPath(factsPath)
	}
	if err := writeXMI(model, outPath); err != nil {
		return err
	}
	logger.Info("model written", "path", outPath)

	if notationFlag != "" {
		out, err := os.Create(notationFlag)
		if err != nil {
			return fmt.Errorf("create notation file: %w", err)
		}
		defer out.Close()
		if err := notation.NewWriter(model, cfg.Layout).Write(out); err != nil {
			return fmt.Errorf("write notation: %w", err)
		}
		logger.Info("notation written", "path", notationFlag)
	}
	return nil
}

func writeXMI(model *uml.Model, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := xmi.NewWriter(model).Write(out); err != nil {
		out.Close()
		return fmt.Errorf("write model: %w", err)
	}
	return out.Close()
}

// defaultOutputPath derives the XMI path from the facts file name:
// compression and json suffixes are stripped, .uml is appended.
func defaultOutputPath(factsPath string) string {
	base := strings.TrimSuffix(factsPath, ".zst")
	base = strings.TrimSuffix(base, ".json")
	return base + ".uml"
}
