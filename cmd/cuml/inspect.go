package main

import (
	"fmt"

	"cuml/internal/builder"
	"cuml/internal/facts"
	"cuml/internal/profile"
	"cuml/internal/uml"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <facts-file>",
	Short: "Build the model and print a summary without writing output",
	Long: `Inspect runs the full model construction pipeline and prints element
counts and every diagnostic, so a facts file can be vetted before generating
output. Exit status is zero even when diagnostics are present; only a failed
build is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&projectFlag, "project", "",
		"Model name (default: from facts file or config)")
	inspectCmd.Flags().StringVar(&profileFlag, "profile", "",
		"Path to a YAML type-vocabulary profile")
	inspectCmd.Flags().BoolVar(&strictFlag, "strict", false,
		"Only emit associations backed by real fields on both sides")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	fs, err := facts.Load(args[0])
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}

	model, diags, err := builder.New(builder.Options{
		ProjectName:          cfg.ProjectName,
		Strict:               cfg.StrictMode,
		OwnershipAnnotations: cfg.OwnershipAnnotations,
		PlaceholderStubs:     cfg.PlaceholderStubs,
		Profile:              prof,
		Logger:               newLogger(cfg),
	}).Build(fs)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	var classes, enums, datatypes, stubs int
	for _, e := range model.Elements {
		if e.Synthetic {
			stubs++
		}
		switch e.Kind {
		case uml.KindEnumeration:
			enums++
		case uml.KindDataType:
			datatypes++
		default:
			classes++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model: %s\n", model.Name)
	fmt.Fprintf(out, "  Classes:         %d\n", classes)
	fmt.Fprintf(out, "  Enumerations:    %d\n", enums)
	fmt.Fprintf(out, "  Datatypes:       %d (%d placeholders)\n", datatypes, stubs)
	fmt.Fprintf(out, "  Associations:    %d\n", len(model.Associations))
	fmt.Fprintf(out, "  Dependencies:    %d\n", len(model.Dependencies))
	fmt.Fprintf(out, "  Generalizations: %d\n", len(model.Generalizations))
	fmt.Fprintf(out, "  Diagnostics:     %d\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(out, "    %s\n", d.String())
	}
	return nil
}
