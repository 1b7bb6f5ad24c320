package cmd

import (
	"fmt"

	"github.com/handleui/compute-risk/internal/config"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the field labels a run would use",
	Long: `Prints the effective label set as YAML. The output is a valid config file
and can be edited and passed back with --config.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLabels,
}

func runLabels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := config.MarshalFile(cfg.File())
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}

	w := cmd.OutOrStdout()
	if cfg.Path.Value != "" {
		_, _ = fmt.Fprintf(w, "# config: %s (%s)\n", cfg.Path.Value, cfg.Path.Source)
	}
	_, _ = fmt.Fprintf(w, "# variant: %s (%s), phases: %s\n", cfg.Variant.Value, cfg.Variant.Source, cfg.Phases.Source)
	_, err = w.Write(data)
	return err
}
