package cmd

import (
	"github.com/handleui/compute-risk/internal/output"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show how the risk level of a document is computed",
	Long: `Runs the same computation as the root command but prints, for every phase,
the factor values read from the document, their product and the option the
risk field would be bound to. Failures are reported exactly as for a real run.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExplain,
}

func runExplain(cmd *cobra.Command, _ []string) error {
	results, err := compute(cmd)
	if err != nil {
		return err
	}
	output.FormatExplain(cmd.OutOrStdout(), results)
	return nil
}
