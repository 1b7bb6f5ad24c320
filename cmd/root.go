package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/handleui/compute-risk/internal/config"
	"github.com/handleui/compute-risk/internal/logging"
	"github.com/handleui/compute-risk/internal/output"
	"github.com/handleui/compute-risk/internal/risk"
	"github.com/handleui/compute-risk/internal/sentry"
	"github.com/handleui/compute-risk/internal/tracker"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// stdinPath is the --input value meaning standard input.
const stdinPath = "-"

var (
	// Global flags shared across commands
	variantFlag string
	configPath  string
	inputPath   string
	verbose     bool
)

var errNoInput = errors.New("no input: pipe a tracker document on stdin")

var rootCmd = &cobra.Command{
	Use:   "compute-risk",
	Short: "Compute an artifact's risk level from severity, probability and detectability",
	Long: `compute-risk is a tracker post-action. It reads the artifact document the
tracker sends on stdin, multiplies the selected Severity, Probability and
Detectability values and prints a patch binding the risk field to the option
labelled with the product.

Variants:
  single       Severity x Probability x Detectability -> Risk
  mitigation   the same computation before and after mitigation (default)

Any missing field, unparsable value or unmatched product aborts the run with
a diagnostic on stderr and no output on stdout.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCompute,
}

// Execute runs the root command with the given arguments and streams.
func Execute(args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.Execute()
}

// Reportable reports whether err points at a defect worth sending to
// error tracking, as opposed to a problem with the artifact or invocation.
func Reportable(err error) bool {
	return err != nil && !risk.Expected(err) && !errors.Is(err, errNoInput)
}

func init() {
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "label set: single or mitigation (default mitigation)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding the field labels")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", stdinPath, "tracker document to read, - for stdin")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug records to stderr")
}

func runCompute(cmd *cobra.Command, _ []string) error {
	results, err := compute(cmd)
	if err != nil {
		return err
	}
	return output.FormatPatch(cmd.OutOrStdout(), risk.NewPatch(results))
}

// compute runs the full pipeline for the current flags: resolve the label
// set, decode the document and compute every phase.
func compute(cmd *cobra.Command) ([]risk.Result, error) {
	runID := uuid.NewString()
	logger := logging.New(cmd.ErrOrStderr(), verbose).With(slog.String("run_id", runID))
	sentry.SetTag("run_id", runID)

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	sentry.SetTag("variant", string(cfg.Variant.Value))
	logger.Debug("configuration",
		slog.String("variant", string(cfg.Variant.Value)),
		slog.String("variant_source", cfg.Variant.Source.String()),
		slog.String("phases_source", cfg.Phases.Source.String()),
		slog.Int("phases", len(cfg.Phases.Value)),
	)

	in, closeInput, err := openInput(cmd)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	doc, err := tracker.Decode(in)
	if err != nil {
		return nil, err
	}
	sentry.AddBreadcrumb("input", "decoded tracker document", map[string]any{
		"source": inputPath,
		"values": len(doc.Current),
		"fields": len(doc.Fields),
	})

	return risk.Compute(doc, cfg.Phases.Value, logger)
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.Options{
		Path:    configPath,
		Variant: variantFlag,
		Version: Version,
	})
}

// openInput returns the document reader selected by --input.
// Reading an interactive terminal would block forever, so it is refused.
func openInput(cmd *cobra.Command) (io.Reader, func(), error) {
	if inputPath == "" || inputPath == stdinPath {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return nil, nil, errNoInput
		}
		return in, func() {}, nil
	}

	f, err := os.Open(inputPath) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
