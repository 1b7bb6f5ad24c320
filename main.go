package main

import (
	"fmt"
	"io"
	"os"

	"github.com/handleui/compute-risk/cmd"
	"github.com/handleui/compute-risk/internal/sentry"
)

// captureError is replaced in tests.
var captureError = sentry.CaptureError

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit status. The
// diagnostic for a failed run is the only thing written to stderr.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Runs after cleanup; it flushes the panic event itself.
	defer sentry.RecoverAndPanic()
	cleanup := sentry.Init(cmd.Version)
	defer cleanup()

	if err := cmd.Execute(args, stdin, stdout, stderr); err != nil {
		if cmd.Reportable(err) {
			captureError(err)
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
