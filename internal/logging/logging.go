// Package logging builds the structured logger used for run diagnostics.
// Records go to stderr as JSON so stdout carries only the patch.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv enables debug records when set to "1".
const DebugEnv = "COMPUTE_RISK_DEBUG"

// levelSilent sits above every level the program logs at, so a quiet run
// leaves stderr to the failure diagnostic alone.
const levelSilent = slog.Level(12)

// New returns a JSON logger writing to w. Debug records are emitted only
// when verbose is true or DebugEnv is "1".
func New(w io.Writer, verbose bool) *slog.Logger {
	level := levelSilent
	if verbose || os.Getenv(DebugEnv) == "1" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
