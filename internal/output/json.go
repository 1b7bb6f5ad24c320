package output

import (
	"encoding/json"
	"io"

	"github.com/handleui/compute-risk/internal/risk"
)

// FormatPatch writes patch as a single compact JSON line.
// Option ids are written back exactly as the tracker sent them, so HTML
// escaping is disabled.
// Returns error if JSON marshaling or writing fails.
func FormatPatch(w io.Writer, patch *risk.Patch) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(patch)
}
