package risk

import (
	"strconv"

	"github.com/handleui/compute-risk/internal/tracker"
)

// LocateNumericFactor returns the integer held by the field labelled label
// in the submitted values. The value is the label of the field's first
// selected option, parsed as a base-10 signed integer.
//
// ok is false when the field is absent, has no selected option, the option
// label is not a string, or it does not parse. Callers treat all of these
// the same way.
func LocateNumericFactor(doc *tracker.Document, label string) (value int64, ok bool) {
	snap, found := doc.Snapshot(label)
	if !found || len(snap.Values) == 0 {
		return 0, false
	}

	first := snap.Values[0]
	if !first.HasLabel {
		return 0, false
	}

	n, err := strconv.ParseInt(first.Label, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
