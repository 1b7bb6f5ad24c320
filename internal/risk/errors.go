package risk

import "errors"

// Failure kinds. Every failure is fatal to the whole run; the kinds only
// let callers tell them apart with errors.Is.
var (
	ErrRiskFieldNotFound  = errors.New("risk field not found")
	ErrRiskValuesNotFound = errors.New("risk field has no values")
	ErrFactorMissing      = errors.New("factor value missing")
	ErrNoMatchingValue    = errors.New("no matching risk value")
)

// Diagnostics written to stderr. The tracker shows them to operators as-is.
const (
	MsgRiskFieldNotFound  = "Cannot find field_risk"
	MsgRiskValuesNotFound = "Cannot find Risk values"
	MsgFactorMissing      = "Cannot find Severity or Probability field"
	MsgNoMatchingValue    = "Cannot find matching Risk value"
)

// Error is a computation failure attributed to a phase.
// Error() returns the operator diagnostic only.
type Error struct {
	Kind    error
	Phase   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Expected reports whether err is a data problem in the tracker artifact
// or its field configuration rather than a defect in the program.
func Expected(err error) bool {
	return errors.Is(err, ErrRiskFieldNotFound) ||
		errors.Is(err, ErrRiskValuesNotFound) ||
		errors.Is(err, ErrFactorMissing) ||
		errors.Is(err, ErrNoMatchingValue)
}
