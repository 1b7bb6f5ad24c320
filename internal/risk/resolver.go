package risk

import (
	"strconv"

	"github.com/handleui/compute-risk/internal/tracker"
)

// RiskField is a resolved risk field: its tracker id and legal values.
type RiskField struct {
	Label   string
	FieldID int64
	Options []tracker.OptionDefinition
}

// ResolveRiskField finds the tracker field labelled label.
// It returns ErrRiskFieldNotFound when no field has that label and
// ErrRiskValuesNotFound when the field exists but carries no values array.
func ResolveRiskField(doc *tracker.Document, label string) (*RiskField, error) {
	def, found := doc.Field(label)
	if !found {
		return nil, ErrRiskFieldNotFound
	}
	if !def.HasValues {
		return nil, ErrRiskValuesNotFound
	}
	return &RiskField{
		Label:   def.Label,
		FieldID: def.FieldID,
		Options: def.Values,
	}, nil
}

// Match returns the first option whose label is exactly the decimal form
// of product. Labels are compared as strings, so "024" does not match 24.
func (f *RiskField) Match(product int64) (tracker.OptionDefinition, bool) {
	want := strconv.FormatInt(product, 10)
	for _, opt := range f.Options {
		if opt.Label == want {
			return opt, true
		}
	}
	return tracker.OptionDefinition{}, false
}
