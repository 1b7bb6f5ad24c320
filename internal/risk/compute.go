package risk

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"

	"github.com/handleui/compute-risk/internal/tracker"
)

// Factors are the three inputs of a phase.
type Factors struct {
	Severity      int64
	Probability   int64
	Detectability int64
}

// Product multiplies the factors. ok is false on int64 overflow.
func (f Factors) Product() (product int64, ok bool) {
	p, ok := mul(f.Severity, f.Probability)
	if !ok {
		return 0, false
	}
	return mul(p, f.Detectability)
}

func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

// Result is the outcome of one successful phase.
type Result struct {
	Phase   Phase
	Factors Factors
	Product int64
	FieldID int64
	Option  tracker.OptionDefinition
}

// Compute runs every phase against doc. It either succeeds for all phases or
// returns the first failure; partial results are never returned.
//
// Failures are checked stage by stage across phases: all risk fields are
// resolved first, then all factors are located, then all products matched.
func Compute(doc *tracker.Document, phases []Phase, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fields := make([]*RiskField, len(phases))
	for i, p := range phases {
		field, err := ResolveRiskField(doc, p.Risk)
		switch {
		case errors.Is(err, ErrRiskValuesNotFound):
			return nil, &Error{Kind: err, Phase: p.Name, Message: p.valuesNotFoundMessage()}
		case err != nil:
			return nil, &Error{Kind: err, Phase: p.Name, Message: p.fieldNotFoundMessage()}
		}
		logger.Debug("resolved risk field",
			slog.String("phase", p.Name),
			slog.String("label", p.Risk),
			slog.Int64("field_id", field.FieldID),
			slog.Int("options", len(field.Options)),
		)
		fields[i] = field
	}

	factors := make([]Factors, len(phases))
	missing := false
	for i, p := range phases {
		var okS, okP, okD bool
		factors[i].Severity, okS = LocateNumericFactor(doc, p.Severity)
		factors[i].Probability, okP = LocateNumericFactor(doc, p.Probability)
		factors[i].Detectability, okD = LocateNumericFactor(doc, p.Detectability)
		if !okS || !okP || !okD {
			logger.Debug("factor missing",
				slog.String("phase", p.Name),
				slog.Bool("severity", okS),
				slog.Bool("probability", okP),
				slog.Bool("detectability", okD),
			)
			missing = true
		}
	}
	if missing {
		return nil, &Error{Kind: ErrFactorMissing, Message: MsgFactorMissing}
	}

	results := make([]Result, len(phases))
	var failed *Error
	for i, p := range phases {
		product, ok := factors[i].Product()
		var opt tracker.OptionDefinition
		if ok {
			opt, ok = fields[i].Match(product)
		}
		if !ok {
			logger.Debug("no matching risk value",
				slog.String("phase", p.Name),
				slog.Int64("product", product),
			)
			if failed == nil {
				failed = &Error{Kind: ErrNoMatchingValue, Phase: p.Name, Message: MsgNoMatchingValue}
			}
			continue
		}
		logger.Debug("matched risk value",
			slog.String("phase", p.Name),
			slog.Int64("product", product),
			slog.String("option_id", string(opt.ID)),
		)
		results[i] = Result{
			Phase:   p,
			Factors: factors[i],
			Product: product,
			FieldID: fields[i].FieldID,
			Option:  opt,
		}
	}
	if failed != nil {
		return nil, failed
	}

	return results, nil
}

// Binding sets one tracker field to the given value ids.
type Binding struct {
	FieldID      int64             `json:"field_id"`
	BindValueIDs []json.RawMessage `json:"bind_value_ids"`
}

// Patch is the post-action output consumed by the tracker.
type Patch struct {
	Values []Binding `json:"values"`
}

// NewPatch builds a patch with one binding per result, in result order.
func NewPatch(results []Result) *Patch {
	patch := &Patch{Values: make([]Binding, 0, len(results))}
	for _, r := range results {
		patch.Values = append(patch.Values, Binding{
			FieldID:      r.FieldID,
			BindValueIDs: []json.RawMessage{r.Option.ID},
		})
	}
	return patch
}
