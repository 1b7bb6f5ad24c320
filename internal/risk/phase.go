package risk

import (
	"fmt"
	"strings"
)

// Phase is one independent risk computation: three factor field labels and
// the label of the risk field that receives their product.
type Phase struct {
	Name          string
	Severity      string
	Probability   string
	Detectability string
	Risk          string

	// Optional overrides for the risk field diagnostics.
	// Empty means MsgRiskFieldNotFound / MsgRiskValuesNotFound.
	FieldNotFoundMessage  string
	ValuesNotFoundMessage string
}

func (p Phase) fieldNotFoundMessage() string {
	if p.FieldNotFoundMessage != "" {
		return p.FieldNotFoundMessage
	}
	return MsgRiskFieldNotFound
}

func (p Phase) valuesNotFoundMessage() string {
	if p.ValuesNotFoundMessage != "" {
		return p.ValuesNotFoundMessage
	}
	return MsgRiskValuesNotFound
}

// Validate checks that every label is set.
func (p Phase) Validate() error {
	labels := []struct {
		key, value string
	}{
		{"severity", p.Severity},
		{"probability", p.Probability},
		{"detectability", p.Detectability},
		{"risk", p.Risk},
	}
	for _, l := range labels {
		if l.value == "" {
			return fmt.Errorf("phase %q: %s label is empty", p.Name, l.key)
		}
	}
	return nil
}

// Variant selects a compiled-in label set.
type Variant string

const (
	// VariantSingle computes Severity x Probability x Detectability into Risk.
	VariantSingle Variant = "single"
	// VariantMitigation computes the risk level before and after mitigation.
	VariantMitigation Variant = "mitigation"
)

// DefaultVariant is the label set used when nothing else is configured.
const DefaultVariant = VariantMitigation

// Variants lists the known variants in display order.
var Variants = []Variant{VariantSingle, VariantMitigation}

// ParseVariant converts s into a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q: must be 'single' or 'mitigation'", s)
}

// Phases returns the compiled-in phases of v in computation order.
func (v Variant) Phases() []Phase {
	switch v {
	case VariantSingle:
		return []Phase{{
			Name:          "risk",
			Severity:      "Severity",
			Probability:   "Probability",
			Detectability: "Detectability",
			Risk:          "Risk",
		}}
	case VariantMitigation:
		return []Phase{
			{
				Name:          "before mitigation",
				Severity:      "Severity before mitigation",
				Probability:   "Probability before mitigation",
				Detectability: "Detectability before mitigation",
				Risk:          "Risk level before mitigation",
			},
			{
				Name:                  "after mitigation",
				Severity:              "Severity after mitigation",
				Probability:           "Probability after mitigation",
				Detectability:         "Detectability after mitigation",
				Risk:                  "Risk level after mitigation",
				FieldNotFoundMessage:  "Cannot find field_risk_after",
				ValuesNotFoundMessage: "Cannot find Risk values after mitigation",
			},
		}
	}
	return nil
}
