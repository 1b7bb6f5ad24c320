package risk

import (
	"encoding/json"
	"testing"

	"github.com/handleui/compute-risk/internal/tracker"
)

type snapshot struct {
	Label  string           `json:"label"`
	Values []map[string]any `json:"values,omitempty"`
}

type fieldDef struct {
	Label   string           `json:"label"`
	FieldID int64            `json:"field_id"`
	Values  []map[string]any `json:"values"`
}

// factor returns a snapshot whose first selected option has the given label.
func factor(label string, value any) snapshot {
	return snapshot{Label: label, Values: []map[string]any{{"id": 1000, "label": value}}}
}

// options builds option definitions from alternating id, label pairs.
func options(pairs ...any) []map[string]any {
	out := make([]map[string]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, map[string]any{"id": pairs[i], "label": pairs[i+1]})
	}
	return out
}

// buildDocument marshals the given snapshots and fields into a tracker document.
func buildDocument(t *testing.T, current []snapshot, fields []fieldDef) *tracker.Document {
	t.Helper()
	raw := map[string]any{
		"current": map[string]any{"values": current},
		"tracker": map[string]any{"fields": fields},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	doc, err := tracker.Parse(data)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}
