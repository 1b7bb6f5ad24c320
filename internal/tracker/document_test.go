package tracker

import (
	"errors"
	"strings"
	"testing"
)

const sampleDocument = `{
  "current": {
    "values": [
      {"label": "Severity", "values": [{"id": 11, "label": "3"}]},
      {"label": "Probability", "values": [{"id": 21, "label": "2"}]},
      {"label": "Comment", "value": "free text"}
    ]
  },
  "tracker": {
    "fields": [
      {"label": "Risk", "field_id": 501, "values": [{"id": 77, "label": "24"}, {"id": "abc", "label": "6"}]},
      {"label": "Summary", "field_id": 502}
    ]
  }
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(doc.Current) != 3 {
		t.Fatalf("len(Current) = %d, want 3", len(doc.Current))
	}
	if doc.Current[0].Label != "Severity" {
		t.Errorf("Current[0].Label = %q, want %q", doc.Current[0].Label, "Severity")
	}
	if got := doc.Current[0].Values[0].Label; got != "3" {
		t.Errorf("Current[0].Values[0].Label = %q, want %q", got, "3")
	}
	if len(doc.Current[2].Values) != 0 {
		t.Errorf("Current[2].Values = %v, want empty", doc.Current[2].Values)
	}

	if len(doc.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(doc.Fields))
	}
	risk := doc.Fields[0]
	if risk.FieldID != 501 {
		t.Errorf("FieldID = %d, want 501", risk.FieldID)
	}
	if !risk.HasValues || len(risk.Values) != 2 {
		t.Fatalf("risk values = %+v, want 2 bound values", risk.Values)
	}
	if string(risk.Values[0].ID) != "77" {
		t.Errorf("Values[0].ID = %s, want 77", risk.Values[0].ID)
	}
	if string(risk.Values[1].ID) != `"abc"` {
		t.Errorf("Values[1].ID = %s, want %q", risk.Values[1].ID, `"abc"`)
	}
	if doc.Fields[1].HasValues {
		t.Error("Summary field should not have values")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "truncated object", input: `{"current": `},
		{name: "trailing data", input: `{} {}`},
		{name: "not json", input: "severity=3"},
		{name: "invalid utf-8 in label", input: "{\"current\": {\"values\": [{\"label\": \"Sev\xffrity\"}]}}"},
		{name: "invalid utf-8 in ignored member", input: "{\"comment\": \"\xc3\x28\"}"},
		{name: "lone high surrogate", input: `{"label": "\ud800"}`},
		{name: "high surrogate before plain text", input: `{"label": "\ud800abc"}`},
		{name: "lone low surrogate", input: `{"label": "\udc00"}`},
		{name: "surrogate in key", input: `{"\ud83d": 1}`},
		{name: "number out of range", input: `{"x": 1e999}`},
		{name: "negative number out of range", input: `{"tracker": {"fields": [{"field_id": -1e400}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error type = %T, want *ParseError", err)
			}
			if !strings.HasPrefix(err.Error(), "ser: ") {
				t.Errorf("Error() = %q, want prefix %q", err.Error(), "ser: ")
			}
		})
	}
}

func TestParse_ValidText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLabel string
	}{
		{name: "surrogate pair", input: `{"current": {"values": [{"label": "\ud83d\ude00"}]}}`, wantLabel: "\U0001F600"},
		{name: "escaped quote before surrogate", input: `{"current": {"values": [{"label": "\"\u00e9"}]}}`, wantLabel: `"é`},
		{name: "raw utf-8", input: `{"current": {"values": [{"label": "Gravité"}]}}`, wantLabel: "Gravité"},
		{name: "large integer", input: `{"x": 123456789012345678901234567890, "current": {"values": [{"label": "a"}]}}`, wantLabel: "a"},
		{name: "tiny float", input: `{"x": 1e-999, "current": {"values": [{"label": "b"}]}}`, wantLabel: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(doc.Current) != 1 || doc.Current[0].Label != tt.wantLabel {
				t.Errorf("Current = %+v, want label %q", doc.Current, tt.wantLabel)
			}
		})
	}
}

func TestParse_TolerantShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, doc *Document)
	}{
		{
			name:  "top level array",
			input: `[1, 2, 3]`,
			check: func(t *testing.T, doc *Document) {
				if len(doc.Current) != 0 || len(doc.Fields) != 0 {
					t.Errorf("doc = %+v, want empty", doc)
				}
			},
		},
		{
			name:  "current values is an object",
			input: `{"current": {"values": {"label": "Severity"}}}`,
			check: func(t *testing.T, doc *Document) {
				if len(doc.Current) != 0 {
					t.Errorf("len(Current) = %d, want 0", len(doc.Current))
				}
			},
		},
		{
			name:  "numeric option label",
			input: `{"current": {"values": [{"label": "Severity", "values": [{"label": 3}]}]}}`,
			check: func(t *testing.T, doc *Document) {
				ref := doc.Current[0].Values[0]
				if ref.HasLabel {
					t.Errorf("HasLabel = true for numeric label")
				}
			},
		},
		{
			name:  "non string field label",
			input: `{"tracker": {"fields": [{"label": 7, "field_id": 1, "values": []}]}}`,
			check: func(t *testing.T, doc *Document) {
				if doc.Fields[0].Label != "" {
					t.Errorf("Label = %q, want empty", doc.Fields[0].Label)
				}
			},
		},
		{
			name:  "fractional field id",
			input: `{"tracker": {"fields": [{"label": "Risk", "field_id": 5.5, "values": []}]}}`,
			check: func(t *testing.T, doc *Document) {
				if doc.Fields[0].FieldID != 0 {
					t.Errorf("FieldID = %d, want 0", doc.Fields[0].FieldID)
				}
			},
		},
		{
			name:  "null values is not bound",
			input: `{"tracker": {"fields": [{"label": "Risk", "field_id": 1, "values": null}]}}`,
			check: func(t *testing.T, doc *Document) {
				if doc.Fields[0].HasValues {
					t.Error("HasValues = true for null values")
				}
			},
		},
		{
			name:  "empty values array is bound",
			input: `{"tracker": {"fields": [{"label": "Risk", "field_id": 1, "values": []}]}}`,
			check: func(t *testing.T, doc *Document) {
				if !doc.Fields[0].HasValues {
					t.Error("HasValues = false for empty array")
				}
			},
		},
		{
			name:  "option without id",
			input: `{"tracker": {"fields": [{"label": "Risk", "values": [{"label": "4"}]}]}}`,
			check: func(t *testing.T, doc *Document) {
				if doc.Fields[0].Values[0].ID != nil {
					t.Errorf("ID = %s, want nil", doc.Fields[0].Values[0].ID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, doc)
		})
	}
}

func TestDocumentLookups(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	tests := []struct {
		name      string
		label     string
		wantSnap  bool
		wantField bool
	}{
		{name: "snapshot exact", label: "Severity", wantSnap: true},
		{name: "snapshot wrong case", label: "severity"},
		{name: "snapshot trailing space", label: "Severity "},
		{name: "field exact", label: "Risk", wantField: true},
		{name: "field prefix only", label: "Ris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := doc.Snapshot(tt.label); ok != tt.wantSnap {
				t.Errorf("Snapshot(%q) found = %v, want %v", tt.label, ok, tt.wantSnap)
			}
			if _, ok := doc.Field(tt.label); ok != tt.wantField {
				t.Errorf("Field(%q) found = %v, want %v", tt.label, ok, tt.wantField)
			}
		})
	}
}

func TestDocumentLookups_FirstMatchWins(t *testing.T) {
	doc, err := Parse([]byte(`{
  "current": {"values": [
    {"label": "Severity", "values": [{"label": "1"}]},
    {"label": "Severity", "values": [{"label": "9"}]}
  ]},
  "tracker": {"fields": [
    {"label": "Risk", "field_id": 1, "values": []},
    {"label": "Risk", "field_id": 2, "values": []}
  ]}
}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	snap, _ := doc.Snapshot("Severity")
	if snap.Values[0].Label != "1" {
		t.Errorf("Snapshot picked %q, want first entry", snap.Values[0].Label)
	}
	field, _ := doc.Field("Risk")
	if field.FieldID != 1 {
		t.Errorf("Field picked id %d, want 1", field.FieldID)
	}
}
