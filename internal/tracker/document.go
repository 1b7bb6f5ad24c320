// Package tracker decodes the artifact document a tracker hands to a
// post-action on stdin. Only the parts the risk computation reads are kept:
// the submitted field values and the tracker's field vocabulary.
//
// Decoding is tolerant. A member with an unexpected shape (a label that is
// not a string, a values member that is not an array, a field_id that is not
// an integer) is treated as absent instead of failing the whole document.
// Only input that is not valid JSON is an error.
package tracker

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
)

// OptionReference is one selected option inside a field snapshot.
// Numeric factor fields carry their value as the option label (e.g. "3").
type OptionReference struct {
	Label    string
	HasLabel bool // false when the label member was absent or not a string
}

// FieldSnapshot is a field's value at submission time (current.values[]).
type FieldSnapshot struct {
	Label  string
	Values []OptionReference
}

// OptionDefinition is one legal value of an enumerated tracker field.
type OptionDefinition struct {
	// ID is kept verbatim so it can be passed back to the tracker unchanged.
	// Nil when the definition had no id member.
	ID    json.RawMessage
	Label string
}

// FieldDefinition describes a tracker field (tracker.fields[]).
type FieldDefinition struct {
	Label   string
	FieldID int64
	Values  []OptionDefinition
	// HasValues distinguishes a field bound to an (possibly empty) list of
	// values from a field with no values array at all.
	HasValues bool
}

// Document is the decoded post-action input.
type Document struct {
	Current []FieldSnapshot
	Fields  []FieldDefinition
}

// ParseError reports input that is not a single valid JSON value.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "ser: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode reads the whole of r and decodes it as a Document.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return Parse(data)
}

// Parse decodes data as a Document. data must hold exactly one JSON value;
// trailing non-whitespace is rejected, as are invalid UTF-8, unpaired
// surrogate escapes and numbers outside the float64 range.
func Parse(data []byte) (*Document, error) {
	var root json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := checkText(data); err != nil {
		return nil, &ParseError{Err: err}
	}

	doc := &Document{}
	top := object(root)

	if current := object(top["current"]); current != nil {
		items, _ := array(current["values"])
		doc.Current = make([]FieldSnapshot, 0, len(items))
		for _, item := range items {
			doc.Current = append(doc.Current, decodeSnapshot(item))
		}
	}

	if tr := object(top["tracker"]); tr != nil {
		items, _ := array(tr["fields"])
		doc.Fields = make([]FieldDefinition, 0, len(items))
		for _, item := range items {
			doc.Fields = append(doc.Fields, decodeFieldDefinition(item))
		}
	}

	return doc, nil
}

// Snapshot returns the first snapshot whose label equals label exactly.
func (d *Document) Snapshot(label string) (*FieldSnapshot, bool) {
	for i := range d.Current {
		if d.Current[i].Label == label {
			return &d.Current[i], true
		}
	}
	return nil, false
}

// Field returns the first field definition whose label equals label exactly.
func (d *Document) Field(label string) (*FieldDefinition, bool) {
	for i := range d.Fields {
		if d.Fields[i].Label == label {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

func decodeSnapshot(raw json.RawMessage) FieldSnapshot {
	m := object(raw)
	snap := FieldSnapshot{}
	snap.Label, _ = str(m["label"])

	items, _ := array(m["values"])
	for _, item := range items {
		ref := OptionReference{}
		ref.Label, ref.HasLabel = str(object(item)["label"])
		snap.Values = append(snap.Values, ref)
	}
	return snap
}

func decodeFieldDefinition(raw json.RawMessage) FieldDefinition {
	m := object(raw)
	def := FieldDefinition{}
	def.Label, _ = str(m["label"])
	def.FieldID, _ = integer(m["field_id"])

	items, ok := array(m["values"])
	def.HasValues = ok
	if ok {
		def.Values = make([]OptionDefinition, 0, len(items))
	}
	for _, item := range items {
		om := object(item)
		opt := OptionDefinition{}
		if id, present := om["id"]; present {
			opt.ID = id
		}
		opt.Label, _ = str(om["label"])
		def.Values = append(def.Values, opt)
	}
	return def
}

// --- shape helpers: each returns the zero value when raw has another shape ---

func trim(raw json.RawMessage) []byte {
	return bytes.TrimLeft(raw, " \t\r\n")
}

func object(raw json.RawMessage) map[string]json.RawMessage {
	b := trim(raw)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func array(raw json.RawMessage) ([]json.RawMessage, bool) {
	b := trim(raw)
	if len(b) == 0 || b[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, false
	}
	return items, true
}

func str(raw json.RawMessage) (string, bool) {
	b := trim(raw)
	if len(b) == 0 || b[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}

// integer accepts only integral JSON numbers that fit in an int64.
// Numbers written with a fraction or exponent are rejected.
func integer(raw json.RawMessage) (int64, bool) {
	b := bytes.TrimSpace(raw)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
