package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DefaultExportName is the file name offered for exports.
const DefaultExportName = "quotes.json"

// ParseError reports malformed stored or imported JSON.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Export writes records as a pretty-printed JSON array. Dirty flags are not
// written.
func Export(w io.Writer, records []Record) error {
	clean := make([]Record, len(records))
	for i, r := range records {
		r.Dirty = false
		clean[i] = r
	}
	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quotes: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write quotes: %w", err)
	}
	return nil
}

// Import reads a JSON array of records, normalizing each one. Anything other
// than an array is a ParseError. Imported records are never dirty.
func Import(r io.Reader, source string, now time.Time) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return Decode(data, source, now)
}

// Decode parses a JSON array of records from data.
func Decode(data []byte, source string, now time.Time) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("expected a JSON array")}
	}
	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	for i := range records {
		records[i].Dirty = false
	}
	out := NormalizeAll(records, now)
	if out == nil {
		out = []Record{}
	}
	return out, nil
}
