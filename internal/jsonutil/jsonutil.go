// Package jsonutil wraps github.com/go-json-experiment/json so the rest of
// the module encodes and decodes JSON through one set of options.
//
// Map keys are always emitted in sorted order so that reports are stable
// across runs and can be diffed.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true), jsontext.WithIndent(indent))
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Encode writes the indented JSON encoding of v to w, followed by a newline.
func Encode(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, json.Deterministic(true), jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

// Decode reads one JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}
