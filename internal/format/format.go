// Package format renders CLI payloads as json, edn or yaml.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats lists the accepted --format values.
var Formats = []string{"json", "edn", "yaml"}

func Valid(format string) bool {
	switch strings.ToLower(format) {
	case "", "json", "edn", "yaml", "yml":
		return true
	}
	return false
}

// Write writes v in the requested format. Empty means json.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(format) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unknown format: %s (expected %s)", format, strings.Join(Formats, "|"))
	}
}

// WriteJSON writes strict JSON. Pagination or follow-up hints belong in a
// `meta` object or `_hints`, never in free text.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// plain converts v to maps, slices and scalars through its JSON encoding so
// every format honors json tags and custom marshalers. Numbers stay json.Number
// to keep money values exact.
func plain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}
