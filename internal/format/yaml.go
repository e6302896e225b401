package format

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

func WriteYAML(w io.Writer, v any) error {
	x, err := plain(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(x)); err != nil {
		return err
	}
	return enc.Close()
}

// yamlNode swaps json.Number for int64/float64 so yaml prints bare numbers.
func yamlNode(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = yamlNode(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = yamlNode(x)
		}
		return out
	default:
		return v
	}
}
