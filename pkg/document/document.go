// Package document implements the structured document form of polocloud
// entities: a JSON-like object used for event payloads, persistence exports
// and human-facing tooling.
//
// A Document is a plain map. Writers populate it with the keys in keys.go;
// readers go through a Reader, which accumulates the first schema violation
// so mapping code can read every field and check a single error at the end:
//
//	r := document.Read("player", doc)
//	name := r.String(document.KeyName)
//	id := r.String(document.KeyUniqueID)
//	if err := r.Err(); err != nil {
//	    return nil, err
//	}
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Document is the structured document form of an entity.
type Document map[string]any

// Clone returns a deep copy of nested documents and lists. Scalars are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return Document(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e.Clone()
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes d as indented JSON when indent is true, compact JSON
// otherwise.
func MarshalJSON(d Document, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// UnmarshalJSON decodes a JSON object into a Document. Comments and trailing
// commas are tolerated. Numbers decode as json.Number so integer and
// floating point literals stay distinguishable.
func UnmarshalJSON(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("document is null")
	}
	return d, nil
}

// MarshalYAML encodes d as YAML.
func MarshalYAML(d Document) ([]byte, error) {
	return yaml.Marshal(normalize(d))
}

// UnmarshalYAML decodes a YAML mapping into a Document.
func UnmarshalYAML(data []byte) (Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return d, nil
}

// normalize replaces json.Number leaves with native numbers so YAML output
// does not quote them.
func normalize(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		return normalize(Document(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(string(t), 64); err == nil {
			return f
		}
		return string(t)
	default:
		return v
	}
}
