package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/unicode/norm"
)

// Object is a JSON object that preserves key declaration order.
// Values are nil, bool, string, json.Number, []any, or *Object.
type Object struct {
	keys []string
	vals map[string]any
}

// Keys returns keys in declaration order.
func (o *Object) Keys() []string {
	return o.keys
}

// Get looks up a key. Present-but-null yields (nil, true).
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Plain converts the object (deeply) to plain Go maps and slices, for
// consumers that do not care about key order.
func (o *Object) Plain() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = toPlain(o.vals[k])
	}
	return out
}

// PlainValue converts any decoded manifest value (deeply) to plain Go
// maps and slices. FieldValue results pass through this before being
// handed to order-insensitive consumers like the expression evaluator.
func PlainValue(v any) any {
	return toPlain(v)
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	default:
		return v
	}
}

// Manifest is one workspace's raw descriptor. The typed fields cover
// what the loader and constraint driver need; Raw keeps the full
// declaration-ordered tree for dotted field lookup.
type Manifest struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Private    bool     `json:"private"`
	Workspaces []string `json:"workspaces"`

	raw *Object
}

// ParseManifest decodes manifest JSON, keeping declaration order.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("parse manifest: top-level value is not an object")
	}

	m := &Manifest{raw: obj}
	cfg := &mapstructure.DecoderConfig{
		Result:           m,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	md, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := md.Decode(obj.Plain()); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// decodeValue reads one JSON value from the decoder, producing the
// order-preserving representation. Numbers stay json.Number so their
// source spelling survives into field string forms.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Object{vals: make(map[string]any)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.vals[key]; !dup {
					obj.keys = append(obj.keys, key)
				}
				obj.vals[key] = val
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if arr == nil {
				arr = []any{}
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		// string, json.Number, bool, or nil
		return tok, nil
	}
}

// FieldValue resolves a dotted field path to its decoded value.
// Numeric segments index arrays. Absent fields and JSON null both
// report ok=false: absence is not exceptional.
func (m *Manifest) FieldValue(path string) (any, bool) {
	var cur any = m.raw
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case *Object:
			v, ok := node.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// FieldString resolves a dotted field path to its string form:
// strings verbatim (NFC-normalized), numbers and booleans as their
// JSON literals, objects and arrays as compact JSON in declaration
// order.
func (m *Manifest) FieldString(path string) (string, bool) {
	v, ok := m.FieldValue(path)
	if !ok {
		return "", false
	}
	return valueString(v), true
}

func valueString(v any) string {
	switch t := v.(type) {
	case string:
		return norm.NFC.String(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var sb strings.Builder
		writeCompactJSON(&sb, v)
		return sb.String()
	}
}

// writeCompactJSON marshals the ordered tree without reordering keys.
func writeCompactJSON(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case *Object:
		sb.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			sb.Write(key)
			sb.WriteByte(':')
			writeCompactJSON(sb, t.vals[k])
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCompactJSON(sb, e)
		}
		sb.WriteByte(']')
	case json.Number:
		sb.WriteString(t.String())
	default:
		out, _ := json.Marshal(t)
		sb.Write(out)
	}
}

// NewWorkspace builds a workspace from a parsed manifest. The ident
// falls back to the relative path when the manifest has no name.
func NewWorkspace(relPath string, m *Manifest) *Workspace {
	ident := m.Name
	if ident == "" {
		ident = relPath
	}
	w := &Workspace{
		RelPath:  relPath,
		Ident:    ident,
		Manifest: m,
		deps:     make(map[DependencyType]*DependencySet, len(DependencyTypes)),
	}
	for _, t := range DependencyTypes {
		w.deps[t] = dependencySetFromField(m, string(t))
	}
	return w
}

// dependencySetFromField reads one partition from the raw manifest,
// preserving declaration order. Non-string ranges are skipped rather
// than rejected; the loader is lenient with foreign manifest shapes.
func dependencySetFromField(m *Manifest, field string) *DependencySet {
	set := NewDependencySet()
	v, ok := m.raw.Get(field)
	if !ok {
		return set
	}
	obj, ok := v.(*Object)
	if !ok {
		return set
	}
	for _, ident := range obj.Keys() {
		if rng, ok := obj.vals[ident].(string); ok {
			set.Add(Dependency{Ident: ident, Range: rng})
		}
	}
	return set
}
