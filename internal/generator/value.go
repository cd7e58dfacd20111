package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an instance of a shape: nil, string, Object or *List.
type Value interface{}

// Object holds structure members and map entries.
type Object map[string]Value

// List holds list elements. It is always handled by pointer so edits made
// through a Reference are visible to the container holding it.
type List struct {
	Items []Value
}

// NewList returns a list holding items.
func NewList(items ...Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{Items: items}
}

// Serialize renders v as compact JSON with object keys sorted and HTML
// characters left unescaped.
func Serialize(v Value) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(v)); err != nil {
		return "", fmt.Errorf("serialize value: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// plain converts a Value tree into encoding/json friendly types.
func plain(v Value) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case Object:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case *List:
		if t == nil {
			return nil
		}
		out := make([]interface{}, len(t.Items))
		for i, e := range t.Items {
			out[i] = plain(e)
		}
		return out
	default:
		return t
	}
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case Object:
		out := make(Object, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case *List:
		if t == nil {
			return t
		}
		items := make([]Value, len(t.Items))
		for i, e := range t.Items {
			items[i] = Clone(e)
		}
		return &List{Items: items}
	default:
		return t
	}
}
