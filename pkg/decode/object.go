// Package decode holds the untyped JSON object model that DAP decoders read from,
// the typed field accessors they share and the DecodeError taxonomy.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// JSON type names used in TypeMismatch errors.
const (
	TypeInteger = "integer"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Object is a parsed JSON object. Numbers are json.Number when produced by
// ParseObject; float64 and Go integer types are accepted as well so hand-built
// objects decode the same way.
type Object map[string]any

// ParseObject parses data as a single JSON object.
func ParseObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON: trailing data after object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, TypeMismatch("message", TypeObject)
	}
	return Object(obj), nil
}

// Has reports whether key is present, including when its value is null.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// lookup returns the value for key, treating JSON null as absent for optional keys.
func (o Object) lookup(key string) (any, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Int returns the required integer at key.
func (o Object) Int(key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, MissingField(key)
	}
	return AsInt(v, key)
}

// OptionalInt returns the integer at key; ok is false when key is absent or null.
func (o Object) OptionalInt(key string) (n int, ok bool, err error) {
	v, ok := o.lookup(key)
	if !ok {
		return 0, false, nil
	}
	n, err = AsInt(v, key)
	return n, err == nil, err
}

// String returns the required string at key.
func (o Object) String(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", MissingField(key)
	}
	return AsString(v, key)
}

// OptionalString returns the string at key or "" when absent.
func (o Object) OptionalString(key string) (string, error) {
	v, ok := o.lookup(key)
	if !ok {
		return "", nil
	}
	return AsString(v, key)
}

// Bool returns the required boolean at key.
func (o Object) Bool(key string) (bool, error) {
	v, ok := o[key]
	if !ok {
		return false, MissingField(key)
	}
	return AsBool(v, key)
}

// OptionalBool returns the boolean at key or false when absent.
func (o Object) OptionalBool(key string) (bool, error) {
	v, ok := o.lookup(key)
	if !ok {
		return false, nil
	}
	return AsBool(v, key)
}

// Object returns the required nested object at key.
func (o Object) Object(key string) (Object, error) {
	v, ok := o[key]
	if !ok {
		return nil, MissingField(key)
	}
	return AsObject(v, key)
}

// OptionalObject returns the nested object at key; ok is false when absent or null.
func (o Object) OptionalObject(key string) (obj Object, ok bool, err error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, false, nil
	}
	obj, err = AsObject(v, key)
	return obj, err == nil, err
}

// Array returns the required array at key.
func (o Object) Array(key string) ([]any, error) {
	v, ok := o[key]
	if !ok {
		return nil, MissingField(key)
	}
	return AsArray(v, key)
}

// OptionalArray returns the array at key; ok is false when absent or null.
func (o Object) OptionalArray(key string) (arr []any, ok bool, err error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, false, nil
	}
	arr, err = AsArray(v, key)
	return arr, err == nil, err
}

// Raw re-encodes the value at key so callers get a copy that shares nothing with o.
func (o Object) Raw(key string) (json.RawMessage, bool, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("re-encode %q: %w", key, err)
	}
	return json.RawMessage(b), true, nil
}

// AsInt converts a JSON value to int. Non-integral numbers are a type mismatch.
func AsInt(v any, name string) (int, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, TypeMismatch(name, TypeInteger)
		}
		return intInRange(f, name)
	case float64:
		return intInRange(n, name)
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	default:
		return 0, TypeMismatch(name, TypeInteger)
	}
}

func intInRange(f float64, name string) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, TypeMismatch(name, TypeInteger)
	}
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, TypeMismatch(name, TypeInteger)
	}
	return int(f), nil
}

// AsString converts a JSON value to string.
func AsString(v any, name string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", TypeMismatch(name, TypeString)
	}
	return s, nil
}

// AsBool converts a JSON value to bool.
func AsBool(v any, name string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, TypeMismatch(name, TypeBoolean)
	}
	return b, nil
}

// AsObject converts a JSON value to Object.
func AsObject(v any, name string) (Object, error) {
	switch o := v.(type) {
	case map[string]any:
		return Object(o), nil
	case Object:
		return o, nil
	default:
		return nil, TypeMismatch(name, TypeObject)
	}
}

// AsArray converts a JSON value to a slice of JSON values.
func AsArray(v any, name string) ([]any, error) {
	a, ok := v.([]any)
	if !ok {
		return nil, TypeMismatch(name, TypeArray)
	}
	return a, nil
}

// Index names the i-th element of an array field, e.g. Index("breakpoints", 2)
// is "breakpoints[2]".
func Index(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
