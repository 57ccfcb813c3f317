package requests

import (
	"dapwire/pkg/decode"
)

// fields reads several keys from one object and keeps the first error, so argument
// decoders can list their fields without an if-block per key.
type fields struct {
	obj decode.Object
	err error
}

func newFields(obj decode.Object) *fields {
	return &fields{obj: obj}
}

func (f *fields) int(key string) int {
	if f.err != nil {
		return 0
	}
	n, err := f.obj.Int(key)
	f.err = err
	return n
}

func (f *fields) optInt(key string) int {
	if f.err != nil {
		return 0
	}
	n, _, err := f.obj.OptionalInt(key)
	f.err = err
	return n
}

func (f *fields) str(key string) string {
	if f.err != nil {
		return ""
	}
	s, err := f.obj.String(key)
	f.err = err
	return s
}

func (f *fields) optStr(key string) string {
	if f.err != nil {
		return ""
	}
	s, err := f.obj.OptionalString(key)
	f.err = err
	return s
}

func (f *fields) optBool(key string) bool {
	if f.err != nil {
		return false
	}
	b, err := f.obj.OptionalBool(key)
	f.err = err
	return b
}

// boolOr is optBool with def in place of an absent or null key.
func (f *fields) boolOr(key string, def bool) bool {
	if v, ok := f.obj[key]; !ok || v == nil {
		return def
	}
	return f.optBool(key)
}

// strOr is optStr with def in place of an absent or null key.
func (f *fields) strOr(key string, def string) string {
	if v, ok := f.obj[key]; !ok || v == nil {
		return def
	}
	return f.optStr(key)
}

func (f *fields) raw(key string, dst any) {
	if f.err != nil {
		return
	}
	f.err = rawInto(f.obj, key, dst)
}

// optInts reads an optional array of integers; elements are checked one by one.
func (f *fields) optInts(key string) []int {
	if f.err != nil {
		return nil
	}
	arr, ok, err := f.obj.OptionalArray(key)
	if err != nil || !ok {
		f.err = err
		return nil
	}
	out := make([]int, 0, len(arr))
	for i, v := range arr {
		n, err := decode.AsInt(v, decode.Index(key, i))
		if err != nil {
			f.err = err
			return nil
		}
		out = append(out, n)
	}
	return out
}

// strs reads a required array of strings.
func (f *fields) strs(key string) []string {
	if f.err != nil {
		return nil
	}
	arr, err := f.obj.Array(key)
	if err != nil {
		f.err = err
		return nil
	}
	return f.stringItems(key, arr)
}

// optStrs reads an optional array of strings.
func (f *fields) optStrs(key string) []string {
	if f.err != nil {
		return nil
	}
	arr, ok, err := f.obj.OptionalArray(key)
	if err != nil || !ok {
		f.err = err
		return nil
	}
	return f.stringItems(key, arr)
}

func (f *fields) stringItems(key string, arr []any) []string {
	out := make([]string, 0, len(arr))
	for i, v := range arr {
		s, err := decode.AsString(v, decode.Index(key, i))
		if err != nil {
			f.err = err
			return nil
		}
		out = append(out, s)
	}
	return out
}

// objects decodes each element of the array at key with fn. A failing element is
// reported as NestedDecodeFailure("key[i]", err). required selects whether an
// absent key is an error.
func objects[T any](obj decode.Object, key string, required bool, fn func(decode.Object) (T, error)) ([]T, error) {
	var arr []any
	if required {
		a, err := obj.Array(key)
		if err != nil {
			return nil, err
		}
		arr = a
	} else {
		a, ok, err := obj.OptionalArray(key)
		if err != nil || !ok {
			return nil, err
		}
		arr = a
	}
	out := make([]T, 0, len(arr))
	for i, v := range arr {
		name := decode.Index(key, i)
		item, err := decode.AsObject(v, name)
		if err != nil {
			return nil, err
		}
		t, err := fn(item)
		if err != nil {
			return nil, decode.NestedDecodeFailure(name, err)
		}
		out = append(out, t)
	}
	return out, nil
}
