// Package record holds one decoded top-level JSON object with its keys in
// source order.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind classifies a decoded JSON value.
type Kind int

const (
	// KindNull is JSON null.
	KindNull Kind = iota
	// KindString is a JSON string.
	KindString
	// KindNumber is a JSON number kept as its literal text.
	KindNumber
	// KindBool is true or false.
	KindBool
	// KindObject is a nested object in compact form.
	KindObject
	// KindArray is an array in compact form.
	KindArray
)

// Value is a decoded JSON value kept as text. Strings hold their unescaped
// content, numbers and booleans their literal text and nested containers
// their compact JSON form.
type Value struct {
	Kind Kind
	Text string
}

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String returns the canonical text of v. Null is the empty string.
func (v Value) String() string { return v.Text }

// Object is an ordered mapping decoded from one top-level JSON object.
// Keys keep the order in which they first appeared in the source text.
type Object struct {
	keys   []string
	values map[string]Value
}

// New returns an empty object.
func New() *Object {
	return &Object{values: map[string]Value{}}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and takes the new value.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key (exact match).
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present (exact match).
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in source order.
func (o *Object) Keys() []string { return o.keys }

// Values returns the values in key order.
func (o *Object) Values() []Value {
	out := make([]Value, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.values[k])
	}
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// ErrNotObject is returned when the decoded text is valid JSON but not an object.
var ErrNotObject = errors.New("not a JSON object")

// Decode parses text holding exactly one JSON object.
func Decode(text []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	obj, err := DecodeNext(dec)
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode object: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode object: trailing data after object")
	}
	return obj, nil
}

// DecodeNext reads the next JSON object from dec. It returns io.EOF when dec
// holds no further value.
func DecodeNext(dec *json.Decoder) (*Object, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode object: %w (got %v)", ErrNotObject, tok)
	}
	obj := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode object: %w", unexpectedEOF(err))
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode object: unexpected key token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode object: value of %q: %w", key, unexpectedEOF(err))
		}
		v, err := valueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("decode object: value of %q: %w", key, err)
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object: %w", unexpectedEOF(err))
	}
	return obj, nil
}

// unexpectedEOF turns an io.EOF met inside an object into io.ErrUnexpectedEOF
// so callers can tell a clean end of stream from a truncated object.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func valueOf(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, errors.New("empty value")
	}
	switch raw[0] {
	case 'n':
		return Value{Kind: KindNull}, nil
	case 't', 'f':
		return Value{Kind: KindBool, Text: string(raw)}, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Text: s}, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return Value{}, err
		}
		k := KindObject
		if raw[0] == '[' {
			k = KindArray
		}
		return Value{Kind: k, Text: buf.String()}, nil
	default:
		return Value{Kind: KindNumber, Text: string(raw)}, nil
	}
}
