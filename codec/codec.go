// Package codec encodes container contents.
//
// A container marshals as its view: a Slice as the array of its elements,
// Bytes as a base64 string and Str as a string. The helpers here apply that
// mapping on top of a pluggable JSON implementation so the encoded form of
// a container is the encoded form of the equivalent Go value. Empty and
// absent containers encode as an empty array or string, never as null.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when nil is passed to the helpers below, and
// therefore by the containers' MarshalJSON and UnmarshalJSON.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

func pick(c Codec) Codec {
	if c == nil {
		return Default
	}
	return c
}

func wrap(c Codec, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("codec %s %s: %w", c.Name(), op, err)
}

// EncodeElems encodes elems as an array.
func EncodeElems[T any](c Codec, elems []T) ([]byte, error) {
	c = pick(c)
	if elems == nil {
		elems = []T{}
	}
	b, err := c.Marshal(elems)
	return b, wrap(c, "encode", err)
}

// DecodeElems decodes an array. null decodes as no elements.
func DecodeElems[T any](c Codec, data []byte) ([]T, error) {
	c = pick(c)
	var elems []T
	err := c.Unmarshal(data, &elems)
	return elems, wrap(c, "decode", err)
}

// EncodeBytes encodes b as a base64 string.
func EncodeBytes(c Codec, b []byte) ([]byte, error) {
	c = pick(c)
	if b == nil {
		b = []byte{}
	}
	out, err := c.Marshal(b)
	return out, wrap(c, "encode", err)
}

// DecodeBytes decodes a base64 string.
func DecodeBytes(c Codec, data []byte) ([]byte, error) {
	c = pick(c)
	var b []byte
	err := c.Unmarshal(data, &b)
	return b, wrap(c, "decode", err)
}

// EncodeText encodes s as a string.
func EncodeText(c Codec, s string) ([]byte, error) {
	c = pick(c)
	out, err := c.Marshal(s)
	return out, wrap(c, "encode", err)
}

// DecodeText decodes a string.
func DecodeText(c Codec, data []byte) (string, error) {
	c = pick(c)
	var s string
	err := c.Unmarshal(data, &s)
	return s, wrap(c, "decode", err)
}
