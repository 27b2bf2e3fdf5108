package codec

import gojson "github.com/goccy/go-json"

// GoJSON is the default codec, backed by github.com/goccy/go-json.
// For container views its output matches JSON's.
type GoJSON struct{}

var _ Codec = GoJSON{}

// Marshal implements Codec.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal implements Codec.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }
