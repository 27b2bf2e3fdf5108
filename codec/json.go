package codec

import "encoding/json"

// JSON is the encoding/json codec. Set Default to JSON{} to take
// go-json out of the encoding path.
type JSON struct{}

var _ Codec = JSON{}

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
