package state

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	taskcore "github.com/goliatone/go-taskcore"
)

// Codec serializes item states for stores that keep opaque payloads. Decoding
// goes through taskcore.StateFromMap so every codec accepts and validates the
// same shape.
type Codec interface {
	Name() string
	Encode(st taskcore.State) ([]byte, error)
	Decode(data []byte) (taskcore.State, error)
}

// JSONCodec encodes states as JSON objects keyed by taskcore.StateKeys.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(st taskcore.State) ([]byte, error) {
	return json.Marshal(st)
}

func (JSONCodec) Decode(data []byte) (taskcore.State, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return taskcore.State{}, fmt.Errorf("state: json decode: %w", err)
	}
	return taskcore.StateFromMap(payload)
}

// CBORCodec encodes states as CBOR maps with RFC 3339 timestamps.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec builds the encoder and decoder modes.
func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.EncOptions{
		Time: cbor.TimeRFC3339Nano,
		Sort: cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("state: cbor enc mode: %w", err)
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("state: cbor dec mode: %w", err)
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

func (c *CBORCodec) Name() string { return "cbor" }

func (c *CBORCodec) Encode(st taskcore.State) ([]byte, error) {
	return c.enc.Marshal(st)
}

func (c *CBORCodec) Decode(data []byte) (taskcore.State, error) {
	var payload map[string]any
	if err := c.dec.Unmarshal(data, &payload); err != nil {
		return taskcore.State{}, fmt.Errorf("state: cbor decode: %w", err)
	}
	return taskcore.StateFromMap(payload)
}
