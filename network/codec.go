// Package network exposes the star registry over gRPC. Messages are plain Go structs
// serialized with jsonx, so no protobuf code generation is involved.
package network

import (
	"fmt"

	"github.com/mezonai/starledger/jsonx"
	"google.golang.org/grpc/encoding"
)

const codecName = "jsonx"

// JSONCodec implements grpc/encoding.Codec on top of jsonx.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := jsonx.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonx marshal: %w", err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := jsonx.Unmarshal(data, v); err != nil {
		return fmt.Errorf("jsonx unmarshal: %w", err)
	}
	return nil
}

func (JSONCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(JSONCodec{})
}
