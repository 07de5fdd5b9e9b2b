package entity

import (
	jsoniter "github.com/json-iterator/go"
)

// SnapshotCodec serializes a state for the SnapshotStore.
type SnapshotCodec[S any] struct {
	Encode func(state S) ([]byte, error)
	Decode func(data []byte) (S, error)
}

// JSONCodec encodes the exported fields of S with json-iterator.
func JSONCodec[S any]() SnapshotCodec[S] {
	return SnapshotCodec[S]{
		Encode: func(state S) ([]byte, error) {
			return jsoniter.ConfigFastest.Marshal(state)
		},
		Decode: func(data []byte) (S, error) {
			var state S
			err := jsoniter.ConfigFastest.Unmarshal(data, &state)

			return state, err
		},
	}
}
