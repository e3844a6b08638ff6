package store

import (
	"github.com/aleksaelezovic/grom/pkg/graph"
)

// Key is the fixed-size storage key of an archived URI: a 128-bit hash.
// It is defined here to be shared by the encoder and decoder interfaces.
type Key [16]byte

// RecordEncoder turns archive records into storage keys and values
type RecordEncoder interface {
	// EncodeKey hashes a request URI into its storage key
	EncodeKey(uri string) Key

	// EncodeEntry encodes the listing header of an archived payload
	EncodeEntry(entry Entry) []byte

	// EncodePayload encodes a payload document for storage
	EncodePayload(payload *graph.Payload) ([]byte, error)
}

// RecordDecoder reverses RecordEncoder
type RecordDecoder interface {
	DecodeEntry(data []byte) (Entry, error)

	DecodePayload(data []byte) (*graph.Payload, error)
}
