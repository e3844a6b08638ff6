package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/store"
)

const (
	// Entry header layout: version, fetched-at (unix nanos), status code,
	// subject count, payload size, then the URI bytes.
	entryVersion    = 1
	EntryHeaderSize = 1 + 8 + 4 + 4 + 4
)

// RecordEncoder encodes archive keys, entry headers and payloads
type RecordEncoder struct {
	zw *zstd.Encoder
}

func NewRecordEncoder() *RecordEncoder {
	// Used through EncodeAll only, so no stream writer is attached.
	zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("encoding: zstd writer: %v", err))
	}
	return &RecordEncoder{zw: zw}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *RecordEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeKey returns the storage key for a request URI
func (e *RecordEncoder) EncodeKey(uri string) store.Key {
	return store.Key(e.Hash128(uri))
}

// EncodeEntry writes the fixed-size header followed by the URI
func (e *RecordEncoder) EncodeEntry(entry store.Entry) []byte {
	buf := make([]byte, EntryHeaderSize+len(entry.URI))
	buf[0] = entryVersion
	binary.BigEndian.PutUint64(buf[1:9], uint64(entry.FetchedAt.UnixNano()))
	binary.BigEndian.PutUint32(buf[9:13], uint32(entry.StatusCode))
	binary.BigEndian.PutUint32(buf[13:17], uint32(entry.Subjects))
	binary.BigEndian.PutUint32(buf[17:21], uint32(entry.Size))
	copy(buf[EntryHeaderSize:], entry.URI)
	return buf
}

// EncodePayload writes the payload's JSON document, zstd compressed
func (e *RecordEncoder) EncodePayload(payload *graph.Payload) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil payload")
	}
	doc, err := payload.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return e.zw.EncodeAll(doc, make([]byte, 0, len(doc)/4)), nil
}
