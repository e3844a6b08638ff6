package encoding

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/store"
)

// RecordDecoder handles decoding of archive records
type RecordDecoder struct {
	zr *zstd.Decoder
}

// NewRecordDecoder creates a new record decoder
func NewRecordDecoder() *RecordDecoder {
	zr, err := zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("encoding: zstd reader: %v", err))
	}
	return &RecordDecoder{zr: zr}
}

// DecodeEntry decodes an entry header written by EncodeEntry
func (d *RecordDecoder) DecodeEntry(data []byte) (store.Entry, error) {
	if len(data) < EntryHeaderSize {
		return store.Entry{}, fmt.Errorf("entry too short: %d bytes", len(data))
	}
	if data[0] != entryVersion {
		return store.Entry{}, fmt.Errorf("unknown entry version %d", data[0])
	}

	return store.Entry{
		FetchedAt:  time.Unix(0, int64(binary.BigEndian.Uint64(data[1:9]))).UTC(),
		StatusCode: int(binary.BigEndian.Uint32(data[9:13])),
		Subjects:   int(binary.BigEndian.Uint32(data[13:17])),
		Size:       int(binary.BigEndian.Uint32(data[17:21])),
		URI:        string(data[EntryHeaderSize:]),
	}, nil
}

// DecodePayload decompresses and decodes a payload written by EncodePayload
func (d *RecordDecoder) DecodePayload(data []byte) (*graph.Payload, error) {
	doc, err := d.zr.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return graph.DecodePayload(doc)
}
