package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/aleksaelezovic/grom/pkg/graph"
)

// Entry is the listing header of an archived payload
type Entry struct {
	URI        string    `json:"uri"`
	FetchedAt  time.Time `json:"fetched_at"`
	StatusCode int       `json:"status_code"`
	Subjects   int       `json:"subjects"`
	Size       int       `json:"size"`
}

// Record is an archived payload with its header
type Record struct {
	Entry
	Payload *graph.Payload
}

// Archive persists raw payloads keyed by the URI they were fetched from.
// It is a record of past fetches, not a cache: nothing reads from it on the
// fetch path.
type Archive struct {
	storage Storage
	encoder RecordEncoder
	decoder RecordDecoder
	now     func() time.Time
}

// NewArchive creates an archive on top of storage
func NewArchive(storage Storage, encoder RecordEncoder, decoder RecordDecoder) *Archive {
	return &Archive{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
		now:     time.Now,
	}
}

// Close closes the underlying storage
func (a *Archive) Close() error {
	return a.storage.Close()
}

// Save stores payload under uri, replacing any earlier record.
func (a *Archive) Save(uri string, payload *graph.Payload) (Entry, error) {
	if uri == "" {
		return Entry{}, errors.New("archive: empty uri")
	}

	data, err := a.encoder.EncodePayload(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode payload for %s: %w", uri, err)
	}

	entry := Entry{
		URI:        uri,
		FetchedAt:  a.now().UTC(),
		StatusCode: payload.StatusCode,
		Subjects:   len(payload.Subjects),
		Size:       len(data),
	}
	key := a.encoder.EncodeKey(uri)

	txn, err := a.storage.Begin(true)
	if err != nil {
		return Entry{}, err
	}
	defer txn.Rollback()

	if err := txn.Set(TableEntries, key[:], a.encoder.EncodeEntry(entry)); err != nil {
		return Entry{}, fmt.Errorf("failed to store entry for %s: %w", uri, err)
	}
	if err := txn.Set(TablePayloads, key[:], data); err != nil {
		return Entry{}, fmt.Errorf("failed to store payload for %s: %w", uri, err)
	}

	if err := txn.Commit(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Load returns the record archived for uri, or ErrNotFound.
func (a *Archive) Load(uri string) (*Record, error) {
	key := a.encoder.EncodeKey(uri)

	txn, err := a.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	rawEntry, err := txn.Get(TableEntries, key[:])
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", uri, err)
	}
	entry, err := a.decoder.DecodeEntry(rawEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry for %s: %w", uri, err)
	}

	rawPayload, err := txn.Get(TablePayloads, key[:])
	if err != nil {
		return nil, fmt.Errorf("load payload %s: %w", uri, err)
	}
	payload, err := a.decoder.DecodePayload(rawPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload for %s: %w", uri, err)
	}

	return &Record{Entry: entry, Payload: payload}, nil
}

// Delete removes the record for uri. Deleting a missing record returns
// ErrNotFound.
func (a *Archive) Delete(uri string) error {
	key := a.encoder.EncodeKey(uri)

	txn, err := a.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if _, err := txn.Get(TableEntries, key[:]); err != nil {
		return fmt.Errorf("delete %s: %w", uri, err)
	}
	if err := txn.Delete(TableEntries, key[:]); err != nil {
		return err
	}
	if err := txn.Delete(TablePayloads, key[:]); err != nil {
		return err
	}

	return txn.Commit()
}
