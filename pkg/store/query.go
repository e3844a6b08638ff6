package store

import (
	"fmt"
	"slices"
	"strings"
)

// EntryIterator iterates over archive entries in key order
type EntryIterator interface {
	Next() bool
	Entry() (Entry, error)
	Close() error
}

// Entries opens an iterator over every archived entry. The caller must
// close it.
func (a *Archive) Entries() (EntryIterator, error) {
	txn, err := a.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	it, err := txn.Scan(TableEntries, nil, nil)
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}

	return &entryIterator{archive: a, txn: txn, it: it}, nil
}

// List returns every archived entry whose URI contains filter, most recently
// fetched first. An empty filter matches everything.
func (a *Archive) List(filter string) ([]Entry, error) {
	iter, err := a.Entries()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.Next() {
		entry, err := iter.Entry()
		if err != nil {
			return nil, err
		}
		if filter != "" && !strings.Contains(entry.URI, filter) {
			continue
		}
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(x, y Entry) int {
		if c := y.FetchedAt.Compare(x.FetchedAt); c != 0 {
			return c
		}
		return strings.Compare(x.URI, y.URI)
	})
	return entries, nil
}

// Count returns the number of archived payloads
func (a *Archive) Count() (int, error) {
	txn, err := a.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableEntries, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	return count, nil
}

type entryIterator struct {
	archive *Archive
	txn     Transaction
	it      Iterator
}

func (i *entryIterator) Next() bool {
	return i.it.Next()
}

func (i *entryIterator) Entry() (Entry, error) {
	value, err := i.it.Value()
	if err != nil {
		return Entry{}, err
	}
	entry, err := i.archive.decoder.DecodeEntry(value)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry %x: %w", i.it.Key(), err)
	}
	return entry, nil
}

func (i *entryIterator) Close() error {
	if err := i.it.Close(); err != nil {
		_ = i.txn.Rollback()
		return err
	}
	return i.txn.Rollback()
}
