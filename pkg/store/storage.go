package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction is a snapshot-isolated unit of work against Storage
type Transaction interface {
	// Get retrieves a value by key, or ErrNotFound
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Delete removes a key
	Delete(table Table, key []byte) error

	// Scan iterates over the keys of table in [start, end).
	// A nil start begins at the first key, a nil end runs to the last.
	Scan(table Table, start, end []byte) (Iterator, error)

	Commit() error

	// Rollback discards the transaction. It is safe after Commit.
	Rollback() error
}

// Iterator iterates over key-value pairs
type Iterator interface {
	Next() bool

	// Key returns the current key without its table prefix
	Key() []byte

	Value() ([]byte, error)

	Close() error
}

// Table is a logical key namespace inside Storage
type Table byte

const (
	// Archive entry headers: uri hash -> fetched-at, status, uri
	TableEntries Table = iota

	// Archived payload documents: uri hash -> compressed payload
	TablePayloads

	// Total number of tables
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableEntries:
		return "entries"
	case TablePayloads:
		return "payloads"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}
