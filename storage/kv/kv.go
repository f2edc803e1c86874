// Package kv contains a generic interface for key-value databases
// with support for batch writes. All operations are safe for
// concurrent use, atomic and synchronously persistent.
package kv

// DB is an abstract key-value store. All operations are assumed to
// be synchronous, atomic and linearizable. This includes the
// following guarantee: after Put(k, v) has returned, and as long as
// no other Put(k, ?) has happened, Get(k) MUST always return v,
// regardless of whether the process or the entire system has been
// reset in the meantime. To amortize the overhead of synchronous
// writes, DB offers batch operations: Write(...) performs a series
// of Put-s and Delete-s atomically.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	Close() error

	ErrNotFound() error
}

// A Batch contains a sequence of Put-s and Delete-s waiting to be
// Write-n to a DB.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
}
