// Package store defines the primitives of a simple key/value storage.
//
// A snapshot is the view of the storage at a given point of the chain. All the
// state accessed by a chaincode during an execution goes through a snapshot so
// that every node applies the same mutations in the same order.
package store

// Readable is the interface for a readable store.
type Readable interface {
	// Get returns the value associated to the key, or nil if it is not set.
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}
