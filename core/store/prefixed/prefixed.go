// Package prefixed implements a snapshot that isolates the keys of a scope
// from the other scopes sharing the same underlying snapshot.
//
// The executor gives each chaincode a prefixed snapshot built from its name so
// that two chaincodes can never read or write each other's keys.
package prefixed

import (
	"encoding/binary"

	"go.dedis.ch/ledger/core/store"
	"go.dedis.ch/ledger/crypto"
)

type readable struct {
	store.Readable
	prefix []byte
}

type writable struct {
	store.Writable
	prefix []byte
}

type snapshot struct {
	*writable
	*readable
}

// NewSnapshot creates a snapshot that scopes every key to the given prefix.
func NewSnapshot(prefix string, snap store.Snapshot) store.Snapshot {
	p := []byte(prefix)
	return &snapshot{
		&writable{snap, p},
		&readable{snap, p},
	}
}

// NewReadable creates a readable store that scopes every key to the given
// prefix.
func NewReadable(prefix string, r store.Readable) store.Readable {
	return &readable{r, []byte(prefix)}
}

// Get implements store.Readable. It reads the prefixed key from the underlying
// store.
func (s *readable) Get(key []byte) ([]byte, error) {
	return s.Readable.Get(NewPrefixedKey(s.prefix, key))
}

// Set implements store.Writable. It writes the value to the prefixed key of
// the underlying store.
func (s *writable) Set(key []byte, value []byte) error {
	return s.Writable.Set(NewPrefixedKey(s.prefix, key), value)
}

// Delete implements store.Writable. It deletes the prefixed key from the
// underlying store.
func (s *writable) Delete(key []byte) error {
	return s.Writable.Delete(NewPrefixedKey(s.prefix, key))
}

// NewPrefixedKey creates a 256-bit key from a prefix and a base key. The
// lengths are included in the digest so that two different (prefix, key) pairs
// can never collide by moving bytes from one to the other.
func NewPrefixedKey(prefix, key []byte) []byte {
	h := crypto.NewSha256Factory().New()

	length := make([]byte, 2)
	binary.LittleEndian.PutUint16(length, uint16(len(prefix)))

	h.Write(length)
	h.Write(prefix)

	length = make([]byte, 2)
	binary.LittleEndian.PutUint16(length, uint16(len(key)))

	h.Write(length)
	h.Write(key)

	return h.Sum(nil)
}
