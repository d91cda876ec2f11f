package kv

import (
	"go.dedis.ch/ledger/core/store"
)

// bucketSnapshot exposes a bucket of an open database transaction as a store
// snapshot. It is only valid for the lifetime of the transaction that opened
// the bucket.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// NewSnapshot returns a snapshot on top of the bucket.
func NewSnapshot(bucket Bucket) store.Snapshot {
	return bucketSnapshot{bucket: bucket}
}

// Get implements store.Readable. It returns the value of the key, or nil if it
// is not set.
func (s bucketSnapshot) Get(key []byte) ([]byte, error) {
	return s.bucket.Get(key), nil
}

// Set implements store.Writable. It sets the value for the key.
func (s bucketSnapshot) Set(key, value []byte) error {
	return s.bucket.Set(key, value)
}

// Delete implements store.Writable. It deletes the key from the bucket.
func (s bucketSnapshot) Delete(key []byte) error {
	return s.bucket.Delete(key)
}
