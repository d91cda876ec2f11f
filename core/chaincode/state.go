package chaincode

import (
	"go.dedis.ch/ledger/core/store"
	"go.dedis.ch/ledger/core/store/prefixed"
	"golang.org/x/xerrors"
)

// StateAdapter is the scoped view of the ledger state presented to a chaincode
// during an execution window. The keys are opaque bytes scoped to the
// chaincode, so two chaincodes can use the same key without interfering.
type StateAdapter interface {
	// Get returns the value of the key, or nil if the key is absent.
	Get(key []byte) ([]byte, error)

	// Set assigns the value to the key.
	Set(key []byte, value []byte) error

	// Exists returns true when the key is set.
	Exists(key []byte) (bool, error)
}

// snapshotAdapter is a state adapter on top of a store snapshot that scopes
// every key to the name of the chaincode.
//
// - implements chaincode.StateAdapter
type snapshotAdapter struct {
	snap store.Snapshot
}

// NewSnapshotAdapter creates a state adapter for the chaincode of the given
// name on top of the snapshot.
func NewSnapshotAdapter(name string, snap store.Snapshot) StateAdapter {
	return snapshotAdapter{
		snap: prefixed.NewSnapshot(name, snap),
	}
}

// Get implements chaincode.StateAdapter. It returns the value of the key
// inside the scope of the chaincode, or nil if the key is absent.
func (a snapshotAdapter) Get(key []byte) ([]byte, error) {
	value, err := a.snap.Get(key)
	if err != nil {
		return nil, xerrors.Errorf("failed to read key: %v", err)
	}

	return value, nil
}

// Set implements chaincode.StateAdapter. It assigns the value to the key
// inside the scope of the chaincode.
func (a snapshotAdapter) Set(key []byte, value []byte) error {
	err := a.snap.Set(key, value)
	if err != nil {
		return xerrors.Errorf("failed to write key: %v", err)
	}

	return nil
}

// Exists implements chaincode.StateAdapter. It returns true when the key is
// set inside the scope of the chaincode.
func (a snapshotAdapter) Exists(key []byte) (bool, error) {
	value, err := a.snap.Get(key)
	if err != nil {
		return false, xerrors.Errorf("failed to read key: %v", err)
	}

	return value != nil, nil
}
