// Package txn defines the abstraction of transactions.
//
// A transaction is a chaincode input. It is uniquely identifiable via a digest
// and it can be ordered with the nonce that acts as a sequence number. The
// payload carries the input of the handler the transaction is routed to,
// opaque to everything but the handler itself.
package txn

import (
	"io"

	"go.dedis.ch/ledger/crypto"
)

// Fingerprinter is an interface to write a deterministic binary representation
// of an object.
type Fingerprinter interface {
	// Fingerprint writes itself to the writer in a deterministic way.
	Fingerprint(w io.Writer) error
}

// Transaction is what triggers a chaincode execution by passing it as part of
// the input.
type Transaction interface {
	Fingerprinter

	// GetID returns the unique identifier for the transaction.
	GetID() []byte

	// GetNonce returns the nonce of the transaction which corresponds to the
	// sequence number of a unique identity.
	GetNonce() uint64

	// GetContract returns the name of the chaincode the transaction is
	// addressed to.
	GetContract() string

	// GetAction returns the name of the transaction handler to dispatch to.
	GetAction() string

	// GetPayload returns the raw payload of the transaction.
	GetPayload() []byte

	// GetIdentity returns the identity that created the transaction, or nil
	// for an anonymous transaction.
	GetIdentity() crypto.PublicKey
}
