package fake

import (
	"io"

	"go.dedis.ch/ledger/crypto"
)

// Tx is a fake implementation of a transaction.
//
// - implements txn.Transaction
type Tx struct {
	Nonce    uint64
	Contract string
	Action   string
	Payload  []byte
	Identity crypto.PublicKey
}

// NewTx returns a transaction addressed to the action of the contract with the
// given payload.
func NewTx(contract, action string, payload []byte) Tx {
	return Tx{
		Contract: contract,
		Action:   action,
		Payload:  payload,
		Identity: PublicKey{},
	}
}

// GetID implements txn.Transaction.
func (tx Tx) GetID() []byte {
	return []byte{0xab}
}

// GetNonce implements txn.Transaction.
func (tx Tx) GetNonce() uint64 {
	return tx.Nonce
}

// GetContract implements txn.Transaction.
func (tx Tx) GetContract() string {
	return tx.Contract
}

// GetAction implements txn.Transaction.
func (tx Tx) GetAction() string {
	return tx.Action
}

// GetPayload implements txn.Transaction.
func (tx Tx) GetPayload() []byte {
	return tx.Payload
}

// GetIdentity implements txn.Transaction.
func (tx Tx) GetIdentity() crypto.PublicKey {
	return tx.Identity
}

// Fingerprint implements txn.Fingerprinter.
func (tx Tx) Fingerprint(w io.Writer) error {
	_, err := w.Write(tx.Payload)
	return err
}
