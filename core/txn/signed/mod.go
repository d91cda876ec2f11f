// Package signed is an implementation of the transaction abstraction.
//
// It uses a signature to make sure the identity owns the transaction. The
// nonce is a monotonically increasing number that is used to prevent a replay
// attack of an existing transaction.
package signed

import (
	"encoding/binary"
	"io"

	"go.dedis.ch/ledger/crypto"
	"golang.org/x/xerrors"
)

// Transaction is a signed transaction using a nonce to protect itself against
// replay attack.
//
// - implements txn.Transaction
type Transaction struct {
	nonce    uint64
	contract string
	action   string
	payload  []byte
	pubkey   crypto.PublicKey
	sig      crypto.Signature
	hash     []byte
}

type template struct {
	Transaction

	hashFactory crypto.HashFactory
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*template)

// WithPayload is an option to set the raw payload of the transaction.
func WithPayload(payload []byte) TransactionOption {
	return func(tmpl *template) {
		tmpl.payload = payload
	}
}

// WithHashFactory is an option to set a different hash factory when creating a
// transaction.
func WithHashFactory(f crypto.HashFactory) TransactionOption {
	return func(tmpl *template) {
		tmpl.hashFactory = f
	}
}

// NewTransaction creates a new transaction addressed to the action of the
// contract, signed by the signer.
func NewTransaction(nonce uint64, contract, action string,
	signer crypto.Signer, opts ...TransactionOption) (*Transaction, error) {

	tmpl := template{
		Transaction: Transaction{
			nonce:    nonce,
			contract: contract,
			action:   action,
			pubkey:   signer.GetPublicKey(),
		},
		hashFactory: crypto.NewSha256Factory(),
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	h := tmpl.hashFactory.New()

	err := tmpl.Fingerprint(h)
	if err != nil {
		return nil, xerrors.Errorf("couldn't fingerprint tx: %v", err)
	}

	tmpl.hash = h.Sum(nil)

	tmpl.sig, err = signer.Sign(tmpl.hash)
	if err != nil {
		return nil, xerrors.Errorf("couldn't sign tx: %v", err)
	}

	return &tmpl.Transaction, nil
}

// GetID implements txn.Transaction. It returns the digest of the transaction.
func (t *Transaction) GetID() []byte {
	return append([]byte{}, t.hash...)
}

// GetNonce implements txn.Transaction. It returns the nonce of the
// transaction.
func (t *Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetContract implements txn.Transaction. It returns the name of the chaincode
// the transaction is addressed to.
func (t *Transaction) GetContract() string {
	return t.contract
}

// GetAction implements txn.Transaction. It returns the name of the handler to
// dispatch to.
func (t *Transaction) GetAction() string {
	return t.action
}

// GetPayload implements txn.Transaction. It returns the raw payload.
func (t *Transaction) GetPayload() []byte {
	return t.payload
}

// GetIdentity implements txn.Transaction. It returns the public key of the
// signer.
func (t *Transaction) GetIdentity() crypto.PublicKey {
	return t.pubkey
}

// GetSignature returns the signature of the transaction.
func (t *Transaction) GetSignature() crypto.Signature {
	return t.sig
}

// Verify returns nil when the signature matches the digest of the transaction
// for the identity that created it.
func (t *Transaction) Verify() error {
	err := t.pubkey.Verify(t.hash, t.sig)
	if err != nil {
		return xerrors.Errorf("invalid tx signature: %v", err)
	}

	return nil
}

// Fingerprint implements txn.Fingerprinter. It writes a deterministic binary
// representation of the transaction, signature excluded.
func (t *Transaction) Fingerprint(w io.Writer) error {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, t.nonce)

	_, err := w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write nonce: %v", err)
	}

	err = writeChunk(w, []byte(t.contract))
	if err != nil {
		return xerrors.Errorf("couldn't write contract: %v", err)
	}

	err = writeChunk(w, []byte(t.action))
	if err != nil {
		return xerrors.Errorf("couldn't write action: %v", err)
	}

	err = writeChunk(w, t.payload)
	if err != nil {
		return xerrors.Errorf("couldn't write payload: %v", err)
	}

	key, err := t.pubkey.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("couldn't marshal identity: %v", err)
	}

	err = writeChunk(w, key)
	if err != nil {
		return xerrors.Errorf("couldn't write identity: %v", err)
	}

	return nil
}

// writeChunk writes the data to the writer preceded by its length so that the
// fingerprint of two transactions can only collide when every field is equal.
func writeChunk(w io.Writer, data []byte) error {
	buffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(buffer, uint32(len(data)))

	_, err := w.Write(buffer)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
