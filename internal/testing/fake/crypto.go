package fake

import (
	"go.dedis.ch/ledger/crypto"
)

// PublicKey is a fake implementation of a public key.
//
// - implements crypto.PublicKey
type PublicKey struct {
	err error
}

// NewBadPublicKey returns a public key that always returns errors.
func NewBadPublicKey() PublicKey {
	return PublicKey{err: fakeErr}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return []byte("PK"), pk.err
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte("fake.PublicKey"), pk.err
}

// Verify implements crypto.PublicKey.
func (pk PublicKey) Verify([]byte, crypto.Signature) error {
	return pk.err
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other interface{}) bool {
	_, ok := other.(PublicKey)
	return ok
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string {
	return "fake.PublicKey"
}

// Signature is a fake implementation of a signature.
//
// - implements crypto.Signature
type Signature struct {
	err error
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig Signature) MarshalBinary() ([]byte, error) {
	return []byte("SIG"), sig.err
}

// Equal implements crypto.Signature.
func (sig Signature) Equal(other crypto.Signature) bool {
	_, ok := other.(Signature)
	return ok
}

// Signer is a fake implementation of a signer.
//
// - implements crypto.Signer
type Signer struct {
	pubkey PublicKey
	err    error
}

// NewSigner returns a new fake signer.
func NewSigner() Signer {
	return Signer{}
}

// NewBadSigner returns a signer that always returns errors when signing.
func NewBadSigner() Signer {
	return Signer{err: fakeErr}
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return s.pubkey
}

// Sign implements crypto.Signer.
func (s Signer) Sign([]byte) (crypto.Signature, error) {
	return Signature{}, s.err
}

// NewSignerWithPublicKey returns a signer that exposes the given public key.
func NewSignerWithPublicKey(pk PublicKey) Signer {
	return Signer{pubkey: pk}
}
