// Package crypto defines the cryptographic primitives needed by the ledger:
// hash factories for deterministic digests and the signer abstraction used to
// authenticate transactions.
package crypto

import (
	"crypto/sha256"
	"encoding"
	"hash"
)

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}

// Sha256Factory is a hash factory producing SHA-256 digests.
//
// - implements crypto.HashFactory
type Sha256Factory struct{}

// NewSha256Factory returns a new instance of the factory.
func NewSha256Factory() Sha256Factory {
	return Sha256Factory{}
}

// New implements crypto.HashFactory. It returns a new SHA-256 instance.
func (f Sha256Factory) New() hash.Hash {
	return sha256.New()
}

// PublicKey is a public identity that can verify a signature. Its binary
// representation is used as the address of the identity on the ledger.
type PublicKey interface {
	encoding.BinaryMarshaler
	encoding.TextMarshaler

	// Verify returns nil if the signature matches the message for this public
	// key.
	Verify(msg []byte, signature Signature) error

	// Equal returns true when the other object is the same public key.
	Equal(other interface{}) bool
}

// Signature is a verifiable element for a unique message.
type Signature interface {
	encoding.BinaryMarshaler

	// Equal returns true when the other object is the same signature.
	Equal(other Signature) bool
}

// Signer provides the primitives to sign and verify messages.
type Signer interface {
	// GetPublicKey returns the public key of the signer.
	GetPublicKey() PublicKey

	// Sign returns the signature of the message.
	Sign(msg []byte) (Signature, error)
}

// PublicKeyFactory is a factory to decode public keys.
type PublicKeyFactory interface {
	// FromBytes returns the public key of the data.
	FromBytes(data []byte) (PublicKey, error)
}
