// Package crypto implements ArchiveChain's cryptographic core (spec §4.1):
// secp256k1 keypairs and address derivation, canonical-JSON transaction
// signing and verification, CSPRNG challenge generation, and PBKDF2 salted
// integrity checksums.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const addressPrefix = "arc"

// PrivateKey wraps a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 verification key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// GenerateKey draws a new secp256k1 keypair from the CSPRNG.
func GenerateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
	if err != nil {
		return nil, newErr(ErrInvalidPrivateKey, err.Error())
	}
	return &PrivateKey{key: k}, nil
}

// PrivateKeyFromBytes parses a 32-byte scalar as a secp256k1 private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, newErr(ErrInvalidPrivateKey, "private key must be 32 bytes")
	}
	k := secp256k1.PrivKeyFromBytes(b)
	if k == nil {
		return nil, newErr(ErrInvalidPrivateKey, "could not parse scalar")
	}
	return &PrivateKey{key: k}, nil
}

// Bytes returns the 32-byte scalar encoding of the private key.
func (p *PrivateKey) Bytes() []byte {
	return p.key.Serialize()
}

// Public returns the corresponding public key.
func (p *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// PublicKeyFromBytes parses a compressed or uncompressed secp256k1 point.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, newErr(ErrInvalidPublicKey, err.Error())
	}
	return &PublicKey{key: pk}, nil
}

// Uncompressed returns the 65-byte uncompressed point encoding (0x04 ‖ X ‖ Y).
func (p *PublicKey) Uncompressed() []byte {
	return p.key.SerializeUncompressed()
}

// Compressed returns the 33-byte compressed point encoding.
func (p *PublicKey) Compressed() []byte {
	return p.key.SerializeCompressed()
}

// Address derives the arc-prefixed address for this public key:
// SHA-256(SHA-256(uncompressed_pubkey))[..20], hex-encoded with prefix "arc".
func (p *PublicKey) Address() string {
	return AddressFromUncompressed(p.Uncompressed())
}

// AddressFromUncompressed derives an address from a raw uncompressed pubkey.
func AddressFromUncompressed(uncompressed []byte) string {
	first := sha256.Sum256(uncompressed)
	second := sha256.Sum256(first[:])
	return addressPrefix + hex.EncodeToString(second[:20])
}

// Registry maps addresses to their registered public keys. Registration is
// rejected if the derived address does not equal the claimed address.
//
// Instances are constructed once per chain (spec §9 "no hidden process-wide
// state") and threaded explicitly into whatever component needs to verify
// signatures.
type Registry struct {
	mu   sync.RWMutex
	keys map[string]*PublicKey
}

// NewRegistry constructs an empty public-key registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]*PublicKey)}
}

// Register associates address with pubkey, failing if the derivation does
// not match.
func (r *Registry) Register(address string, pubkey *PublicKey) error {
	if pubkey == nil {
		return newErr(ErrInvalidPublicKey, "nil public key")
	}
	if pubkey.Address() != address {
		return newErr(ErrAddressMismatch, "derived address does not match claimed address")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[address] = pubkey
	return nil
}

// Lookup returns the registered public key for address, if any.
func (r *Registry) Lookup(address string) (*PublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.keys[address]
	return pk, ok
}

// ConstantTimeEqual reports whether a and b are byte-identical, in time
// independent of where they first differ.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
