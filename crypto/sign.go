package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// CanonicalJSON produces the stable signing form of v: marshaled to JSON,
// decoded to a generic map so the "signature" field can be dropped, then
// re-marshaled. encoding/json sorts map keys alphabetically, which gives the
// sorted-keys / no-whitespace canonical form spec §4.1 requires.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "signature")
	return json.Marshal(m)
}

// CanonicalHash is SHA-256 of the canonical JSON form.
func CanonicalHash(v any) ([32]byte, error) {
	canon, err := CanonicalJSON(v)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(canon), nil
}

// Sign signs v's canonical hash with priv and returns a base64-encoded DER
// signature.
func Sign(priv *PrivateKey, v any) (string, error) {
	hash, err := CanonicalHash(v)
	if err != nil {
		return "", err
	}
	sig := ecdsa.Sign(priv.key, hash[:])
	return base64.StdEncoding.EncodeToString(sig.Serialize()), nil
}

// Verify recomputes v's canonical hash and verifies sig (base64 DER) against
// the public key registered for sender. Comparison of the recovered validity
// bit is inherently constant-time in the underlying ECDSA verification; the
// signature bytes themselves are never compared directly.
func Verify(registry *Registry, sender string, sig string, v any) error {
	pub, ok := registry.Lookup(sender)
	if !ok {
		return newErr(ErrUnregisteredAddr, sender)
	}
	return VerifyWithKey(pub, sig, v)
}

// VerifyWithKey verifies sig against an explicit public key, bypassing the
// registry. Used by callers that already hold the key (e.g. registration).
func VerifyWithKey(pub *PublicKey, sig string, v any) error {
	sigBytes, err := base64.StdEncoding.DecodeString(sig)
	if err != nil || len(sigBytes) == 0 {
		return newErr(ErrInvalidSignature, "malformed signature encoding")
	}
	parsed, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return newErr(ErrInvalidSignature, "malformed signature")
	}
	hash, err := CanonicalHash(v)
	if err != nil {
		return newErr(ErrInvalidSignature, err.Error())
	}
	if !parsed.Verify(hash[:], pub.key) {
		return newErr(ErrInvalidSignature, "signature does not verify")
	}
	return nil
}

// VerifyMultisig counts how many of the given (address, signature) pairs
// verify against v, using registry for key lookup, and reports whether at
// least threshold of them are valid. Unknown addresses or malformed
// signatures simply do not count; they are not treated as fatal.
func VerifyMultisig(registry *Registry, v any, sigs map[string]string, threshold int) bool {
	valid := 0
	for addr, sig := range sigs {
		if Verify(registry, addr, sig, v) == nil {
			valid++
		}
	}
	return valid >= threshold
}
