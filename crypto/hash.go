package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2SaltBytes  = 32
	pbkdf2KeyBytes   = 32
	checksumTag      = "pbkdf2_sha256_"
)

// SaltStore caches the per-identifier salts used to compute PBKDF2 integrity
// checksums (spec §4.1). Salts are drawn from the CSPRNG once per identifier
// and reused on every subsequent checksum/verify call for that identifier.
type SaltStore struct {
	mu    sync.Mutex
	salts map[string][]byte
}

// NewSaltStore constructs an empty salt cache.
func NewSaltStore() *SaltStore {
	return &SaltStore{salts: make(map[string][]byte)}
}

// SaltFor returns the cached salt for id, generating and caching one if
// absent.
func (s *SaltStore) SaltFor(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if salt, ok := s.salts[id]; ok {
		return salt, nil
	}
	salt := make([]byte, pbkdf2SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: salt entropy: %w", err)
	}
	s.salts[id] = salt
	return salt, nil
}

// SaltedChecksum computes the PBKDF2-HMAC-SHA256 integrity checksum for
// content under id's cached salt, 100,000 iterations, tagged
// "pbkdf2_sha256_<hex>".
func (s *SaltStore) SaltedChecksum(id string, content []byte) (string, error) {
	salt, err := s.SaltFor(id)
	if err != nil {
		return "", err
	}
	return saltedChecksum(salt, content), nil
}

// VerifyChecksum recomputes the checksum for content under id's cached salt
// and compares it to checksum in constant time.
func (s *SaltStore) VerifyChecksum(id string, content []byte, checksum string) (bool, error) {
	salt, err := s.SaltFor(id)
	if err != nil {
		return false, err
	}
	want := saltedChecksum(salt, content)
	return ConstantTimeEqual([]byte(want), []byte(checksum)), nil
}

func saltedChecksum(salt, content []byte) string {
	sum := pbkdf2.Key(content, salt, pbkdf2Iterations, pbkdf2KeyBytes, sha256.New)
	return checksumTag + hex.EncodeToString(sum)
}

// IsSaltedChecksum reports whether s has the pbkdf2_sha256_ tag.
func IsSaltedChecksum(s string) bool {
	return strings.HasPrefix(s, checksumTag)
}

// StorageChallengeResponse computes the raw (unsalted) response for a
// storage proof: SHA-256(expected_checksum ‖ challenge) (spec §4.6). This is
// deliberately distinct from SaltedChecksum — the two schemes are not
// unified, per spec §9's note on the divergence.
func StorageChallengeResponse(expectedChecksum, challenge string) string {
	sum := sha256.Sum256([]byte(expectedChecksum + challenge))
	return hex.EncodeToString(sum[:])
}
