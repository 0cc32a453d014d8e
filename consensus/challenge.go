package consensus

import (
	"sync"

	"github.com/archivechain/archivechain/crypto"
)

// ChallengeStore tracks live storage challenges keyed by (node, archive),
// one outstanding challenge per pair (spec §4.6). A verified challenge is
// consumed; an expired one is dropped on next access.
type ChallengeStore struct {
	mu      sync.Mutex
	records map[string]*challengeRecord
}

type challengeRecord struct {
	challenge string
	issuedAt  uint64
	consumed  bool
}

func challengeKey(nodeID, archiveID string) string {
	return nodeID + "|" + archiveID
}

// NewChallengeStore constructs an empty challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{records: make(map[string]*challengeRecord)}
}

// Issue draws a fresh CSPRNG-backed challenge for (nodeID, archiveID),
// replacing any prior outstanding challenge for the same pair.
func (s *ChallengeStore) Issue(nodeID, archiveID string, now uint64) (string, error) {
	challenge, err := crypto.GenerateChallenge(nodeID, archiveID, now)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[challengeKey(nodeID, archiveID)] = &challengeRecord{challenge: challenge, issuedAt: now}
	return challenge, nil
}

// VerifyStorageProof checks p against the spec §4.6 StorageProof rules: a
// live, unconsumed challenge must exist for (node, archive), the response
// must match, the file must be at least 1 GiB, and checksum must equal the
// chain's recorded checksum for the archive. On success the challenge is
// consumed so it cannot be replayed.
func VerifyStorageProof(store *ChallengeStore, p StorageProof, chainChecksum string, now uint64) error {
	if p.FileSize < minFileSizeBytes {
		return newErr(ErrInvalidProof, "file size below 1 GiB minimum")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	key := challengeKey(p.NodeID, p.ArchiveID)
	rec, ok := store.records[key]
	if !ok || rec.consumed {
		return newErr(ErrChallengeExpired, "no live challenge for node/archive")
	}
	if now-rec.issuedAt > challengeTTLSeconds {
		delete(store.records, key)
		return newErr(ErrChallengeExpired, "challenge expired")
	}
	if rec.challenge != p.Challenge {
		return newErr(ErrInvalidProof, "challenge mismatch")
	}
	expected := crypto.StorageChallengeResponse(chainChecksum, p.Challenge)
	if p.Response != expected {
		return newErr(ErrInvalidProof, "response does not match expected checksum")
	}
	rec.consumed = true
	return nil
}
