package consensus

import (
	"testing"

	"github.com/archivechain/archivechain/crypto"
)

func TestStorageProofLifecycle(t *testing.T) {
	store := NewChallengeStore()
	const checksum = "deadbeefcafe"
	challenge, err := store.Issue("node-a", "archive-1", 1000)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	proof := StorageProof{
		NodeID:    "node-a",
		ArchiveID: "archive-1",
		Challenge: challenge,
		Response:  crypto.StorageChallengeResponse(checksum, challenge),
		FileSize:  2 * GiB,
		Timestamp: 1005,
	}
	if err := VerifyStorageProof(store, proof, checksum, 1005); err != nil {
		t.Fatalf("expected proof to verify, got %v", err)
	}

	// Replaying the same proof must fail: the challenge was consumed.
	if err := VerifyStorageProof(store, proof, checksum, 1006); err == nil {
		t.Fatal("expected replayed proof to be rejected")
	}
}

func TestStorageProofRejectsExpiredChallenge(t *testing.T) {
	store := NewChallengeStore()
	challenge, err := store.Issue("node-a", "archive-1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	proof := StorageProof{
		NodeID:    "node-a",
		ArchiveID: "archive-1",
		Challenge: challenge,
		Response:  crypto.StorageChallengeResponse("checksum", challenge),
		FileSize:  2 * GiB,
	}
	if err := VerifyStorageProof(store, proof, "checksum", challengeTTLSeconds+1); err == nil {
		t.Fatal("expected expired challenge to be rejected")
	}
}

func TestStorageProofRejectsUndersizedFile(t *testing.T) {
	store := NewChallengeStore()
	challenge, err := store.Issue("node-a", "archive-1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	proof := StorageProof{
		NodeID:    "node-a",
		ArchiveID: "archive-1",
		Challenge: challenge,
		Response:  crypto.StorageChallengeResponse("checksum", challenge),
		FileSize:  1024,
	}
	if err := VerifyStorageProof(store, proof, "checksum", 10); err == nil {
		t.Fatal("expected undersized file to be rejected")
	}
}

func TestStorageProofRejectsWrongResponse(t *testing.T) {
	store := NewChallengeStore()
	challenge, err := store.Issue("node-a", "archive-1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	proof := StorageProof{
		NodeID:    "node-a",
		ArchiveID: "archive-1",
		Challenge: challenge,
		Response:  "not-the-right-response",
		FileSize:  2 * GiB,
	}
	if err := VerifyStorageProof(store, proof, "checksum", 10); err == nil {
		t.Fatal("expected mismatched response to be rejected")
	}
}
