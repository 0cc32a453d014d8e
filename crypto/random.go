package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const challengeSecretBytes = 32

// GenerateChallenge produces a fresh storage challenge for (nodeID, archiveID)
// bound to a timestamp: SHA-256(node_id ‖ archive_id ‖ now ‖ csprng_bytes)[..32]
// (spec §4.1). now is Unix seconds, supplied by the caller so this function
// never reads the wall clock itself.
func GenerateChallenge(nodeID, archiveID string, now uint64) (string, error) {
	secret := make([]byte, challengeSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("crypto: challenge entropy: %w", err)
	}
	var nowBytes [8]byte
	binary.BigEndian.PutUint64(nowBytes[:], now)

	buf := make([]byte, 0, len(nodeID)+len(archiveID)+8+len(secret))
	buf = append(buf, nodeID...)
	buf = append(buf, archiveID...)
	buf = append(buf, nowBytes[:]...)
	buf = append(buf, secret...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:32]), nil
}
