package nodeview

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"
)

// peerStaleSeconds is how long a peer may go unseen before maintenance
// drops it (spec §4.9 "drop peers unseen > 5 min").
const peerStaleSeconds = 5 * 60

// PeerRecord is a known peer's connectivity bookkeeping (spec §4.9).
type PeerRecord struct {
	NodeID      string  `json:"node_id"`
	LastSeen    uint64  `json:"last_seen"`
	LatencyMs   float64 `json:"latency_ms"`
	Fingerprint string  `json:"fingerprint"`
}

// peerFingerprint derives a short diagnostic tag for a peer ID: this is
// never consulted for consensus or address derivation (that is
// crypto.AddressFromUncompressed's job) — it exists purely so operators
// scanning logs or the peer table can spot a node ID that was re-used
// across two different connections.
func peerFingerprint(nodeID string) string {
	sum := sha3.Sum256([]byte(nodeID))
	return hex.EncodeToString(sum[:8])
}

func (s *store) upsertPeer(p PeerRecord) error {
	p.Fingerprint = peerFingerprint(p.NodeID)
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.put(bucketPeers, p.NodeID, raw)
}

func (s *store) listPeers() ([]PeerRecord, error) {
	var out []PeerRecord
	err := s.forEach(bucketPeers, func(_ string, value []byte) error {
		var p PeerRecord
		if err := json.Unmarshal(value, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// dropStalePeers removes peers unseen for more than peerStaleSeconds.
func (s *store) dropStalePeers(now uint64) error {
	peers, err := s.listPeers()
	if err != nil {
		return err
	}
	for _, p := range peers {
		if age(now, p.LastSeen) > peerStaleSeconds {
			if err := s.delete(bucketPeers, p.NodeID); err != nil {
				return err
			}
		}
	}
	return nil
}
