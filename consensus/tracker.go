package consensus

import (
	"crypto/rand"
	"math/big"
	"sort"
	"sync"
)

// Tracker accumulates accepted proofs per node and derives PoA scores and
// validator elections from them (spec §4.6). All proof timestamps are
// caller-supplied Unix seconds; Tracker never reads the wall clock.
type Tracker struct {
	mu        sync.Mutex
	storage   map[string][]StorageProof
	bandwidth map[string][]BandwidthProof
	longevity map[string][]LongevityProof
}

// NewTracker constructs an empty score tracker.
func NewTracker() *Tracker {
	return &Tracker{
		storage:   make(map[string][]StorageProof),
		bandwidth: make(map[string][]BandwidthProof),
		longevity: make(map[string][]LongevityProof),
	}
}

// RecordStorageProof registers an already-verified storage proof.
func (t *Tracker) RecordStorageProof(p StorageProof) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.storage[p.NodeID] = append(t.storage[p.NodeID], p)
}

// RecordBandwidthProof registers an already-verified bandwidth proof.
func (t *Tracker) RecordBandwidthProof(p BandwidthProof) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bandwidth[p.NodeID] = append(t.bandwidth[p.NodeID], p)
}

// RecordLongevityProof registers an already-verified longevity proof.
func (t *Tracker) RecordLongevityProof(p LongevityProof) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.longevity[p.NodeID] = append(t.longevity[p.NodeID], p)
}

// GarbageCollect drops proofs older than their retention window relative to
// now: 7 days for storage/bandwidth, 30 days for longevity (spec §4.6).
func (t *Tracker) GarbageCollect(now uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for node, proofs := range t.storage {
		t.storage[node] = filterStorage(proofs, now, storageRetentionSeconds)
	}
	for node, proofs := range t.bandwidth {
		t.bandwidth[node] = filterBandwidth(proofs, now, storageRetentionSeconds)
	}
	for node, proofs := range t.longevity {
		t.longevity[node] = filterLongevity(proofs, now, longevityRetentionSeconds)
	}
}

func filterStorage(proofs []StorageProof, now uint64, retention uint64) []StorageProof {
	kept := proofs[:0:0]
	for _, p := range proofs {
		if age(now, p.Timestamp) <= retention {
			kept = append(kept, p)
		}
	}
	return kept
}

func filterBandwidth(proofs []BandwidthProof, now uint64, retention uint64) []BandwidthProof {
	kept := proofs[:0:0]
	for _, p := range proofs {
		if age(now, p.Timestamp) <= retention {
			kept = append(kept, p)
		}
	}
	return kept
}

func filterLongevity(proofs []LongevityProof, now uint64, retention uint64) []LongevityProof {
	kept := proofs[:0:0]
	for _, p := range proofs {
		if age(now, p.Timestamp) <= retention {
			kept = append(kept, p)
		}
	}
	return kept
}

func age(now, ts uint64) uint64 {
	if ts > now {
		return 0
	}
	return now - ts
}

// Score computes nodeID's current PoA score breakdown relative to now.
// Storage and bandwidth terms are aggregated over the trailing 24h window
// (spec §4.6 "over the last 24h unless noted"); longevity uses every
// currently-tracked (non-GC'd) record, since its own formula already
// duration-weights observations rather than fitting a fixed lookback.
func (t *Tracker) Score(nodeID string, now uint64) NodeScore {
	t.mu.Lock()
	defer t.mu.Unlock()

	var totalBytes int64
	var storageProofCount int
	for _, p := range t.storage[nodeID] {
		if age(now, p.Timestamp) <= scoringWindowSeconds {
			totalBytes += p.FileSize
			storageProofCount++
		}
	}

	var bwBytes, bwRequests int64
	var bwWeightedMs float64
	for _, p := range t.bandwidth[nodeID] {
		if age(now, p.Timestamp) <= scoringWindowSeconds {
			bwBytes += p.BytesServed
			bwRequests += p.RequestCount
			bwWeightedMs += p.AvgResponseTimeMs * float64(p.RequestCount)
		}
	}
	avgMs := 0.0
	if bwRequests > 0 {
		avgMs = bwWeightedMs / float64(bwRequests)
	}

	storage := storageScore(totalBytes, storageProofCount)
	bandwidth := bandwidthScore(bwBytes, bwRequests, avgMs)
	longevity := longevityScore(t.longevity[nodeID])

	return NodeScore{
		NodeID:    nodeID,
		Storage:   storage,
		Bandwidth: bandwidth,
		Longevity: longevity,
		Total:     totalScore(storage, bandwidth, longevity),
	}
}

// Nodes returns every node with at least one tracked proof of any kind.
func (t *Tracker) Nodes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool)
	for n := range t.storage {
		seen[n] = true
	}
	for n := range t.bandwidth {
		seen[n] = true
	}
	for n := range t.longevity {
		seen[n] = true
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	return nodes
}

// Candidates returns the top electionCandidateSize nodes by total_score,
// highest first (spec §4.6). Nodes with zero score are never candidates.
func (t *Tracker) Candidates(now uint64) []NodeScore {
	nodes := t.Nodes()
	scores := make([]NodeScore, 0, len(nodes))
	for _, n := range nodes {
		s := t.Score(n, now)
		if s.Total > 0 {
			scores = append(scores, s)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Total > scores[j].Total })
	if len(scores) > electionCandidateSize {
		scores = scores[:electionCandidateSize]
	}
	return scores
}

// ValidateBlockCreationRight reports whether nodeID is currently eligible to
// produce a block: its total_score must be at least electionMinScore
// (spec §4.6).
func (t *Tracker) ValidateBlockCreationRight(nodeID string, now uint64) bool {
	return t.Score(nodeID, now).Eligible()
}

// ElectValidator performs a score-weighted random draw over the top-20
// candidate set (spec §4.6), using the CSPRNG per spec §9's "no
// non-cryptographic PRNG anywhere in consensus" rule. Returns false if no
// node currently has a nonzero score.
func ElectValidator(candidates []NodeScore) (string, bool) {
	eligible := make([]NodeScore, 0, len(candidates))
	var totalWeight float64
	for _, c := range candidates {
		if c.Total > 0 {
			eligible = append(eligible, c)
			totalWeight += c.Total
		}
	}
	if len(eligible) == 0 || totalWeight <= 0 {
		return "", false
	}

	// Draw a uniform value in [0, totalWeight) using crypto/rand, scaled
	// through a fixed-precision integer to avoid a non-cryptographic PRNG.
	const precision = 1 << 24
	max := big.NewInt(int64(totalWeight * precision))
	if max.Sign() <= 0 {
		return eligible[0].NodeID, true
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return eligible[0].NodeID, true
	}
	draw := float64(n.Int64()) / precision

	var cumulative float64
	for _, c := range eligible {
		cumulative += c.Total
		if draw < cumulative {
			return c.NodeID, true
		}
	}
	return eligible[len(eligible)-1].NodeID, true
}
