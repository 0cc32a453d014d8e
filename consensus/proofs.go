// Package consensus implements ArchiveChain's Proof-of-Archive (PoA): the
// three proof kinds, their verification rules, the storage-challenge
// lifecycle, participant scoring, and validator election (spec §4.6).
package consensus

const (
	// GiB is 2^30 bytes, the unit the scoring formulas are denominated in.
	GiB = 1 << 30

	challengeTTLSeconds = 3600
	minFileSizeBytes    = 1 * GiB
	minBandwidthBytes   = 100 * 1024 * 1024
	maxAvgResponseMs    = 5000
	minBandwidthPeriod  = 3600
	minLongevitySeconds = 24 * 3600
)

// StorageProof attests that a node still holds an archive's content
// (spec §4.6).
type StorageProof struct {
	NodeID    string
	ArchiveID string
	Challenge string
	Response  string
	FileSize  int64
	Timestamp uint64 // unix seconds, when the proof was submitted
}

// BandwidthProof attests to bytes a node served over a measured period
// (spec §4.6).
type BandwidthProof struct {
	NodeID            string
	PeriodStart       uint64
	PeriodEnd         uint64
	BytesServed       int64
	AvgResponseTimeMs float64
	RequestCount      int64
	ClientSignatures  []string // opaque blobs at this layer (spec §4.6)
	Timestamp         uint64
}

// LongevityProof attests to a node's sustained, available storage of an
// archive over time (spec §4.6).
type LongevityProof struct {
	NodeID                string
	ArchiveID             string
	DurationSeconds       uint64
	Availability          float64
	ConsistencyTimestamps []uint64
	Timestamp             uint64
}

// VerifyBandwidthProof checks p against the spec §4.6 BandwidthProof rules.
// Invalid proofs are rejected with no state change; there is nothing to
// consume, unlike a storage proof's challenge.
func VerifyBandwidthProof(p BandwidthProof) error {
	if p.PeriodEnd <= p.PeriodStart {
		return newErr(ErrInvalidProof, "period_end must be after period_start")
	}
	if p.PeriodEnd-p.PeriodStart < minBandwidthPeriod {
		return newErr(ErrInvalidProof, "period must span at least 1 hour")
	}
	if p.BytesServed < minBandwidthBytes {
		return newErr(ErrInvalidProof, "bytes_served below 100 MiB minimum")
	}
	if p.AvgResponseTimeMs > maxAvgResponseMs {
		return newErr(ErrInvalidProof, "avg_response_time exceeds 5s maximum")
	}
	minSigs := int64(1)
	if byCount := p.RequestCount / 100; byCount > minSigs {
		minSigs = byCount
	}
	if int64(len(p.ClientSignatures)) < minSigs {
		return newErr(ErrInvalidProof, "insufficient client signatures")
	}
	return nil
}

// VerifyLongevityProof checks p against the spec §4.6 LongevityProof rules.
func VerifyLongevityProof(p LongevityProof) error {
	if p.DurationSeconds < minLongevitySeconds {
		return newErr(ErrInvalidProof, "duration below 24h minimum")
	}
	if p.Availability < 0 || p.Availability > 1 {
		return newErr(ErrInvalidProof, "availability out of [0,1] range")
	}
	for i := 1; i < len(p.ConsistencyTimestamps); i++ {
		if p.ConsistencyTimestamps[i] <= p.ConsistencyTimestamps[i-1] {
			return newErr(ErrInvalidProof, "consistency timestamps must strictly increase")
		}
	}
	expectedHourly := float64(p.DurationSeconds) / 3600
	if float64(len(p.ConsistencyTimestamps)) < 0.8*expectedHourly {
		return newErr(ErrInvalidProof, "consistency check count below 80% of expected hourly rate")
	}
	return nil
}
