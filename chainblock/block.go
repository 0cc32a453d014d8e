package chainblock

import (
	"github.com/archivechain/archivechain/crypto"
)

// Version is the only header version this implementation emits.
const Version = 1

// maxMiningAttempts bounds the proof-of-work search so tests (and runaway
// difficulty misconfiguration) never hang (spec §4.5).
const maxMiningAttempts = 2_000_000

// BlockHeader is ArchiveChain's block header (spec §3).
type BlockHeader struct {
	PreviousHash [32]byte `json:"previous_hash"`
	MerkleRoot   [32]byte `json:"merkle_root"`
	Timestamp    float64  `json:"timestamp"`
	Nonce        uint64   `json:"nonce"`
	Difficulty   int      `json:"difficulty"`
	BlockHeight  uint64   `json:"block_height"`
	Version      int      `json:"version"`
}

// Hash is SHA-256 of the canonical header serialization (spec §4.5).
func (h BlockHeader) Hash() ([32]byte, error) {
	return crypto.CanonicalHash(h)
}

// StorageProofRef is a lightweight record of a storage proof accepted for a
// block, cached on the ArchiveBlock (spec §3).
type StorageProofRef struct {
	NodeID    string `json:"node_id"`
	ArchiveID string `json:"archive_id"`
}

// Block is the Merkle-committed transaction container (spec §3). Hash is
// the block's own declared header hash, stored alongside the header so
// validate_chain can compare it against a freshly recomputed hash without
// re-deriving it from a sibling block's previous_hash.
type Block struct {
	Header       BlockHeader    `json:"header"`
	Hash         [32]byte       `json:"hash"`
	Transactions []*Transaction `json:"transactions"`
}

// ArchiveBlock caches indices derived from Transactions (spec §3): these
// are never authoritative, only a convenience — they are always
// reconstructible by replaying Transactions.
type ArchiveBlock struct {
	Block
	ArchiveCount     int                 `json:"archive_count"`
	TotalArchiveSize int64               `json:"total_archive_size"`
	ContentIndex     map[string][]string `json:"content_index"`    // content_type -> archive_ids
	ReplicationInfo  map[string][]string `json:"replication_info"` // archive_id -> node_ids
	StorageProofs    []StorageProofRef   `json:"storage_proofs"`
}

// leafHashes returns the Merkle leaves for b's transactions, in order.
func (b *Block) leafHashes() [][32]byte {
	leaves := make([][32]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		leaves[i] = tx.LeafHash()
	}
	return leaves
}

// ComputeMerkleRoot recomputes the Merkle root over b's transactions.
func (b *Block) ComputeMerkleRoot() [32]byte {
	return MerkleRoot(b.leafHashes())
}

// BuildArchiveBlock derives an ArchiveBlock's caches from block's
// transactions (spec §3 "cache, not authoritative").
func BuildArchiveBlock(block Block) *ArchiveBlock {
	ab := &ArchiveBlock{
		Block:           block,
		ContentIndex:    make(map[string][]string),
		ReplicationInfo: make(map[string][]string),
	}
	for _, tx := range block.Transactions {
		if tx.TxType != TxArchive || tx.ArchiveData == nil {
			continue
		}
		a := tx.ArchiveData
		ab.ArchiveCount++
		ab.TotalArchiveSize += a.SizeOriginal
		ab.ContentIndex[a.ContentType] = append(ab.ContentIndex[a.ContentType], a.ArchiveID)
		if len(a.StorageNodes) > 0 {
			ab.ReplicationInfo[a.ArchiveID] = append(ab.ReplicationInfo[a.ArchiveID], a.StorageNodes...)
		}
	}
	return ab
}

// leadingZeroNibbles counts the leading zero hex digits (4 bits each) of
// hash. Spec §9 notes the source compares against a hex-string zero prefix;
// this implementation counts nibbles directly against the big-endian byte
// representation, which is equivalent and does not require a string
// round-trip.
func leadingZeroNibbles(hash [32]byte) int {
	count := 0
	for _, b := range hash {
		if b == 0 {
			count += 2
			continue
		}
		// A nonzero byte with a zero high nibble still contributes one more
		// leading zero hex digit before the first nonzero nibble.
		if b < 0x10 {
			count++
		}
		break
	}
	return count
}

// MeetsDifficulty reports whether hash has at least difficulty leading
// zero hex digits.
func MeetsDifficulty(hash [32]byte, difficulty int) bool {
	return leadingZeroNibbles(hash) >= difficulty
}

// Mine searches for a nonce such that header's hash meets difficulty,
// mutating header.Nonce in place and returning the resulting hash. It
// returns false if no such nonce is found within maxMiningAttempts (spec
// §4.5 "failure returns after an implementation-defined bound").
// cancel, if non-nil, is polled between nonce increments (spec §5
// cooperative cancellation).
func Mine(header *BlockHeader, cancel <-chan struct{}) ([32]byte, bool) {
	for attempt := uint64(0); attempt < maxMiningAttempts; attempt++ {
		if cancel != nil {
			select {
			case <-cancel:
				return [32]byte{}, false
			default:
			}
		}
		header.Nonce = attempt
		hash, err := header.Hash()
		if err != nil {
			return [32]byte{}, false
		}
		if MeetsDifficulty(hash, header.Difficulty) {
			return hash, true
		}
	}
	return [32]byte{}, false
}

// ValidateBlock checks that block.Hash is correctly recomputed from its
// header, meets its declared difficulty, that the Merkle root matches the
// transaction list, and that every transaction carries a valid signature
// (spec §4.5).
func ValidateBlock(block *Block, registry *crypto.Registry) error {
	recomputed, err := block.Header.Hash()
	if err != nil {
		return newErr(ErrBlockInvalid, err.Error())
	}
	if recomputed != block.Hash {
		return newErr(ErrBlockInvalid, "stored hash does not match recomputed hash")
	}
	if !MeetsDifficulty(recomputed, block.Header.Difficulty) {
		return newErr(ErrBlockInvalid, "hash does not meet difficulty target")
	}
	if block.Header.MerkleRoot != block.ComputeMerkleRoot() {
		return newErr(ErrBlockInvalid, "merkle root mismatch")
	}
	for _, tx := range block.Transactions {
		if err := tx.ValidateSignature(registry); err != nil {
			return err
		}
		if tx.TxType == TxArchive && tx.ArchiveData != nil {
			if err := tx.ArchiveData.Validate(); err != nil {
				return newErr(ErrBlockInvalid, err.Error())
			}
		}
	}
	return nil
}
