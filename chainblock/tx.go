// Package chainblock implements ArchiveChain's transaction, Merkle-tree,
// and block types and their validation rules (spec §3, §4.5).
package chainblock

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/archivechain/archivechain/archive"
	"github.com/archivechain/archivechain/crypto"
	"github.com/archivechain/archivechain/safemath"
)

// TxType names a transaction's kind (spec §3).
type TxType string

const (
	TxArchive  TxType = "archive"
	TxTransfer TxType = "transfer"
	TxReward   TxType = "reward"
	TxStake    TxType = "stake"
	TxUnstake  TxType = "unstake"
	TxVerify   TxType = "verify"
	TxGenesis  TxType = "genesis"
	TxMint     TxType = "mint"
	TxBurn     TxType = "burn"
	TxFee      TxType = "fee"
)

// unsignedTypes are the transaction kinds the chain itself originates and
// that therefore never carry a user signature (spec §3).
var unsignedTypes = map[TxType]bool{
	TxGenesis: true,
	TxReward:  true,
	TxMint:    true,
	TxBurn:    true,
}

// Transaction is ArchiveChain's single transaction envelope (spec §3). Not
// every field is populated for every TxType: ArchiveData only for TxArchive,
// Receiver only for transfers/rewards/etc.
type Transaction struct {
	TxID        string             `json:"tx_id"`
	TxType      TxType             `json:"tx_type"`
	ArchiveData *archive.ArchiveData `json:"archive_data,omitempty"`
	Sender      string             `json:"sender"`
	Receiver    string             `json:"receiver,omitempty"`
	Amount      safemath.Decimal   `json:"amount"`
	Fee         safemath.Decimal   `json:"fee"`
	Timestamp   float64            `json:"timestamp"` // unix seconds
	Signature   string             `json:"signature"`
}

// computeTxID hashes the transaction's canonical form (tx_id and signature
// excluded) the same way crypto.CanonicalHash does for signing, so a
// transaction's identity tracks its content.
func computeTxID(tx *Transaction) string {
	type idView struct {
		TxType      TxType               `json:"tx_type"`
		ArchiveData *archive.ArchiveData `json:"archive_data,omitempty"`
		Sender      string               `json:"sender"`
		Receiver    string               `json:"receiver,omitempty"`
		Amount      safemath.Decimal     `json:"amount"`
		Fee         safemath.Decimal     `json:"fee"`
		Timestamp   float64              `json:"timestamp"`
	}
	view := idView{
		TxType:      tx.TxType,
		ArchiveData: tx.ArchiveData,
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Amount:      tx.Amount,
		Fee:         tx.Fee,
		Timestamp:   tx.Timestamp,
	}
	canon, err := crypto.CanonicalJSON(view)
	if err != nil {
		// CanonicalJSON only fails on values that cannot be marshaled, which
		// Transaction's fields never produce.
		panic("chainblock: unreachable canonicalization failure: " + err.Error())
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

// NewTransaction constructs a transaction and stamps its TxID.
func NewTransaction(txType TxType, sender, receiver string, amount, fee safemath.Decimal, timestamp float64, archiveData *archive.ArchiveData) *Transaction {
	tx := &Transaction{
		TxType:      txType,
		ArchiveData: archiveData,
		Sender:      sender,
		Receiver:    receiver,
		Amount:      amount,
		Fee:         fee,
		Timestamp:   timestamp,
	}
	tx.TxID = computeTxID(tx)
	return tx
}

// RequiresSignature reports whether tx's type must carry a valid signature
// (spec §3: every type but genesis/reward/mint/burn).
func (tx *Transaction) RequiresSignature() bool {
	return !unsignedTypes[tx.TxType]
}

// Hash returns the canonical signing hash for tx (used both to sign and to
// verify).
func (tx *Transaction) Hash() ([32]byte, error) {
	return crypto.CanonicalHash(tx)
}

// Sign signs tx with priv and stores the resulting signature.
func (tx *Transaction) Sign(priv *crypto.PrivateKey) error {
	sig, err := crypto.Sign(priv, tx)
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// ValidateSignature checks tx's signature against registry, skipping the
// check entirely for transaction types that never carry one. User
// transactions with an empty or invalid signature are rejected (spec §3,
// §8 property 5).
func (tx *Transaction) ValidateSignature(registry *crypto.Registry) error {
	if !tx.RequiresSignature() {
		return nil
	}
	if tx.Signature == "" {
		return newErr(ErrInvalidSignature, "missing signature")
	}
	if err := crypto.Verify(registry, tx.Sender, tx.Signature, tx); err != nil {
		return newErr(ErrInvalidSignature, err.Error())
	}
	return nil
}

// LeafHash is the Merkle-tree leaf hash for tx: SHA-256 of its tx_id bytes.
func (tx *Transaction) LeafHash() [32]byte {
	return sha256.Sum256([]byte(tx.TxID))
}
