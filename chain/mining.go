package chain

import (
	"github.com/archivechain/archivechain/chainblock"
	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

// difficultyAdjustmentWindow is the number of trailing blocks averaged when
// deciding whether to re-target difficulty (spec §4.8).
const difficultyAdjustmentWindow = 10

// approxTxOverheadBytes is a conservative per-transaction serialized-size
// estimate used to pack the mempool within MaxBlockSizeBytes without
// marshaling every candidate transaction just to measure it.
const approxTxOverheadBytes = 512

// MineBlock assembles a new block from the mempool, mines it at the
// current difficulty, credits the miner, and appends it to the chain (spec
// §4.8). minerID must hold validator rights under the PoA tracker (spec
// §4.6); callers normally elect minerID via Tracker.ElectValidator first.
func (c *Chain) MineBlock(minerID string, now uint64) (*chainblock.ArchiveBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.blocks) == 0 {
		return nil, newErr(ErrBlockInvalid, "genesis has not run")
	}
	if !c.Tracker.ValidateBlockCreationRight(minerID, now) {
		return nil, newErr(ErrUnauthorizedValidator, minerID)
	}

	packed := c.packMempool()

	reward := chainblock.NewTransaction(chainblock.TxReward, c.cfg.GenesisAddress, minerID, token.MiningReward, safemath.Zero, float64(now), nil)
	txs := append(append([]*chainblock.Transaction{}, packed...), reward)

	prev := c.blocks[len(c.blocks)-1]
	leaves := make([][32]byte, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.LeafHash()
	}
	header := chainblock.BlockHeader{
		PreviousHash: prev.Hash,
		MerkleRoot:   chainblock.MerkleRoot(leaves),
		Timestamp:    float64(now),
		Difficulty:   c.difficulty,
		BlockHeight:  prev.Header.BlockHeight + 1,
		Version:      chainblock.Version,
	}
	hash, ok := chainblock.Mine(&header, nil)
	if !ok {
		return nil, newErr(ErrBlockInvalid, "no nonce found within the mining attempt bound")
	}

	if err := c.Ledger.MintReward(minerID, token.MiningReward); err != nil {
		return nil, err
	}
	fees, err := c.Ledger.DrainFeesToMiner(minerID)
	if err != nil {
		return nil, err
	}
	c.totalRewardsDistributed, err = safemath.Add(c.totalRewardsDistributed, token.MiningReward)
	if err != nil {
		return nil, err
	}

	block := chainblock.Block{Header: header, Hash: hash, Transactions: txs}
	ab := chainblock.BuildArchiveBlock(block)
	c.blocks = append(c.blocks, ab)
	c.removePacked(packed)
	c.seenTxIDs[reward.TxID] = true

	c.adjustDifficulty()

	c.logger.Info("block mined", "height", header.BlockHeight, "difficulty", header.Difficulty, "fees_drained", fees.String())
	return ab, nil
}

// packMempool returns the prefix of the mempool that fits within
// MaxBlockSizeBytes, estimating each transaction's size as a fixed
// overhead plus its archive's compressed size, if any (spec §4.8 "blocks
// are size-bounded").
func (c *Chain) packMempool() []*chainblock.Transaction {
	budget := c.cfg.MaxBlockSizeBytes
	var packed []*chainblock.Transaction
	used := 0
	for _, tx := range c.mempool {
		used += approxTxOverheadBytes
		if tx.ArchiveData != nil {
			used += int(tx.ArchiveData.SizeCompressed)
		}
		if used > budget && len(packed) > 0 {
			break
		}
		packed = append(packed, tx)
	}
	return packed
}

// removePacked drops the given transactions from the mempool by tx_id.
func (c *Chain) removePacked(packed []*chainblock.Transaction) {
	if len(packed) == 0 {
		return
	}
	drop := make(map[string]bool, len(packed))
	for _, tx := range packed {
		drop[tx.TxID] = true
	}
	remaining := c.mempool[:0]
	for _, tx := range c.mempool {
		if !drop[tx.TxID] {
			remaining = append(remaining, tx)
		}
	}
	c.mempool = remaining
}

// adjustDifficulty re-targets difficulty from the average interval over the
// last difficultyAdjustmentWindow blocks against BlockTimeTargetSecs: more
// than 20% fast raises difficulty by one, more than 20% slow lowers it by
// one, floored at MinDifficulty (spec §4.8). Caller must hold c.mu.
func (c *Chain) adjustDifficulty() {
	if len(c.blocks) <= difficultyAdjustmentWindow {
		return
	}
	recent := c.blocks[len(c.blocks)-difficultyAdjustmentWindow-1:]
	span := recent[len(recent)-1].Header.Timestamp - recent[0].Header.Timestamp
	avgInterval := span / float64(difficultyAdjustmentWindow)
	target := float64(c.cfg.BlockTimeTargetSecs)

	switch {
	case avgInterval < 0.8*target:
		c.difficulty++
	case avgInterval > 1.2*target:
		if c.difficulty > c.cfg.MinDifficulty {
			c.difficulty--
		}
	}
}
