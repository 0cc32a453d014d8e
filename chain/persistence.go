package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivechain/archivechain/archive"
	"github.com/archivechain/archivechain/chainblock"
	"github.com/archivechain/archivechain/token"
)

const chainStateFileName = "chainstate.json"

// diskState is the canonical JSON persisted form (spec §6): chain,
// pending_transactions, difficulty, stats, token_system, and
// genesis_address are the exact top-level keys.
type diskState struct {
	Chain               []*chainblock.ArchiveBlock `json:"chain"`
	PendingTransactions []*chainblock.Transaction  `json:"pending_transactions"`
	Difficulty          int                        `json:"difficulty"`
	Stats               Stats                      `json:"stats"`
	TokenSystem         token.Snapshot             `json:"token_system"`
	GenesisAddress      string                     `json:"genesis_address"`
}

// StatePath returns the chain state file path under dataDir.
func StatePath(dataDir string) string {
	return filepath.Join(dataDir, chainStateFileName)
}

// Save persists the chain's full state to cfg.DataDir via an atomic
// write (temp file + rename), grounded on the teacher's chainstate
// persistence pattern.
func (c *Chain) Save() error {
	c.mu.Lock()
	stats, err := c.statsLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	state := diskState{
		Chain:               c.blocks,
		PendingTransactions: c.mempool,
		Difficulty:          c.difficulty,
		Stats:               stats,
		TokenSystem:         c.Ledger.Snapshot(),
		GenesisAddress:      c.cfg.GenesisAddress,
	}
	c.mu.Unlock()

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return newErr(ErrPersistenceError, err.Error())
	}
	raw = append(raw, '\n')

	path := StatePath(c.cfg.DataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return newErr(ErrPersistenceError, err.Error())
	}
	if err := writeFileAtomic(path, raw, 0o600); err != nil {
		return newErr(ErrPersistenceError, err.Error())
	}
	return nil
}

// Load restores chain state previously written by Save, rebuilding the
// derived archive index by replaying archive transactions in block order,
// then those still pending in the mempool (spec §4.8 "the index is never
// persisted independently"). A missing
// state file is not an error: the chain is left empty, ready for Genesis.
func (c *Chain) Load() error {
	path := StatePath(c.cfg.DataDir)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return newErr(ErrPersistenceError, err.Error())
	}

	var state diskState
	if err := json.Unmarshal(raw, &state); err != nil {
		return newErr(ErrPersistenceError, fmt.Sprintf("decode chain state: %v", err))
	}

	idx := archive.NewIndex()
	seen := make(map[string]bool)
	for _, ab := range state.Chain {
		for _, tx := range ab.Transactions {
			seen[tx.TxID] = true
			if tx.TxType == chainblock.TxArchive && tx.ArchiveData != nil {
				if err := idx.Add(tx.ArchiveData); err != nil {
					return newErr(ErrPersistenceError, fmt.Sprintf("rebuild index: %v", err))
				}
			}
		}
	}
	for _, tx := range state.PendingTransactions {
		seen[tx.TxID] = true
		if tx.TxType == chainblock.TxArchive && tx.ArchiveData != nil {
			if err := idx.Add(tx.ArchiveData); err != nil {
				return newErr(ErrPersistenceError, fmt.Sprintf("rebuild index: %v", err))
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = state.Chain
	c.mempool = state.PendingTransactions
	c.difficulty = state.Difficulty
	c.Ledger = token.FromSnapshot(state.TokenSystem)
	c.Index = idx
	c.seenTxIDs = seen
	c.totalRewardsDistributed = state.Stats.TotalRewardsDistributed
	return nil
}

// statsLocked is Stats's body without acquiring c.mu; callers must already
// hold it.
func (c *Chain) statsLocked() (Stats, error) {
	var archives int
	var bytes int64
	for _, ab := range c.blocks {
		archives += ab.ArchiveCount
		bytes += ab.TotalArchiveSize
	}
	total, err := c.Ledger.ConservationTotal()
	if err != nil {
		return Stats{}, err
	}
	var height uint64
	if len(c.blocks) > 0 {
		height = c.blocks[len(c.blocks)-1].Header.BlockHeight
	}
	return Stats{
		BlockHeight:             height,
		TotalArchives:           archives,
		TotalArchiveBytes:       bytes,
		TotalRewardsDistributed: c.totalRewardsDistributed,
		CurrentDifficulty:       c.difficulty,
		MempoolSize:             len(c.mempool),
		TotalSupply:             total,
		TotalBurned:             c.Ledger.TotalBurned(),
	}, nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
