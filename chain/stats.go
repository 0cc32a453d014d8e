package chain

import "github.com/archivechain/archivechain/safemath"

// Stats is a point-in-time snapshot of chain-wide aggregates (spec §4.8
// supplemented feature: node/chain statistics).
type Stats struct {
	BlockHeight             uint64           `json:"block_height"`
	TotalArchives           int              `json:"total_archives"`
	TotalArchiveBytes       int64            `json:"total_archive_bytes"`
	TotalRewardsDistributed safemath.Decimal `json:"total_rewards_distributed"`
	CurrentDifficulty       int              `json:"current_difficulty"`
	MempoolSize             int              `json:"mempool_size"`
	TotalSupply             safemath.Decimal `json:"total_supply"`
	TotalBurned             safemath.Decimal `json:"total_burned"`
}

// Stats computes the current chain-wide snapshot.
func (c *Chain) Stats() (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}
