package chain

import "github.com/archivechain/archivechain/chainblock"

// ValidateChain walks every block, checking each one's internal validity
// (hash, difficulty, Merkle root, transaction signatures) and that each
// block's previous_hash links to its predecessor (spec §4.8 validate_chain,
// §8 property 2).
func (c *Chain) ValidateChain() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ab := range c.blocks {
		block := ab.Block
		if err := chainblock.ValidateBlock(&block, c.Keys); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		if ab.Header.PreviousHash != c.blocks[i-1].Hash {
			return newErr(ErrBlockInvalid, "previous_hash does not link to predecessor")
		}
		if ab.Header.BlockHeight != c.blocks[i-1].Header.BlockHeight+1 {
			return newErr(ErrBlockInvalid, "block_height is not sequential")
		}
	}
	return nil
}
