// Package chain implements ArchiveChain's chain writer (spec §4.8): genesis
// construction, mempool admission, block assembly, difficulty adjustment,
// chain validation, and canonical JSON persistence.
package chain

import (
	"log/slog"
	"sync"

	"github.com/archivechain/archivechain/archive"
	"github.com/archivechain/archivechain/chainblock"
	"github.com/archivechain/archivechain/consensus"
	"github.com/archivechain/archivechain/contracts"
	"github.com/archivechain/archivechain/crypto"
	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

// userSubmittableTypes are transaction kinds SubmitTransaction will accept
// from outside the chain writer; genesis/reward/mint/burn are chain-
// originated only.
var userSubmittableTypes = map[chainblock.TxType]bool{
	chainblock.TxTransfer: true,
	chainblock.TxStake:    true,
	chainblock.TxUnstake:  true,
	chainblock.TxVerify:   true,
}

// Chain holds all on-chain state: the append-only block list, the pending
// mempool, the token ledger, the contract registry, PoA score tracker, and
// the derived archive index.
type Chain struct {
	mu sync.Mutex

	cfg    Config
	logger *slog.Logger

	blocks     []*chainblock.ArchiveBlock
	mempool    []*chainblock.Transaction
	seenTxIDs  map[string]bool
	difficulty int

	Ledger    *token.Ledger
	Contracts *contracts.Registry
	Tracker   *consensus.Tracker
	Index     *archive.Index
	Keys      *crypto.Registry
	Salts     *crypto.SaltStore

	totalRewardsDistributed safemath.Decimal
}

// NewChain constructs an empty, ungenesis'd chain from cfg. Call Genesis
// before submitting transactions or mining.
func NewChain(cfg Config, logger *slog.Logger) (*Chain, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		cfg:                     cfg,
		logger:                  logger,
		seenTxIDs:               make(map[string]bool),
		difficulty:              cfg.InitialDifficulty,
		Ledger:                  token.NewLedger(),
		Contracts:               contracts.NewRegistry(),
		Tracker:                 consensus.NewTracker(),
		Index:                   archive.NewIndex(),
		Keys:                    crypto.NewRegistry(),
		Salts:                   crypto.NewSaltStore(),
		totalRewardsDistributed: safemath.Zero,
	}, nil
}

// Genesis builds block 0: a single genesis transaction paying the genesis
// address, mined at a fixed difficulty of 1, and seeds the token pools
// (spec §4.8, §4.4).
func (c *Chain) Genesis(now float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.blocks) != 0 {
		return newErr(ErrInvalidTransaction, "genesis already run")
	}
	if err := c.Ledger.Genesis(c.cfg.DevelopmentAddr, c.cfg.CommunityAddr, c.cfg.PublicSaleAddr); err != nil {
		return err
	}

	tx := chainblock.NewTransaction(chainblock.TxGenesis, c.cfg.GenesisAddress, c.cfg.GenesisAddress, safemath.Zero, safemath.Zero, now, nil)
	header := chainblock.BlockHeader{
		MerkleRoot:  chainblock.MerkleRoot([][32]byte{tx.LeafHash()}),
		Timestamp:   now,
		Difficulty:  1,
		BlockHeight: 0,
		Version:     chainblock.Version,
	}
	hash, ok := chainblock.Mine(&header, nil)
	if !ok {
		return newErr(ErrBlockInvalid, "genesis mining failed")
	}
	block := chainblock.Block{Header: header, Hash: hash, Transactions: []*chainblock.Transaction{tx}}
	c.blocks = append(c.blocks, chainblock.BuildArchiveBlock(block))
	c.seenTxIDs[tx.TxID] = true
	c.logger.Info("genesis block created", "difficulty", header.Difficulty)
	return nil
}

// RegisterKey makes pub's signatures verifiable against its derived
// address; callers must register a key before submitting transactions or
// archives signed by the matching private key.
func (c *Chain) RegisterKey(pub *crypto.PublicKey) error {
	return c.Keys.Register(pub.Address(), pub)
}

// LastBlock returns the most recently appended block, or nil if genesis
// has not run yet.
func (c *Chain) LastBlock() *chainblock.ArchiveBlock {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}

// Length returns the number of blocks in the chain, genesis included.
func (c *Chain) Length() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// MempoolSize returns the number of pending transactions.
func (c *Chain) MempoolSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mempool)
}

// Difficulty returns the current mining difficulty.
func (c *Chain) Difficulty() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.difficulty
}

// SubmitTransaction validates, applies, and enqueues a user-originated
// transaction (transfer, stake, unstake, or verify): signature check,
// dedup against every transaction ever seen, the ledger effect for its
// type, then enqueue into the mempool (spec §4.8 "validate, deduplicate,
// enqueue"; spec §8 scenario S5 shows Transfer's effects are immediate, not
// deferred to mining).
func (c *Chain) SubmitTransaction(tx *chainblock.Transaction) error {
	if !userSubmittableTypes[tx.TxType] {
		return newErr(ErrInvalidTransaction, "transaction type is chain-originated only")
	}
	if err := tx.ValidateSignature(c.Keys); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seenTxIDs[tx.TxID] {
		return newErr(ErrDuplicateTransaction, tx.TxID)
	}

	switch tx.TxType {
	case chainblock.TxTransfer:
		if err := c.Ledger.Transfer(tx.Sender, tx.Receiver, tx.Amount, tx.Fee); err != nil {
			return err
		}
	case chainblock.TxStake:
		if err := c.Ledger.Stake(tx.Sender, tx.Amount); err != nil {
			return err
		}
	case chainblock.TxUnstake:
		if err := c.Ledger.Unstake(tx.Sender, tx.Amount); err != nil {
			return err
		}
	case chainblock.TxVerify:
		// Recorded on-chain only; the content-verification state machine
		// itself lives in the contracts registry and is invoked separately.
	}

	c.seenTxIDs[tx.TxID] = true
	c.mempool = append(c.mempool, tx)
	return nil
}

// AddArchive validates and indexes a new ArchiveData record, signs and
// records the archive transaction under priv, credits the archiver with
// the initial-archive reward, and enqueues the transaction (spec §4.8
// "add_archive additionally credits the archiver ... and increments
// statistics").
func (c *Chain) AddArchive(priv *crypto.PrivateKey, data *archive.ArchiveData, rarity float64, fee safemath.Decimal, now float64) (*chainblock.Transaction, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.Index.GetByURL(data.OriginalURL); ok {
		return nil, newErr(ErrDuplicateArchive, data.OriginalURL)
	}

	sender := priv.Public().Address()
	tx := chainblock.NewTransaction(chainblock.TxArchive, sender, "", safemath.Zero, fee, now, data)
	if err := tx.Sign(priv); err != nil {
		return nil, err
	}
	if c.seenTxIDs[tx.TxID] {
		return nil, newErr(ErrDuplicateTransaction, tx.TxID)
	}

	if err := c.Index.Add(data); err != nil {
		return nil, err
	}

	reward, err := token.InitialArchiveReward(data.SizeOriginal, rarity, data.ContentType)
	if err != nil {
		return nil, err
	}
	if err := c.Ledger.CreditFromPool(token.PoolArchivingRewards, sender, reward); err != nil {
		return nil, err
	}
	c.totalRewardsDistributed, err = safemath.Add(c.totalRewardsDistributed, reward)
	if err != nil {
		return nil, err
	}

	c.seenTxIDs[tx.TxID] = true
	c.mempool = append(c.mempool, tx)
	c.logger.Info("archive added", "url", data.OriginalURL, "reward", reward.String())
	return tx, nil
}
