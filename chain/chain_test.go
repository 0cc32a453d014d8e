package chain

import (
	"testing"

	"github.com/archivechain/archivechain/archive"
	"github.com/archivechain/archivechain/chainblock"
	"github.com/archivechain/archivechain/consensus"
	"github.com/archivechain/archivechain/crypto"
	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

func newTestChain(t *testing.T) *Chain {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	c, err := NewChain(cfg, nil)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if err := c.Genesis(1700000000); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return c
}

func testArchive(t *testing.T, url string) *archive.ArchiveData {
	t.Helper()
	content := []byte("content for " + url)
	a := &archive.ArchiveData{
		ArchiveID:        archive.ContentAddress(content),
		OriginalURL:      url,
		CaptureTimestamp: "2026-01-01T00:00:00Z",
		ContentType:      "text/html",
		Compression:      archive.CompressionNone,
		SizeOriginal:     int64(len(content)),
		SizeCompressed:   int64(len(content)),
		StorageNodes:     []string{"node-a"},
		Metadata:         archive.Metadata{Priority: 5},
	}
	a.WithDefaults()
	return a
}

// TestAddArchiveCreditsArchiverAndEnqueues mirrors spec scenario S1: adding
// an archive credits the archiver and adds exactly one mempool entry.
func TestAddArchiveCreditsArchiverAndEnqueues(t *testing.T) {
	c := newTestChain(t)
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(priv.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}

	data := testArchive(t, "https://a")
	data.SizeOriginal = 1024

	tx, err := c.AddArchive(priv, data, 1.0, safemath.Zero, 1700000100)
	if err != nil {
		t.Fatalf("add archive: %v", err)
	}
	if tx.TxType != chainblock.TxArchive {
		t.Fatalf("expected archive tx type, got %s", tx.TxType)
	}
	if c.MempoolSize() != 1 {
		t.Fatalf("expected mempool size 1, got %d", c.MempoolSize())
	}
	if c.Ledger.Balance(priv.Public().Address()).IsZero() {
		t.Fatal("expected archiver to be credited a reward")
	}
}

// TestAddArchiveRejectsDuplicateURL mirrors spec scenario S2: a duplicate
// URL is rejected and the mempool is left unchanged.
func TestAddArchiveRejectsDuplicateURL(t *testing.T) {
	c := newTestChain(t)
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(priv.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}

	data := testArchive(t, "https://dup")
	if _, err := c.AddArchive(priv, data, 1.0, safemath.Zero, 1700000100); err != nil {
		t.Fatalf("first add: %v", err)
	}
	before := c.MempoolSize()

	again := testArchive(t, "https://dup")
	if _, err := c.AddArchive(priv, again, 1.0, safemath.Zero, 1700000200); err == nil {
		t.Fatal("expected duplicate url to be rejected")
	}
	if c.MempoolSize() != before {
		t.Fatalf("expected mempool unchanged, had %d now %d", before, c.MempoolSize())
	}
}

// TestSubmitTransactionRejectsUnsignedTransfer mirrors spec scenario S6:
// a transfer without a valid signature must be rejected.
func TestSubmitTransactionRejectsUnsignedTransfer(t *testing.T) {
	c := newTestChain(t)
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(priv.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}

	tx := chainblock.NewTransaction(chainblock.TxTransfer, priv.Public().Address(), "arcreceiver", safemath.FromWhole(10), safemath.Zero, 1700000100, nil)
	if err := c.SubmitTransaction(tx); err == nil {
		t.Fatal("expected unsigned transfer to be rejected")
	}
	if c.MempoolSize() != 0 {
		t.Fatal("expected mempool to remain empty")
	}
}

// TestSubmitTransactionRejectsChainOriginatedType ensures genesis/reward/
// mint/burn transactions can never be injected through the public
// submission entrypoint.
func TestSubmitTransactionRejectsChainOriginatedType(t *testing.T) {
	c := newTestChain(t)
	tx := chainblock.NewTransaction(chainblock.TxReward, "arc-genesis", "arc-someone", safemath.FromWhole(50), safemath.Zero, 1700000100, nil)
	if err := c.SubmitTransaction(tx); err == nil {
		t.Fatal("expected reward transaction to be rejected from public submission")
	}
}

// TestTransferAppliesImmediatelyAtSubmission mirrors spec scenario S5: a
// transfer's balance and burn effects apply at submission time, not at
// mining time.
func TestTransferAppliesImmediatelyAtSubmission(t *testing.T) {
	c := newTestChain(t)
	sender, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(sender.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}
	senderAddr := sender.Public().Address()
	if err := c.Ledger.CreditFromPool(token.PoolArchivingRewards, senderAddr, safemath.FromWhole(1000)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	tx := chainblock.NewTransaction(chainblock.TxTransfer, senderAddr, "arcreceiver", safemath.FromWhole(100), safemath.FromWhole(10), 1700000100, nil)
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := c.SubmitTransaction(tx); err != nil {
		t.Fatalf("submit transfer: %v", err)
	}

	if got, want := c.Ledger.Balance(senderAddr), safemath.FromWhole(890); got.Cmp(want) != 0 {
		t.Fatalf("sender balance = %s, want %s", got.String(), want.String())
	}
	if got, want := c.Ledger.Balance("arcreceiver"), safemath.FromWhole(100); got.Cmp(want) != 0 {
		t.Fatalf("receiver balance = %s, want %s", got.String(), want.String())
	}
	if c.Ledger.TotalBurned().Cmp(safemath.FromWhole(1)) != 0 {
		t.Fatalf("expected 1 ARC burned, got %s", c.Ledger.TotalBurned().String())
	}
}

// TestMineBlockRequiresValidatorRight ensures an unelected node cannot mine.
func TestMineBlockRequiresValidatorRight(t *testing.T) {
	c := newTestChain(t)
	if _, err := c.MineBlock("arc-unelected-node", 1700000100); err == nil {
		t.Fatal("expected unauthorized miner to be rejected")
	}
}

// TestMineBlockPacksMempoolAndRewardsMiner exercises genesis, adding an
// archive, electing a validator via recorded PoA proofs, and mining.
func TestMineBlockPacksMempoolAndRewardsMiner(t *testing.T) {
	c := newTestChain(t)

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(priv.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}
	if _, err := c.AddArchive(priv, testArchive(t, "https://mined"), 1.0, safemath.Zero, 1700000100); err != nil {
		t.Fatalf("add archive: %v", err)
	}

	minerID := "arc-miner-node"
	c.Tracker.RecordStorageProof(consensus.StorageProof{
		NodeID:    minerID,
		ArchiveID: "some-archive",
		FileSize:  100 * consensus.GiB,
		Timestamp: 1700000000,
	})

	block, err := c.MineBlock(minerID, 1700000200)
	if err != nil {
		t.Fatalf("mine block: %v", err)
	}
	if block.ArchiveCount != 1 {
		t.Fatalf("expected 1 archive in mined block, got %d", block.ArchiveCount)
	}
	if c.MempoolSize() != 0 {
		t.Fatalf("expected mempool drained, got %d", c.MempoolSize())
	}
	if c.Ledger.Balance(minerID).IsZero() {
		t.Fatal("expected miner to be credited the mining reward")
	}
	if c.Length() != 2 {
		t.Fatalf("expected chain length 2 (genesis + mined), got %d", c.Length())
	}
}

// TestValidateChainAcceptsMinedChain exercises ValidateChain end to end.
func TestValidateChainAcceptsMinedChain(t *testing.T) {
	c := newTestChain(t)
	minerID := "arc-miner-node"
	c.Tracker.RecordStorageProof(consensus.StorageProof{
		NodeID:    minerID,
		ArchiveID: "some-archive",
		FileSize:  100 * consensus.GiB,
		Timestamp: 1700000000,
	})
	if _, err := c.MineBlock(minerID, 1700000700); err != nil {
		t.Fatalf("mine block: %v", err)
	}
	if err := c.ValidateChain(); err != nil {
		t.Fatalf("expected chain to validate, got: %v", err)
	}
}

// TestSaveLoadRoundTrip exercises persistence: state saved and reloaded
// into a fresh Chain must expose the same balances, block count, and
// rebuilt archive index.
func TestSaveLoadRoundTrip(t *testing.T) {
	c := newTestChain(t)
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := c.RegisterKey(priv.Public()); err != nil {
		t.Fatalf("register key: %v", err)
	}
	if _, err := c.AddArchive(priv, testArchive(t, "https://persisted"), 1.0, safemath.Zero, 1700000100); err != nil {
		t.Fatalf("add archive: %v", err)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := NewChain(c.cfg, nil)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if reloaded.Length() != c.Length() {
		t.Fatalf("block count mismatch: %d vs %d", reloaded.Length(), c.Length())
	}
	if reloaded.MempoolSize() != c.MempoolSize() {
		t.Fatalf("mempool size mismatch: %d vs %d", reloaded.MempoolSize(), c.MempoolSize())
	}
	if _, ok := reloaded.Index.GetByURL("https://persisted"); !ok {
		t.Fatal("expected rebuilt index to contain the persisted archive")
	}
	if reloaded.Ledger.Balance(priv.Public().Address()).Cmp(c.Ledger.Balance(priv.Public().Address())) != 0 {
		t.Fatal("expected archiver balance to survive the round trip")
	}
}

// TestLoadMissingFileIsNotAnError ensures a fresh data dir loads as empty.
func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	c, err := NewChain(cfg, nil)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if err := c.Load(); err != nil {
		t.Fatalf("expected missing state file to load cleanly, got: %v", err)
	}
	if c.Length() != 0 {
		t.Fatalf("expected empty chain, got length %d", c.Length())
	}
}
