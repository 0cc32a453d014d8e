package contracts

import (
	"testing"

	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

func newFundedLedger(t *testing.T, addr string, amount safemath.Decimal) *token.Ledger {
	t.Helper()
	ledger := token.NewLedger()
	if err := ledger.Genesis("dev", "community", "sale"); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	if err := ledger.CreditFromPool(token.PoolArchivingRewards, addr, amount); err != nil {
		t.Fatalf("seed balance: %v", err)
	}
	return ledger
}

// TestBountyHappyPath mirrors spec scenario S4: creator with 1000 ARC
// creates a bounty (reward 500, deadline now+86400); escrow decreases
// creator to 500; claimant claims with a hash; three validators vote true;
// contract completes and releases the reward.
func TestBountyHappyPath(t *testing.T) {
	creator := "arc-creator"
	ledger := newFundedLedger(t, creator, safemath.FromWhole(1000))
	reg := NewRegistry()

	now := uint64(1_000_000)
	c, err := NewArchiveBounty(reg, ledger, "bounty-1", creator, safemath.FromWhole(500), now+86400, now)
	if err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	if got := ledger.Balance(creator); got.Cmp(safemath.FromWhole(500)) != 0 {
		t.Fatalf("expected creator balance 500 after escrow, got %s", got.String())
	}

	claimant := "arc-claimant"
	if err := reg.Call(ledger, c.ID, "claimBounty", map[string]any{"archive_hash": "deadbeef"}, claimant, now+10); err != nil {
		t.Fatalf("claim bounty: %v", err)
	}
	if c.Bounty.Status != BountyInProgress {
		t.Fatalf("expected InProgress status, got %s", c.Bounty.Status)
	}

	for i, validator := range []string{"val-1", "val-2", "val-3"} {
		if err := reg.Call(ledger, c.ID, "verifySubmission", map[string]any{"is_valid": true}, validator, now+20+uint64(i)); err != nil {
			t.Fatalf("verify submission %d: %v", i, err)
		}
	}

	if c.State != StateCompleted {
		t.Fatalf("expected bounty to complete, state=%s", c.State)
	}
	if got := ledger.Balance(claimant); got.Cmp(safemath.FromWhole(500)) != 0 {
		t.Fatalf("expected claimant to receive 500 reward, got %s", got.String())
	}

	foundCompleted := false
	for _, ev := range c.Events {
		if ev.Name == "BountyCompleted" {
			foundCompleted = true
			if ev.Data["claimant"] != claimant {
				t.Fatalf("expected BountyCompleted event to name claimant, got %v", ev.Data["claimant"])
			}
		}
	}
	if !foundCompleted {
		t.Fatal("expected a BountyCompleted event in the log")
	}
}

func TestBountyMajorityFalseResets(t *testing.T) {
	creator := "arc-creator"
	ledger := newFundedLedger(t, creator, safemath.FromWhole(1000))
	reg := NewRegistry()
	now := uint64(1000)

	c, err := NewArchiveBounty(reg, ledger, "bounty-2", creator, safemath.FromWhole(100), now+86400, now)
	if err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	if err := reg.Call(ledger, c.ID, "claimBounty", map[string]any{"archive_hash": "abc"}, "claimant", now+1); err != nil {
		t.Fatalf("claim: %v", err)
	}
	votes := []bool{false, false, true}
	for i, v := range votes {
		if err := reg.Call(ledger, c.ID, "verifySubmission", map[string]any{"is_valid": v}, "val", now+2+uint64(i)); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}
	if c.Bounty.Status != BountyOpen {
		t.Fatalf("expected bounty reopened after majority-false vote, status=%s", c.Bounty.Status)
	}
	if c.Bounty.Claimant != "" {
		t.Fatal("expected claimant to be cleared on rejection")
	}
}

func TestBountyCancelByCreatorOnly(t *testing.T) {
	creator := "arc-creator"
	ledger := newFundedLedger(t, creator, safemath.FromWhole(1000))
	reg := NewRegistry()
	now := uint64(1000)

	c, err := NewArchiveBounty(reg, ledger, "bounty-3", creator, safemath.FromWhole(50), now+86400, now)
	if err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	if err := reg.Call(ledger, c.ID, "cancelBounty", nil, "not-the-creator", now+1); err == nil {
		t.Fatal("expected cancellation by a non-creator to be rejected")
	}
	if err := reg.Call(ledger, c.ID, "cancelBounty", nil, creator, now+1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.State != StateCancelled {
		t.Fatalf("expected cancelled state, got %s", c.State)
	}
	if got := ledger.Balance(creator); got.Cmp(safemath.FromWhole(1000)) != 0 {
		t.Fatalf("expected full refund to creator, got %s", got.String())
	}
}

func TestBountyExpiresAfterDeadline(t *testing.T) {
	creator := "arc-creator"
	ledger := newFundedLedger(t, creator, safemath.FromWhole(1000))
	reg := NewRegistry()
	now := uint64(1000)

	c, err := NewArchiveBounty(reg, ledger, "bounty-4", creator, safemath.FromWhole(50), now+10, now)
	if err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	if err := reg.Call(ledger, c.ID, "claimBounty", map[string]any{"archive_hash": "x"}, "claimant", now+100); err == nil {
		t.Fatal("expected claim after deadline to fail")
	}
	if c.State != StateExpired {
		t.Fatalf("expected expired state, got %s", c.State)
	}
}
