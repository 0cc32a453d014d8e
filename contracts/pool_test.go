package contracts

import (
	"testing"

	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

func TestPreservationPoolDistribution(t *testing.T) {
	contributor := "arc-contributor"
	ledger := newFundedLedger(t, contributor, safemath.FromWhole(1200))
	reg := NewRegistry()
	now := uint64(1000)

	c := NewPreservationPool(reg, "pool-1", "arc-creator", []string{"archive-a", "archive-b"}, now)
	if err := reg.Call(ledger, c.ID, "fund", map[string]any{"amount": safemath.FromWhole(1200)}, contributor, now); err != nil {
		t.Fatalf("fund: %v", err)
	}

	for _, node := range []string{"node-x", "node-y"} {
		if err := reg.Call(ledger, c.ID, "registerNode", map[string]any{"archives": []string{"archive-a", "archive-b", "archive-c"}}, node, now+1); err != nil {
			t.Fatalf("register %s: %v", node, err)
		}
		if err := reg.Call(ledger, c.ID, "verifyNode", map[string]any{"node": node}, "verifier", now+2); err != nil {
			t.Fatalf("verify %s: %v", node, err)
		}
	}

	if err := reg.Call(ledger, c.ID, "distributeRewards", nil, "anyone", now+3); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	// monthly_reward = 1200/12 = 100, split between 2 preservers = 50 each.
	want := safemath.FromWhole(50)
	if got := ledger.Balance("node-x"); got.Cmp(want) != 0 {
		t.Fatalf("expected node-x to receive 50, got %s", got.String())
	}
	if got := ledger.Balance("node-y"); got.Cmp(want) != 0 {
		t.Fatalf("expected node-y to receive 50, got %s", got.String())
	}

	// Idempotent within the 30-day window: a second call before the window
	// elapses must not distribute again.
	if err := reg.Call(ledger, c.ID, "distributeRewards", nil, "anyone", now+4); err != nil {
		t.Fatalf("second distribute call: %v", err)
	}
	if got := ledger.Balance("node-x"); got.Cmp(want) != 0 {
		t.Fatalf("expected no further distribution within window, got %s", got.String())
	}
}

func TestPreservationPoolRejectsNonSupersetNode(t *testing.T) {
	reg := NewRegistry()
	now := uint64(1000)
	c := NewPreservationPool(reg, "pool-2", "arc-creator", []string{"archive-a", "archive-b"}, now)
	var ledger *token.Ledger
	if err := reg.Call(ledger, c.ID, "registerNode", map[string]any{"archives": []string{"archive-a"}}, "node-x", now); err == nil {
		t.Fatal("expected registration to fail when node does not hold the full target set")
	}
}
