package token

import "testing"

func TestGenesisConservation(t *testing.T) {
	l := NewLedger()
	if err := l.Genesis("dev", "community", "public"); err != nil {
		t.Fatal(err)
	}
	total, err := l.ConservationTotal()
	if err != nil {
		t.Fatal(err)
	}
	if total.Cmp(l.TotalMinted()) != 0 {
		t.Fatalf("conservation total %s != total minted %s", total.String(), l.TotalMinted().String())
	}
}

func TestTransferWithFeeBurn(t *testing.T) {
	l := NewLedger()
	if err := l.credit("A", parseOrFatal(t, "1000")); err != nil {
		t.Fatal(err)
	}
	amount := parseOrFatal(t, "100")
	fee := parseOrFatal(t, "10")
	if err := l.Transfer("A", "B", amount, fee); err != nil {
		t.Fatal(err)
	}
	if l.Balance("A").String() != "890.000000" {
		t.Fatalf("A balance = %s, want 890.000000", l.Balance("A").String())
	}
	if l.Balance("B").String() != "100.000000" {
		t.Fatalf("B balance = %s, want 100.000000", l.Balance("B").String())
	}
	if l.TotalBurned().String() != "1.000000" {
		t.Fatalf("total_burned = %s, want 1.000000", l.TotalBurned().String())
	}
}

func TestStakeUnstake(t *testing.T) {
	l := NewLedger()
	if err := l.credit("A", parseOrFatal(t, "100")); err != nil {
		t.Fatal(err)
	}
	if err := l.Stake("A", parseOrFatal(t, "40")); err != nil {
		t.Fatal(err)
	}
	if l.Balance("A").String() != "60.000000" {
		t.Fatalf("balance after stake = %s", l.Balance("A").String())
	}
	if l.Staked("A").String() != "40.000000" {
		t.Fatalf("staked = %s", l.Staked("A").String())
	}
	if err := l.Unstake("A", parseOrFatal(t, "40")); err != nil {
		t.Fatal(err)
	}
	if l.Balance("A").String() != "100.000000" {
		t.Fatalf("balance after unstake = %s", l.Balance("A").String())
	}
	if err := l.Unstake("A", parseOrFatal(t, "1")); err == nil {
		t.Fatal("expected InsufficientStake error")
	}
}

func TestPoolExhausted(t *testing.T) {
	l := NewLedger()
	if err := l.Genesis("dev", "community", "public"); err != nil {
		t.Fatal(err)
	}
	huge, err := safemathHugeAmount()
	if err != nil {
		t.Fatal(err)
	}
	if err := l.CreditFromPool(PoolArchivingRewards, "archiver", huge); err == nil {
		t.Fatal("expected PoolExhausted error")
	}
}

func TestRewardFormulas(t *testing.T) {
	if _, err := InitialArchiveReward(1024, 1.0, "text/html"); err != nil {
		t.Fatal(err)
	}
	if _, err := MonthlyStorageReward(10, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := BandwidthReward(5); err != nil {
		t.Fatal(err)
	}
	d, err := DiscoveryReward(1.0)
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "100.000000" {
		t.Fatalf("discovery reward = %s, want 100.000000", d.String())
	}
}
