package nodeview

import "testing"

func newTestNode(t *testing.T) *Node {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.NodeID = "arc-node-a"
	cfg.StorageCapacityBytes = 1000
	n, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestStoreArchiveRejectsOverCapacity(t *testing.T) {
	n := newTestNode(t)
	if err := n.StoreArchive("arc-a", "text/html", 2000, 1000); err == nil {
		t.Fatal("expected capacity rejection")
	}
}

func TestStoreArchiveRejectsWrongSpecialization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.NodeID = "arc-node-b"
	cfg.StorageCapacityBytes = 1000
	cfg.ContentSpecializations = []string{"video/mp4"}
	n, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer n.Close()

	if err := n.StoreArchive("arc-a", "text/html", 100, 1000); err == nil {
		t.Fatal("expected specialization rejection")
	}
}

func TestStoreArchiveAnnouncesToDHT(t *testing.T) {
	n := newTestNode(t)
	if err := n.StoreArchive("arc-a", "text/html", 100, 1000); err != nil {
		t.Fatalf("store: %v", err)
	}
	providers, err := n.FindProviders("arc-a")
	if err != nil {
		t.Fatalf("find providers: %v", err)
	}
	if len(providers) != 1 || providers[0] != "arc-node-a" {
		t.Fatalf("expected [arc-node-a], got %v", providers)
	}
}

func TestMaintainEvictsStaleDHTEntries(t *testing.T) {
	n := newTestNode(t)
	if err := n.store.announce("arc-old", "arc-peer-x", 1000); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if err := n.Maintain(1000 + dhtStaleSeconds + 1); err != nil {
		t.Fatalf("maintain: %v", err)
	}
	providers, err := n.FindProviders("arc-old")
	if err != nil {
		t.Fatalf("find providers: %v", err)
	}
	if len(providers) != 0 {
		t.Fatalf("expected stale entry evicted, got %v", providers)
	}
}

func TestMaintainDropsStalePeers(t *testing.T) {
	n := newTestNode(t)
	if err := n.RegisterPeer("arc-peer-x", 1000, 20.0); err != nil {
		t.Fatalf("register peer: %v", err)
	}
	if err := n.Maintain(1000 + peerStaleSeconds + 1); err != nil {
		t.Fatalf("maintain: %v", err)
	}
	peers, err := n.Peers()
	if err != nil {
		t.Fatalf("peers: %v", err)
	}
	if len(peers) != 0 {
		t.Fatalf("expected stale peer dropped, got %v", peers)
	}
}

func TestMaintainEvictsLRUWhenOverUtilized(t *testing.T) {
	n := newTestNode(t)
	// Fill to 95% utilization with two archives.
	if err := n.StoreArchive("arc-1", "text/html", 500, 1000); err != nil {
		t.Fatalf("store 1: %v", err)
	}
	if err := n.StoreArchive("arc-2", "text/html", 450, 1001); err != nil {
		t.Fatalf("store 2: %v", err)
	}
	// Access arc-2 so it is not the least-recently-used entry.
	if _, err := n.RetrieveArchive("arc-2", 5.0, 1002); err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	if err := n.Maintain(1003); err != nil {
		t.Fatalf("maintain: %v", err)
	}

	if _, ok, err := n.store.getInventory("arc-1"); err != nil || ok {
		t.Fatalf("expected arc-1 (LRU) evicted, ok=%v err=%v", ok, err)
	}
	if _, ok, err := n.store.getInventory("arc-2"); err != nil || !ok {
		t.Fatalf("expected arc-2 retained, ok=%v err=%v", ok, err)
	}
}
