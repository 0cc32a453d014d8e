// Package nodeview implements ArchiveChain's per-process node view (spec
// §4.9): local storage inventory, a DHT slice keyed by content-address
// prefix, a peer table, and rolling performance metrics. It is an optional
// view the chain itself never reads or writes — it exists for a collaborator
// process to track what this node physically holds.
package nodeview

import "sort"

// Node is a single process's local view of its own storage, DHT slice, and
// peers, persisted in a bbolt database under cfg.DataDir.
type Node struct {
	cfg   Config
	store *store
}

// Open constructs (or reopens) a node view backed by a bbolt database
// under cfg.DataDir.
func Open(cfg Config) (*Node, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	st, err := openStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &Node{cfg: cfg, store: st}, nil
}

// Close releases the underlying bbolt database.
func (n *Node) Close() error {
	return n.store.close()
}

func (n *Node) specializes(contentType string) bool {
	if len(n.cfg.ContentSpecializations) == 0 {
		return true
	}
	for _, ct := range n.cfg.ContentSpecializations {
		if ct == contentType {
			return true
		}
	}
	return false
}

// StoreArchive records that this node now holds archiveID locally: it
// rejects when capacity would be exceeded or the content type falls
// outside this node's specialization set (spec §4.9).
func (n *Node) StoreArchive(archiveID, contentType string, sizeBytes int64, now uint64) error {
	if !n.specializes(contentType) {
		return newErr(ErrSpecializationMismatch, contentType)
	}
	used, err := n.store.usedStorageBytes()
	if err != nil {
		return err
	}
	if used+sizeBytes > n.cfg.StorageCapacityBytes {
		return newErr(ErrCapacityExceeded, archiveID)
	}

	entry := InventoryEntry{
		ArchiveID:    archiveID,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		StoredAt:     now,
		LastAccessed: now,
	}
	if err := n.store.putInventory(entry); err != nil {
		return err
	}
	if err := n.store.announce(archiveID, n.cfg.NodeID, now); err != nil {
		return err
	}
	return n.refreshUtilization()
}

// RetrieveArchive records a local access to archiveID and returns its
// inventory entry, bumping its access metrics for LRU purposes and folding
// the serve latency into the rolling metrics.
func (n *Node) RetrieveArchive(archiveID string, responseTimeMs float64, now uint64) (InventoryEntry, error) {
	entry, ok, err := n.store.getInventory(archiveID)
	if err != nil {
		return InventoryEntry{}, err
	}
	if !ok {
		return InventoryEntry{}, newErr(ErrNotFound, archiveID)
	}
	entry.AccessCount++
	entry.LastAccessed = now
	if err := n.store.putInventory(entry); err != nil {
		return InventoryEntry{}, err
	}

	m, err := n.store.getMetrics()
	if err != nil {
		return InventoryEntry{}, err
	}
	m.recordRequestServed(entry.SizeBytes, responseTimeMs, now)
	if err := n.store.putMetrics(m); err != nil {
		return InventoryEntry{}, err
	}
	return entry, nil
}

// FindProviders returns the node IDs this node's DHT slice believes hold
// archiveID.
func (n *Node) FindProviders(archiveID string) ([]string, error) {
	return n.store.lookupProviders(archiveID)
}

// RegisterPeer upserts a peer's last-seen timestamp and latency.
func (n *Node) RegisterPeer(nodeID string, now uint64, latencyMs float64) error {
	return n.store.upsertPeer(PeerRecord{NodeID: nodeID, LastSeen: now, LatencyMs: latencyMs})
}

// Peers returns every currently-known peer.
func (n *Node) Peers() ([]PeerRecord, error) {
	return n.store.listPeers()
}

// Metrics returns the current rolling metrics snapshot.
func (n *Node) Metrics() (Metrics, error) {
	return n.store.getMetrics()
}

func (n *Node) refreshUtilization() error {
	used, err := n.store.usedStorageBytes()
	if err != nil {
		return err
	}
	m, err := n.store.getMetrics()
	if err != nil {
		return err
	}
	if n.cfg.StorageCapacityBytes > 0 {
		m.StorageUtilization = float64(used) / float64(n.cfg.StorageCapacityBytes)
	}
	return n.store.putMetrics(m)
}

// utilizationHighWater and utilizationTarget gate LRU eviction during
// maintenance (spec §4.9: "> 0.9 ... down to 0.8").
const (
	utilizationHighWater = 0.9
	utilizationTarget    = 0.8
)

// Maintain performs one idempotent maintenance tick: evicts stale DHT
// entries, drops unseen peers, and — if storage utilization exceeds 0.9 —
// evicts least-recently-used archives down to 0.8 (spec §4.9).
func (n *Node) Maintain(now uint64) error {
	if err := n.store.evictStaleDHT(now); err != nil {
		return err
	}
	if err := n.store.dropStalePeers(now); err != nil {
		return err
	}
	return n.evictLRUIfOverCapacity(now)
}

func (n *Node) evictLRUIfOverCapacity(now uint64) error {
	m, err := n.store.getMetrics()
	if err != nil {
		return err
	}
	if m.StorageUtilization <= utilizationHighWater {
		return nil
	}

	entries, err := n.store.listInventory()
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AccessCount != entries[j].AccessCount {
			return entries[i].AccessCount < entries[j].AccessCount
		}
		return entries[i].LastAccessed < entries[j].LastAccessed
	})

	capacity := n.cfg.StorageCapacityBytes
	used, err := n.store.usedStorageBytes()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if capacity == 0 || float64(used)/float64(capacity) <= utilizationTarget {
			break
		}
		if err := n.store.deleteInventory(e.ArchiveID); err != nil {
			return err
		}
		if err := n.store.withdraw(e.ArchiveID, n.cfg.NodeID); err != nil {
			return err
		}
		used -= e.SizeBytes
	}
	return n.refreshUtilization()
}
