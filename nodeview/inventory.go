package nodeview

import "encoding/json"

// InventoryEntry is a single locally-stored archive's bookkeeping record
// (spec §4.9, grounded on the original node's stored_archives metadata).
type InventoryEntry struct {
	ArchiveID    string `json:"archive_id"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
	StoredAt     uint64 `json:"stored_at"`
	LastAccessed uint64 `json:"last_accessed"`
	AccessCount  int64  `json:"access_count"`
}

func (s *store) putInventory(e InventoryEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.put(bucketInventory, e.ArchiveID, raw)
}

func (s *store) getInventory(archiveID string) (InventoryEntry, bool, error) {
	raw, ok, err := s.get(bucketInventory, archiveID)
	if err != nil || !ok {
		return InventoryEntry{}, ok, err
	}
	var e InventoryEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return InventoryEntry{}, false, err
	}
	return e, true, nil
}

func (s *store) deleteInventory(archiveID string) error {
	return s.delete(bucketInventory, archiveID)
}

func (s *store) listInventory() ([]InventoryEntry, error) {
	var out []InventoryEntry
	err := s.forEach(bucketInventory, func(_ string, value []byte) error {
		var e InventoryEntry
		if err := json.Unmarshal(value, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (s *store) usedStorageBytes() (int64, error) {
	entries, err := s.listInventory()
	if err != nil {
		return 0, err
	}
	var used int64
	for _, e := range entries {
		used += e.SizeBytes
	}
	return used, nil
}
