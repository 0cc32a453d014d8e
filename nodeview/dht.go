package nodeview

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// dhtStaleSeconds is how long a DHT entry survives without reannouncement
// before maintenance evicts it (spec §4.9 "> 24 h").
const dhtStaleSeconds = 24 * 3600

// hashPrefix derives the DHT slice key for an archive: the first 8 bytes
// of SHA-256(archive_id), hex-encoded (spec §4.9 "SHA-256(archive_id)[..8]").
func hashPrefix(archiveID string) string {
	sum := sha256.Sum256([]byte(archiveID))
	return hex.EncodeToString(sum[:8])
}

// dhtRecord tracks, per hash-prefix slice, which nodes last announced
// holding a matching archive and when.
type dhtRecord struct {
	Providers map[string]uint64 `json:"providers"` // node_id -> last announced (unix seconds)
}

func (s *store) announce(archiveID, nodeID string, now uint64) error {
	key := hashPrefix(archiveID)
	raw, ok, err := s.get(bucketDHT, key)
	if err != nil {
		return err
	}
	rec := dhtRecord{Providers: make(map[string]uint64)}
	if ok {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
	}
	rec.Providers[nodeID] = now
	out, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.put(bucketDHT, key, out)
}

func (s *store) lookupProviders(archiveID string) ([]string, error) {
	raw, ok, err := s.get(bucketDHT, hashPrefix(archiveID))
	if err != nil || !ok {
		return nil, err
	}
	var rec dhtRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(rec.Providers))
	for node := range rec.Providers {
		providers = append(providers, node)
	}
	return providers, nil
}

// evictStaleDHT drops provider entries unseen for more than dhtStaleSeconds
// and removes slices left with no providers (spec §4.9).
func (s *store) evictStaleDHT(now uint64) error {
	var keys []string
	var records []dhtRecord
	if err := s.forEach(bucketDHT, func(key string, value []byte) error {
		var rec dhtRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		keys = append(keys, key)
		records = append(records, rec)
		return nil
	}); err != nil {
		return err
	}

	for i, key := range keys {
		rec := records[i]
		fresh := make(map[string]uint64)
		for node, ts := range rec.Providers {
			if age(now, ts) <= dhtStaleSeconds {
				fresh[node] = ts
			}
		}
		if len(fresh) == 0 {
			if err := s.delete(bucketDHT, key); err != nil {
				return err
			}
			continue
		}
		rec.Providers = fresh
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := s.put(bucketDHT, key, raw); err != nil {
			return err
		}
	}
	return nil
}

// withdraw removes nodeID as a provider for archiveID, e.g. after a local
// LRU eviction frees the archive (spec §4.9).
func (s *store) withdraw(archiveID, nodeID string) error {
	key := hashPrefix(archiveID)
	raw, ok, err := s.get(bucketDHT, key)
	if err != nil || !ok {
		return err
	}
	var rec dhtRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	delete(rec.Providers, nodeID)
	if len(rec.Providers) == 0 {
		return s.delete(bucketDHT, key)
	}
	out, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.put(bucketDHT, key, out)
}

func age(now, ts uint64) uint64 {
	if ts > now {
		return 0
	}
	return now - ts
}
