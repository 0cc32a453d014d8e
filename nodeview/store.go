package nodeview

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const storeFileName = "nodeview.db"

var (
	bucketInventory = []byte("inventory_by_archive_id")
	bucketDHT       = []byte("dht_by_hash_prefix")
	bucketPeers     = []byte("peers_by_node_id")
	bucketMetrics   = []byte("metrics")
)

// store is the bbolt-backed persistence layer underneath a Node: storage
// inventory, the local DHT slice, and the peer table (spec §4.9), grounded
// on the teacher's node/store bbolt bucket layout.
type store struct {
	db *bolt.DB
}

func openStore(dataDir string) (*store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, newErr(ErrStoreUnavailable, err.Error())
	}
	db, err := bolt.Open(filepath.Join(dataDir, storeFileName), 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, newErr(ErrStoreUnavailable, err.Error())
	}
	s := &store{db: db}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketInventory, bucketDHT, bucketPeers, bucketMetrics} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, newErr(ErrStoreUnavailable, err.Error())
	}
	return s, nil
}

func (s *store) close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *store) put(bucket []byte, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), value)
	})
}

func (s *store) get(bucket []byte, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *store) delete(bucket []byte, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

func (s *store) forEach(bucket []byte, fn func(key string, value []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}
