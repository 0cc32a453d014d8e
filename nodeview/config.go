package nodeview

import "fmt"

// Config describes a single node's local capacity and specialization, and
// where its bbolt-backed view is persisted (spec §4.9).
type Config struct {
	DataDir                string
	NodeID                 string
	StorageCapacityBytes   int64
	ContentSpecializations []string // empty means "accepts any content type"
}

// DefaultConfig returns a generalist node with 1 TiB of capacity and no
// content-type restriction.
func DefaultConfig() Config {
	return Config{
		DataDir:              "./data/nodeview",
		NodeID:               "arc-node",
		StorageCapacityBytes: 1 << 40,
	}
}

// ValidateConfig checks cfg's fields are self-consistent.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("nodeview: data_dir is required")
	}
	if cfg.NodeID == "" {
		return fmt.Errorf("nodeview: node_id is required")
	}
	if cfg.StorageCapacityBytes <= 0 {
		return fmt.Errorf("nodeview: storage_capacity_bytes must be positive")
	}
	return nil
}
