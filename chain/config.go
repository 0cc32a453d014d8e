package chain

import "fmt"

// Config holds the parameters needed to bring up a chain writer: genesis
// addresses, difficulty bounds, and the data directory used for
// persistence (spec §4.8, §6).
type Config struct {
	DataDir  string
	Network  string
	LogLevel string // debug|info|warn|error

	GenesisAddress  string
	DevelopmentAddr string
	CommunityAddr   string
	PublicSaleAddr  string

	InitialDifficulty int
	MinDifficulty     int

	MaxBlockSizeBytes   int
	BlockTimeTargetSecs uint64
}

// DefaultConfig returns the standard devnet configuration: data under
// ./data, difficulty starting at 4, a 1 MiB block size budget and a
// 600-second block time target (spec §4.8).
func DefaultConfig() Config {
	return Config{
		DataDir:             "./data",
		Network:             "devnet",
		LogLevel:            "info",
		GenesisAddress:      "arc-genesis",
		DevelopmentAddr:     "arc-development",
		CommunityAddr:       "arc-community",
		PublicSaleAddr:      "arc-public-sale",
		InitialDifficulty:   4,
		MinDifficulty:       1,
		MaxBlockSizeBytes:   1 << 20, // 1 MiB
		BlockTimeTargetSecs: 600,
	}
}

// ValidateConfig checks that cfg's fields are self-consistent before a
// chain is constructed from it.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("chain: data_dir is required")
	}
	if cfg.GenesisAddress == "" || cfg.DevelopmentAddr == "" || cfg.CommunityAddr == "" || cfg.PublicSaleAddr == "" {
		return fmt.Errorf("chain: genesis addresses must all be set")
	}
	if cfg.InitialDifficulty < 1 {
		return fmt.Errorf("chain: initial_difficulty must be at least 1")
	}
	if cfg.MinDifficulty < 1 {
		return fmt.Errorf("chain: min_difficulty must be at least 1")
	}
	if cfg.InitialDifficulty < cfg.MinDifficulty {
		return fmt.Errorf("chain: initial_difficulty must be >= min_difficulty")
	}
	if cfg.MaxBlockSizeBytes <= 0 {
		return fmt.Errorf("chain: max_block_size_bytes must be positive")
	}
	if cfg.BlockTimeTargetSecs == 0 {
		return fmt.Errorf("chain: block_time_target_secs must be positive")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("chain: unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
