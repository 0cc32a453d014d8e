package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/archivechain/archivechain/chain"
	"github.com/archivechain/archivechain/consensus"
	"github.com/archivechain/archivechain/crypto"
	"github.com/archivechain/archivechain/nodeview"
)

var nowUnix = func() uint64 { return uint64(time.Now().Unix()) }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := chain.DefaultConfig()
	cfg := defaults

	fs := flag.NewFlagSet("archivechain-node", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name (devnet/testnet/mainnet)")
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.GenesisAddress, "genesis-address", defaults.GenesisAddress, "genesis payee address")
	fs.StringVar(&cfg.DevelopmentAddr, "development-address", defaults.DevelopmentAddr, "development pool seed address")
	fs.StringVar(&cfg.CommunityAddr, "community-address", defaults.CommunityAddr, "community pool seed address")
	fs.StringVar(&cfg.PublicSaleAddr, "public-sale-address", defaults.PublicSaleAddr, "public-sale pool seed address")
	fs.IntVar(&cfg.InitialDifficulty, "initial-difficulty", defaults.InitialDifficulty, "starting mining difficulty")
	fs.IntVar(&cfg.MinDifficulty, "min-difficulty", defaults.MinDifficulty, "difficulty floor")
	storageCapacity := fs.Int64("storage-capacity-bytes", 1<<40, "local node-view storage capacity in bytes")
	mineBlocks := fs.Int("mine-blocks", 0, "mine N blocks locally after startup")
	mineExit := fs.Bool("mine-exit", false, "exit immediately after local mining")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := chain.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		fmt.Fprintf(stderr, "datadir create failed: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	if err := printConfig(stdout, cfg); err != nil {
		fmt.Fprintf(stderr, "config encode failed: %v\n", err)
		return 1
	}

	c, err := chain.NewChain(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "chain init failed: %v\n", err)
		return 2
	}
	if err := c.Load(); err != nil {
		fmt.Fprintf(stderr, "chainstate load failed: %v\n", err)
		return 2
	}
	if c.Length() == 0 {
		if err := c.Genesis(float64(nowUnix())); err != nil {
			fmt.Fprintf(stderr, "genesis failed: %v\n", err)
			return 2
		}
	}
	if err := c.Save(); err != nil {
		fmt.Fprintf(stderr, "chainstate save failed: %v\n", err)
		return 2
	}

	ncfg := nodeview.DefaultConfig()
	ncfg.DataDir = filepath.Join(cfg.DataDir, "nodeview")
	ncfg.StorageCapacityBytes = *storageCapacity
	view, err := nodeview.Open(ncfg)
	if err != nil {
		fmt.Fprintf(stderr, "node view open failed: %v\n", err)
		return 2
	}
	defer view.Close()

	stats, err := c.Stats()
	if err != nil {
		fmt.Fprintf(stderr, "stats failed: %v\n", err)
		return 2
	}
	fmt.Fprintf(stdout, "chain: height=%d mempool=%d difficulty=%d archives=%d supply=%s\n",
		stats.BlockHeight, stats.MempoolSize, stats.CurrentDifficulty, stats.TotalArchives, stats.TotalSupply.String())

	if *dryRun {
		return 0
	}

	if *mineBlocks > 0 {
		minerPriv, err := crypto.GenerateKey()
		if err != nil {
			fmt.Fprintf(stderr, "miner keygen failed: %v\n", err)
			return 2
		}
		minerID := minerPriv.Public().Address()
		if err := c.RegisterKey(minerPriv.Public()); err != nil {
			fmt.Fprintf(stderr, "miner key registration failed: %v\n", err)
			return 2
		}
		// A freshly generated miner holds no PoA score yet; seed one
		// storage proof above the 1 GiB minimum so it clears
		// ValidateBlockCreationRight's eligibility floor (spec §4.6).
		c.Tracker.RecordStorageProof(consensus.StorageProof{
			NodeID:    minerID,
			ArchiveID: "bootstrap",
			FileSize:  100 * consensus.GiB,
			Timestamp: nowUnix(),
		})

		for i := 0; i < *mineBlocks; i++ {
			ab, err := c.MineBlock(minerID, nowUnix())
			if err != nil {
				fmt.Fprintf(stderr, "mining failed: %v\n", err)
				return 2
			}
			fmt.Fprintf(stdout, "mined: height=%d difficulty=%d tx_count=%d\n",
				ab.Header.BlockHeight, ab.Header.Difficulty, len(ab.Transactions))
		}
		if err := c.Save(); err != nil {
			fmt.Fprintf(stderr, "chainstate save failed: %v\n", err)
			return 2
		}
		if *mineExit {
			return 0
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(stdout, "archivechain-node running")
	<-ctx.Done()
	if err := c.Save(); err != nil {
		fmt.Fprintf(stderr, "chainstate save on shutdown failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "archivechain-node stopped")
	return 0
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printConfig(w io.Writer, cfg chain.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
