package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/chain"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/clmm"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/config"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/history"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/notify"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/rebalance"
)

func main() {
	root := &cobra.Command{
		Use:          "rebalancer",
		Short:        "Cetus CLMM position rebalancer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the periodic rebalance loop",
		RunE:  runLoop,
	}
	addRebalanceFlags(runCmd.Flags())
	root.AddCommand(runCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single check cycle and exit",
		RunE:  runOnce,
	}
	addRebalanceFlags(checkCmd.Flags())
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRebalanceFlags(flags *pflag.FlagSet) {
	flags.String("network", "mainnet", "Sui network (mainnet, testnet, devnet)")
	flags.StringSlice("endpoint", nil, "RPC endpoint URLs (comma-separated, overrides network defaults)")
	flags.String("owner", "", "address owning the positions")
	flags.StringSlice("pool", nil, "restrict rebalancing to these pool IDs (comma-separated)")
	flags.String("package-id", "", "CLMM package ID (defaults to the Cetus mainnet deployment)")
	flags.String("script-package-id", "", "pool script package ID")
	flags.String("global-config-id", "", "protocol global config object ID")
	flags.Bool("execute", false, "submit transactions (off = dry run)")
	flags.Duration("check-interval", 60*time.Second, "time between check cycles")
	flags.Uint64("slippage-bps", 50, "slippage tolerance in basis points")
	flags.Int("max-attempts", 3, "attempts per external call")
	flags.Duration("attempt-timeout", 15*time.Second, "timeout per attempt")
	flags.Duration("retry-backoff", time.Second, "pause between attempts")
	flags.Duration("pool-ttl", 5*time.Second, "pool snapshot cache TTL")
	flags.Duration("confirm-interval", time.Second, "pause between confirmation polls")
	flags.Int("confirm-attempts", 30, "confirmation polls before giving up")
	flags.Uint64("gas-budget", 100_000_000, "gas budget per transaction in MIST")
	flags.String("history-out", "./data/rebalances.jsonl", "rebalance history JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN for rebalance history (overrides history-out)")
	flags.String("telegram-token", "", "Telegram bot token for notifications")
	flags.Int64("telegram-chat-id", 0, "Telegram chat ID for notifications")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func runLoop(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("rebalancer start",
		zap.String("network", cfg.Network),
		zap.Strings("endpoints", cfg.Endpoints),
		zap.String("owner", cfg.Owner),
		zap.Bool("execute", cfg.Execute),
		zap.Duration("check_interval", cfg.CheckInterval),
		zap.Uint64("slippage_bps", cfg.SlippageBps),
		zap.Int("pools", len(cfg.Pools)),
	)

	return rebalance.NewScheduler(cfg.CheckInterval, orch, logger).Run(ctx)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := orch.CheckCycle(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("position check failed",
				zap.String("position", res.Position.PositionID),
				zap.Error(res.Err),
			)
			continue
		}
		logger.Info("position checked",
			zap.String("position", res.Position.PositionID),
			zap.String("state", res.State.String()),
		)
	}
	return nil
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// buildOrchestrator wires the transport, reader, executor, history, and
// notification layers per the configuration. The returned cleanup releases
// every connection it opened.
func buildOrchestrator(ctx context.Context, cfg config.Config, logger *zap.Logger) (*rebalance.Orchestrator, func(), error) {
	client, err := chain.NewClient(cfg.Endpoints)
	if err != nil {
		return nil, nil, fmt.Errorf("rpc client: %w", err)
	}
	closers := []func(){client.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := rebalance.Deps{
		Reader:  chain.NewReader(client, cfg.PackageID, logger),
		Rotator: client,
	}

	if cfg.Execute {
		signer, err := chain.NewEd25519Signer(cfg.SignerKey)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("signer: %w", err)
		}
		logger.Info("signing enabled", zap.String("address", signer.Address()))
		deps.Executor = chain.NewTxExecutor(client, signer, chain.ExecutorConfig{
			ScriptPackageID: cfg.ScriptPackageID,
			GlobalConfigID:  cfg.GlobalConfigID,
			GasBudget:       cfg.GasBudget,
			ConfirmInterval: cfg.ConfirmInterval,
			ConfirmAttempts: cfg.ConfirmAttempts,
		}, logger)
	}

	if cfg.PostgresDSN != "" {
		store, err := history.NewPostgresRecorder(ctx, cfg.PostgresDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres history: %w", err)
		}
		closers = append(closers, store.Close)
		deps.Recorder = store
	} else if cfg.HistoryOut != "" {
		deps.Recorder = history.NewJSONLRecorder(cfg.HistoryOut)
	}

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("telegram: %w", err)
		}
		deps.Notifier = notifier
	}

	orch := rebalance.NewOrchestrator(rebalance.Config{
		Owner:    cfg.Owner,
		Slippage: clmm.SlippageFromBps(cfg.SlippageBps),
		Execute:  cfg.Execute,
		Pools:    cfg.Pools,
		Retry: rebalance.Policy{
			MaxAttempts:    cfg.MaxAttempts,
			AttemptTimeout: cfg.AttemptTimeout,
			Backoff:        cfg.RetryBackoff,
		},
		PoolTTL: cfg.PoolTTL,
	}, deps, logger)

	return orch, cleanup, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
