package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Pools) == 0 {
		return fmt.Errorf("pool list is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	logger.Info("snapshot start",
		zap.String("chain", env.adapter.ChainName()),
		zap.Int("pools", len(cfg.Pools)),
		zap.String("mode", cfg.SnapshotMode),
	)

	start := time.Now()
	snapshots, err := env.adapter.BatchPoolData(ctx, cfg.Pools)
	if err != nil {
		return fmt.Errorf("batch pool data: %w", err)
	}

	out, err := newJSONLWriter(cfg.Out)
	if err != nil {
		return err
	}
	for _, snap := range snapshots {
		if err := out.Write(snap); err != nil {
			out.Close()
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Info("snapshot done",
		zap.Int("requested", len(cfg.Pools)),
		zap.Int("snapshots", len(snapshots)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
