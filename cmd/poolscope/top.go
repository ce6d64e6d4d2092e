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

func runTop(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
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

	logger.Info("top pools start",
		zap.String("chain", env.adapter.ChainName()),
		zap.String("stable_token", env.adapter.StableTokenAddress().Hex()),
		zap.Int("limit", cfg.Limit),
		zap.Bool("simulated", cfg.Simulated),
	)

	start := time.Now()
	pools, err := env.adapter.TopPools(ctx, cfg.Limit)
	if err != nil {
		return fmt.Errorf("top pools: %w", err)
	}

	out, err := newJSONLWriter(cfg.Out)
	if err != nil {
		return err
	}
	for _, pool := range pools {
		if err := out.Write(pool); err != nil {
			out.Close()
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Info("top pools done",
		zap.Int("pools", len(pools)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
