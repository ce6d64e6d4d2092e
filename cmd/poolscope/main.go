package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "EVM liquidity pool discovery and batched state reads",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Discover the top pools trading the chain's stable token",
		RunE:  runTop,
	}
	addCommonFlags(topCmd.Flags())
	topCmd.Flags().Int("limit", 20, "maximum number of pools")
	topCmd.Flags().String("top-mode", "lenient", "aggregation mode for pool reads (strict, lenient)")
	topCmd.Flags().StringSlice("static-pools", nil, "fallback pool addresses (comma-separated)")
	topCmd.Flags().String("discovery-url", "", "explorer API URL template ({token}, {limit}, {apikey})")
	topCmd.Flags().String("discovery-api-key", "", "explorer API key")
	topCmd.Flags().Duration("discovery-timeout", 10*time.Second, "timeout per discovery provider")
	topCmd.Flags().Int("discovery-retries", 0, "retries for rate-limited or failing discovery requests")
	topCmd.Flags().String("pg-dsn", "", "Postgres DSN of an existing pools table (read-only)")
	topCmd.Flags().String("redis-addr", "", "Redis address of a ranked pool set (read-only)")
	topCmd.Flags().String("redis-key", "poolscope:pools:{token}", "Redis sorted set key")
	root.AddCommand(topCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read price and liquidity for known pool addresses",
		RunE:  runSnapshot,
	}
	addCommonFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().StringSlice("pool", nil, "pool addresses (comma-separated)")
	snapshotCmd.Flags().String("snapshot-mode", "lenient", "aggregation mode for snapshot reads (strict, lenient)")
	root.AddCommand(snapshotCmd)

	return root
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("chain", "ethereum", "chain name from the token registry")
	flags.String("rpc", "", "RPC URL (http, ws or ipc)")
	flags.Bool("simulated", false, "serve synthetic pools instead of reading the chain")
	flags.Int64("seed", 0, "random seed for --simulated, 0 means time based")
	flags.String("multicall", "", "Multicall3 address override")
	flags.String("stable-token", "", "stable token address override")
	flags.Int("chunk-size", 50, "pools per aggregation call")
	flags.Int("parallelism", 1, "concurrent aggregation calls")
	flags.Duration("call-timeout", 10*time.Second, "timeout per aggregation call")
	flags.String("out", "", "output JSONL path, stdout when empty")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	flags.Int("max-retries", 3, "connection probe retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial connection probe backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
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
