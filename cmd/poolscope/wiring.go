package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	redis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"poolScope/internal/adapter"
	"poolScope/internal/address"
	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/discovery"
	"poolScope/internal/httpx"
	"poolScope/internal/multicall"
	"poolScope/internal/observe"
	"poolScope/internal/tokens"
)

// environment owns the adapter and every resource opened to build it.
type environment struct {
	adapter adapter.ChainAdapter
	closers []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func setup(ctx context.Context, cfg config.Config, logger *zap.Logger) (*environment, error) {
	env := &environment{}
	ok := false
	defer func() {
		if !ok {
			env.Close()
		}
	}()

	reg, err := tokens.Default()
	if err != nil {
		return nil, err
	}
	chainEntry, err := reg.Chain(cfg.Chain)
	if err != nil {
		return nil, err
	}

	observers := observe.Multi{observe.NewZap(logger)}
	if cfg.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		observers = append(observers, observe.NewMetrics(promReg, chainEntry.Name))
		srv := startMetricsServer(cfg.MetricsAddr, promReg, logger)
		env.closers = append(env.closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}

	topMode, err := multicall.ParseMode(cfg.TopMode)
	if err != nil {
		return nil, fmt.Errorf("top-mode: %w", err)
	}
	snapshotMode, err := multicall.ParseMode(cfg.SnapshotMode)
	if err != nil {
		return nil, fmt.Errorf("snapshot-mode: %w", err)
	}

	opts := adapter.Options{
		Chain:        chainEntry.Name,
		Simulated:    cfg.Simulated,
		Registry:     reg,
		StableToken:  cfg.StableToken,
		Observer:     observers,
		TopMode:      topMode,
		SnapshotMode: snapshotMode,
		Batch: multicall.Config{
			ChunkSize:   cfg.ChunkSize,
			Parallelism: cfg.Parallelism,
			CallTimeout: cfg.CallTimeout,
		},
	}

	if cfg.Simulated {
		if cfg.Seed != 0 {
			opts.Rand = rand.NewSource(cfg.Seed)
		}
	} else {
		client, err := connect(ctx, cfg, chainEntry, logger)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, client.Close)

		multicallAddr := chainEntry.Multicall
		if cfg.Multicall != "" {
			if err := address.Check(cfg.Multicall); err != nil {
				return nil, fmt.Errorf("multicall: %w", err)
			}
			multicallAddr = common.HexToAddress(cfg.Multicall)
		}
		contract, err := multicall.NewContract(client, multicallAddr)
		if err != nil {
			return nil, err
		}
		opts.Aggregator = contract

		source, err := buildDiscovery(ctx, cfg, chainEntry, observers, env)
		if err != nil {
			return nil, err
		}
		opts.Discovery = source
	}

	a, err := adapter.New(opts)
	if err != nil {
		return nil, err
	}
	env.adapter = a
	ok = true
	return env, nil
}

// connect dials the RPC endpoint, retrying the first round trip, and checks
// that it serves the configured chain.
func connect(ctx context.Context, cfg config.Config, chainEntry *tokens.Chain, logger *zap.Logger) (*chain.Client, error) {
	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	var head uint64
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = client.LatestBlockNumber(ctx)
		if err != nil {
			logger.Warn("rpc probe failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("probe rpc: %w", err)
	}

	chainID, err := client.Probe(ctx, chainEntry.ChainID)
	if err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("rpc connected",
		zap.Uint64("chain_id", chainID),
		zap.Uint64("head", head),
	)
	return client, nil
}

func buildDiscovery(ctx context.Context, cfg config.Config, chainEntry *tokens.Chain, obs observe.Observer, env *environment) (*discovery.Source, error) {
	var providers []discovery.Provider

	if cfg.DiscoveryURL != "" {
		p, err := discovery.NewHTTPProvider(cfg.DiscoveryURL, cfg.DiscoveryAPIKey, httpx.New(cfg.DiscoveryTimeout, cfg.DiscoveryRetries))
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		env.closers = append(env.closers, pool.Close)
		p, err := discovery.NewPostgresProvider(pool, chainEntry.ChainID)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		env.closers = append(env.closers, func() { _ = client.Close() })
		p, err := discovery.NewRedisProvider(client, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	static := make([]string, 0, len(cfg.StaticPools)+len(chainEntry.Pools))
	static = append(static, cfg.StaticPools...)
	static = append(static, chainEntry.Pools...)

	return &discovery.Source{
		Providers: providers,
		Fallback:  []discovery.Provider{discovery.NewStaticProvider("static", static)},
		Timeout:   cfg.DiscoveryTimeout,
		Observer:  obs,
	}, nil
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr))
	return srv
}
