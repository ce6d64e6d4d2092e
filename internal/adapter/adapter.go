// Package adapter exposes pool discovery and pool state retrieval for one
// chain behind a single interface, backed either by live RPC reads or by a
// deterministic simulation.
package adapter

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/address"
	"poolScope/internal/codec"
	"poolScope/internal/discovery"
	"poolScope/internal/model"
	"poolScope/internal/multicall"
	"poolScope/internal/observe"
	"poolScope/internal/tokens"
)

// ErrInvalidLimit is returned by TopPools for a negative limit.
var ErrInvalidLimit = discovery.ErrInvalidLimit

// Operation names reported to observers.
const (
	OpTopPools  = "top_pools"
	OpTokenMeta = "token_meta"
	OpReserves  = "reserves"
	OpSnapshot  = "snapshot"
)

// ChainAdapter answers pool queries for one chain. Only misuse is an error;
// unreachable sources and failed reads shorten the results.
type ChainAdapter interface {
	ChainName() string
	StableTokenAddress() common.Address
	TopPools(ctx context.Context, limit int) ([]model.Pool, error)
	BatchPoolData(ctx context.Context, addresses []string) ([]model.PoolSnapshot, error)
}

// Options configures New. Live-only and simulated-only fields are ignored by
// the other variant.
type Options struct {
	Chain     string
	Simulated bool
	// Registry defaults to the embedded token registry.
	Registry *tokens.Registry
	// StableToken overrides the registry's stable token address.
	StableToken string
	Observer    observe.Observer

	Aggregator   multicall.Aggregator
	Codec        *codec.Codec
	Batch        multicall.Config
	Discovery    *discovery.Source
	TopMode      multicall.Mode
	SnapshotMode multicall.Mode

	// Rand drives price jitter. Defaults to a time-seeded source.
	Rand rand.Source
}

// New builds the live or simulated adapter selected by opts.Simulated.
func New(opts Options) (ChainAdapter, error) {
	if opts.Simulated {
		return NewSimulated(opts)
	}
	return NewLive(opts)
}

type chainInfo struct {
	chain  *tokens.Chain
	stable model.Token
}

func resolveChain(opts Options) (chainInfo, error) {
	reg := opts.Registry
	if reg == nil {
		var err error
		reg, err = tokens.Default()
		if err != nil {
			return chainInfo{}, err
		}
	}
	chain, err := reg.Chain(opts.Chain)
	if err != nil {
		return chainInfo{}, err
	}

	stable, ok := chain.Stable()
	if override := strings.TrimSpace(opts.StableToken); override != "" {
		if !address.Validate(override) {
			return chainInfo{}, fmt.Errorf("invalid stable token address %q", override)
		}
		addr := common.HexToAddress(override)
		if token, known := chain.Lookup(addr); known {
			stable = token
		} else {
			stable = model.Token{Address: addr, Decimals: 18}
		}
		ok = true
	}
	if !ok {
		return chainInfo{}, fmt.Errorf("chain %s has no stable token", chain.Name)
	}
	return chainInfo{chain: chain, stable: stable}, nil
}

func defaultRand(src rand.Source) rand.Source {
	if src != nil {
		return src
	}
	return rand.NewSource(time.Now().UnixNano())
}
