package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/address"
	"poolScope/internal/codec"
	"poolScope/internal/discovery"
	"poolScope/internal/model"
	"poolScope/internal/multicall"
	"poolScope/internal/observe"
)

const defaultDecimals = 18

// Live reads pool state from chain through Multicall3.
type Live struct {
	info         chainInfo
	codec        *codec.Codec
	batcher      *multicall.Batcher
	source       *discovery.Source
	topMode      multicall.Mode
	snapshotMode multicall.Mode
	observer     observe.Observer
}

// NewLive builds a live adapter. opts.Aggregator is required; a nil
// discovery source falls back to the registry's default pools.
func NewLive(opts Options) (*Live, error) {
	if opts.Aggregator == nil {
		return nil, fmt.Errorf("aggregator is required for the live adapter")
	}
	info, err := resolveChain(opts)
	if err != nil {
		return nil, err
	}

	c := opts.Codec
	if c == nil {
		c, err = codec.New()
		if err != nil {
			return nil, err
		}
	}
	observer := observe.OrNop(opts.Observer)
	batcher, err := multicall.NewBatcher(opts.Aggregator, c, opts.Batch, observer)
	if err != nil {
		return nil, err
	}

	source := opts.Discovery
	if source == nil {
		source = &discovery.Source{
			Fallback: []discovery.Provider{discovery.NewStaticProvider("static", info.chain.Pools)},
			Observer: observer,
		}
	}

	return &Live{
		info:         info,
		codec:        c,
		batcher:      batcher,
		source:       source,
		topMode:      opts.TopMode,
		snapshotMode: opts.SnapshotMode,
		observer:     observer,
	}, nil
}

func (l *Live) ChainName() string {
	return l.info.chain.Name
}

func (l *Live) StableTokenAddress() common.Address {
	return l.info.stable.Address
}

type poolHeader struct {
	address common.Address
	token0  common.Address
	token1  common.Address
	fee     uint32
}

// TopPools discovers up to limit pools trading the stable token and reads
// their tokens, fee tier and reserves.
func (l *Live) TopPools(ctx context.Context, limit int) ([]model.Pool, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	pools := make([]model.Pool, 0)
	if limit == 0 {
		return pools, nil
	}

	candidates, err := l.source.Discover(ctx, discovery.Query{Token: l.info.stable.Address.Hex(), Limit: limit})
	if err != nil {
		return nil, err
	}

	records := l.batcher.Run(ctx, OpTopPools, l.topMode, candidates, codec.Token0, codec.Token1, codec.Fee)
	headers := make([]poolHeader, 0, len(records))
	for _, rec := range records {
		headers = append(headers, poolHeader{
			address: rec.Address,
			token0:  rec.Values[0].(common.Address),
			token1:  rec.Values[1].(common.Address),
			fee:     rec.Values[2].(uint32),
		})
	}

	meta := l.tokenMetadata(ctx, headers)
	reserves := l.reserves(ctx, headers)

	for _, h := range headers {
		r, ok := reserves[h.address]
		if !ok {
			continue
		}
		pools = append(pools, model.Pool{
			Address:  h.address,
			Token0:   meta[h.token0],
			Token1:   meta[h.token1],
			Reserve0: r[0],
			Reserve1: r[1],
			FeeTier:  h.fee,
		})
	}

	l.observer.PoolsLoaded(OpTopPools, len(pools))
	return pools, nil
}

// tokenMetadata resolves every token of headers from the registry, reading
// unknown tokens on chain. Unreadable tokens get default decimals.
func (l *Live) tokenMetadata(ctx context.Context, headers []poolHeader) map[common.Address]model.Token {
	meta := make(map[common.Address]model.Token)
	var unknown []common.Address
	for _, h := range headers {
		for _, token := range []common.Address{h.token0, h.token1} {
			if _, ok := meta[token]; ok {
				continue
			}
			if known, ok := l.info.chain.Lookup(token); ok {
				meta[token] = known
				continue
			}
			meta[token] = model.Token{Address: token, Decimals: defaultDecimals}
			unknown = append(unknown, token)
		}
	}

	records := l.batcher.Run(ctx, OpTokenMeta, multicall.ModeLenient, unknown, codec.Decimals, codec.Symbol, codec.Name)
	for _, rec := range records {
		meta[rec.Address] = model.Token{
			Address:  rec.Address,
			Decimals: rec.Values[0].(uint8),
			Symbol:   rec.Values[1].(string),
			Name:     rec.Values[2].(string),
		}
	}
	return meta
}

func (l *Live) reserves(ctx context.Context, headers []poolHeader) map[common.Address][2]*big.Int {
	requests := make([]multicall.Request, len(headers))
	for i, h := range headers {
		requests[i] = multicall.Request{
			Address: h.address,
			Calls: []multicall.CallSpec{
				{Target: h.token0, Function: codec.BalanceOf, Args: []interface{}{h.address}},
				{Target: h.token1, Function: codec.BalanceOf, Args: []interface{}{h.address}},
			},
		}
	}

	out := make(map[common.Address][2]*big.Int, len(headers))
	for _, rec := range l.batcher.Execute(ctx, OpReserves, l.topMode, requests) {
		out[rec.Address] = [2]*big.Int{rec.Values[0].(*big.Int), rec.Values[1].(*big.Int)}
	}
	return out
}

// BatchPoolData reads slot0 and liquidity for every valid address. Invalid
// and duplicate addresses are dropped before any call is made.
func (l *Live) BatchPoolData(ctx context.Context, addresses []string) ([]model.PoolSnapshot, error) {
	snapshots := make([]model.PoolSnapshot, 0, len(addresses))
	if len(addresses) == 0 {
		return snapshots, nil
	}

	valid, rejected := address.Parse(addresses)
	for _, candidate := range rejected {
		l.observer.AddressRejected(candidate)
	}
	valid = address.Dedupe(valid)

	for _, rec := range l.batcher.Run(ctx, OpSnapshot, l.snapshotMode, valid, codec.Slot0, codec.Liquidity) {
		slot0 := rec.Values[0].(codec.Slot0State)
		snapshots = append(snapshots, model.PoolSnapshot{
			Address:      rec.Address,
			SqrtPriceX96: slot0.SqrtPriceX96,
			Liquidity:    rec.Values[1].(*big.Int),
			Tick:         slot0.Tick,
			BlockNumber:  rec.BlockNumber,
		})
	}

	l.observer.PoolsLoaded(OpSnapshot, len(snapshots))
	return snapshots, nil
}
