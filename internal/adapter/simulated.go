package adapter

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"poolScope/internal/address"
	"poolScope/internal/model"
	"poolScope/internal/observe"
)

const (
	simulatedFeeTier = 3000
	simulatedDepth   = 1_000_000
	// jitterSpan is the full width of the uniform price jitter (±1%).
	jitterSpan = 0.02
)

var basePrices = map[string]float64{
	"WETH": 3500,
	"WBTC": 65000,
	"UNI":  10,
	"AAVE": 120,
	"LINK": 18,
}

func basePrice(symbol string) decimal.Decimal {
	if price, ok := basePrices[strings.ToUpper(symbol)]; ok {
		return decimal.NewFromFloat(price)
	}
	return decimal.NewFromInt(1)
}

type simulatedPool struct {
	address common.Address
	token   model.Token
	price   decimal.Decimal
}

// Simulated serves synthetic pools built from the token registry: one pool
// per token against the stable token, priced around a fixed base price.
type Simulated struct {
	info     chainInfo
	pools    []simulatedPool
	byAddr   map[common.Address]int
	observer observe.Observer

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(opts Options) (*Simulated, error) {
	info, err := resolveChain(opts)
	if err != nil {
		return nil, err
	}

	s := &Simulated{
		info:     info,
		byAddr:   make(map[common.Address]int),
		observer: observe.OrNop(opts.Observer),
		rng:      rand.New(defaultRand(opts.Rand)),
	}
	for _, token := range info.chain.Tokens {
		if token.Address == info.stable.Address {
			continue
		}
		pool := simulatedPool{
			address: SimulatedPoolAddress(info.chain.Name, token.Symbol),
			token:   token,
			price:   basePrice(token.Symbol),
		}
		s.byAddr[pool.address] = len(s.pools)
		s.pools = append(s.pools, pool)
	}
	if len(s.pools) == 0 {
		return nil, fmt.Errorf("chain %s has no tokens besides the stable token", info.chain.Name)
	}
	return s, nil
}

// SimulatedPoolAddress derives the deterministic address of a simulated pool.
func SimulatedPoolAddress(chain, symbol string) common.Address {
	hash := crypto.Keccak256([]byte("poolscope:" + strings.ToLower(chain) + ":" + strings.ToUpper(symbol)))
	return common.BytesToAddress(hash[12:])
}

func (s *Simulated) ChainName() string {
	return s.info.chain.Name
}

func (s *Simulated) StableTokenAddress() common.Address {
	return s.info.stable.Address
}

// PoolAddresses lists the simulated pool addresses in registry order.
func (s *Simulated) PoolAddresses() []common.Address {
	out := make([]common.Address, len(s.pools))
	for i, p := range s.pools {
		out[i] = p.address
	}
	return out
}

func (s *Simulated) TopPools(ctx context.Context, limit int) ([]model.Pool, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	n := len(s.pools)
	if limit < n {
		n = limit
	}

	pools := make([]model.Pool, 0, n)
	for _, p := range s.pools[:n] {
		reserve0, reserve1 := s.reserves(p)
		pools = append(pools, model.Pool{
			Address:  p.address,
			Token0:   p.token,
			Token1:   s.info.stable,
			Reserve0: reserve0,
			Reserve1: reserve1,
			FeeTier:  simulatedFeeTier,
		})
	}

	s.observer.PoolsLoaded(OpTopPools, len(pools))
	return pools, nil
}

func (s *Simulated) BatchPoolData(ctx context.Context, addresses []string) ([]model.PoolSnapshot, error) {
	snapshots := make([]model.PoolSnapshot, 0, len(addresses))
	if len(addresses) == 0 {
		return snapshots, nil
	}

	valid, rejected := address.Parse(addresses)
	for _, candidate := range rejected {
		s.observer.AddressRejected(candidate)
	}
	for _, addr := range address.Dedupe(valid) {
		idx, ok := s.byAddr[addr]
		if !ok {
			continue
		}
		reserve0, reserve1 := s.reserves(s.pools[idx])
		snapshots = append(snapshots, snapshotFromReserves(addr, reserve0, reserve1))
	}

	s.observer.PoolsLoaded(OpSnapshot, len(snapshots))
	return snapshots, nil
}

func (s *Simulated) jitter() decimal.Decimal {
	s.mu.Lock()
	r := s.rng.Float64()
	s.mu.Unlock()
	return decimal.NewFromFloat(1 + (r*jitterSpan - jitterSpan/2))
}

// reserves returns 1e6 units of the token against 1e6*price units of the
// stable token, both in base units.
func (s *Simulated) reserves(p simulatedPool) (*big.Int, *big.Int) {
	price := p.price.Mul(s.jitter())
	reserve0 := decimal.New(simulatedDepth, int32(p.token.Decimals))
	reserve1 := decimal.NewFromInt(simulatedDepth).
		Mul(price).
		Mul(decimal.New(1, int32(s.info.stable.Decimals))).
		Floor()
	return reserve0.BigInt(), reserve1.BigInt()
}

func snapshotFromReserves(addr common.Address, reserve0, reserve1 *big.Int) model.PoolSnapshot {
	snap := model.PoolSnapshot{
		Address:      addr,
		SqrtPriceX96: new(big.Int),
		Liquidity:    new(big.Int).Sqrt(new(big.Int).Mul(reserve0, reserve1)),
	}
	if reserve0.Sign() <= 0 || reserve1.Sign() <= 0 {
		return snap
	}

	ratio := new(big.Int).Lsh(reserve1, 192)
	ratio.Quo(ratio, reserve0)
	snap.SqrtPriceX96.Sqrt(ratio)

	price, _ := new(big.Rat).SetFrac(reserve1, reserve0).Float64()
	if price > 0 {
		snap.Tick = int32(math.Floor(math.Log(price) / math.Log(1.0001)))
	}
	return snap
}
