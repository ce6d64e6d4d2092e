package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolSnapshot is a point-in-time read of a pool's price and liquidity.
type PoolSnapshot struct {
	Address      common.Address `json:"address"`
	SqrtPriceX96 *big.Int       `json:"sqrt_price_x96"`
	Liquidity    *big.Int       `json:"liquidity"`
	Tick         int32          `json:"tick"`
	// BlockNumber is only known when the read went through a strict aggregate call.
	BlockNumber uint64 `json:"block_number,omitempty"`
}

type snapshotJSON struct {
	Address      common.Address `json:"address"`
	SqrtPriceX96 string         `json:"sqrt_price_x96"`
	Liquidity    string         `json:"liquidity"`
	Tick         int32          `json:"tick"`
	BlockNumber  uint64         `json:"block_number,omitempty"`
}

// MarshalJSON encodes big integers as decimal strings.
func (s PoolSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Address:      s.Address,
		SqrtPriceX96: bigString(s.SqrtPriceX96),
		Liquidity:    bigString(s.Liquidity),
		Tick:         s.Tick,
		BlockNumber:  s.BlockNumber,
	})
}

// UnmarshalJSON decodes a PoolSnapshot written by MarshalJSON.
func (s *PoolSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sqrtPrice, err := parseBig("sqrt_price_x96", raw.SqrtPriceX96)
	if err != nil {
		return err
	}
	liquidity, err := parseBig("liquidity", raw.Liquidity)
	if err != nil {
		return err
	}
	*s = PoolSnapshot{
		Address:      raw.Address,
		SqrtPriceX96: sqrtPrice,
		Liquidity:    liquidity,
		Tick:         raw.Tick,
		BlockNumber:  raw.BlockNumber,
	}
	return nil
}
