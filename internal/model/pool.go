package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a liquidity pool pairing two tokens.
type Pool struct {
	Address  common.Address `json:"address"`
	Token0   Token          `json:"token0"`
	Token1   Token          `json:"token1"`
	Reserve0 *big.Int       `json:"reserve0"`
	Reserve1 *big.Int       `json:"reserve1"`
	FeeTier  uint32         `json:"fee_tier"`
}

type poolJSON struct {
	Address  common.Address `json:"address"`
	Token0   Token          `json:"token0"`
	Token1   Token          `json:"token1"`
	Reserve0 string         `json:"reserve0"`
	Reserve1 string         `json:"reserve1"`
	FeeTier  uint32         `json:"fee_tier"`
}

// MarshalJSON encodes reserves as decimal strings.
func (p Pool) MarshalJSON() ([]byte, error) {
	return json.Marshal(poolJSON{
		Address:  p.Address,
		Token0:   p.Token0,
		Token1:   p.Token1,
		Reserve0: bigString(p.Reserve0),
		Reserve1: bigString(p.Reserve1),
		FeeTier:  p.FeeTier,
	})
}

// UnmarshalJSON decodes a Pool written by MarshalJSON.
func (p *Pool) UnmarshalJSON(data []byte) error {
	var raw poolJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	reserve0, err := parseBig("reserve0", raw.Reserve0)
	if err != nil {
		return err
	}
	reserve1, err := parseBig("reserve1", raw.Reserve1)
	if err != nil {
		return err
	}
	*p = Pool{
		Address:  raw.Address,
		Token0:   raw.Token0,
		Token1:   raw.Token1,
		Reserve0: reserve0,
		Reserve1: reserve1,
		FeeTier:  raw.FeeTier,
	}
	return nil
}
