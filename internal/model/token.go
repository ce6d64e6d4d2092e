package model

import "github.com/ethereum/go-ethereum/common"

// Token captures ERC20 metadata. Address is the identity key.
type Token struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}
