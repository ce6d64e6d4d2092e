package tokens

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.Equal(t, []string{"ethereum", "polygon"}, reg.Names())

	eth, err := reg.Chain("Ethereum")
	require.NoError(t, err)
	require.Equal(t, uint64(1), eth.ChainID)
	require.Len(t, eth.Tokens, 5)
	require.NotEmpty(t, eth.Pools)

	stable, ok := eth.Stable()
	require.True(t, ok)
	require.Equal(t, "USDC", stable.Symbol)
	require.Equal(t, uint8(6), stable.Decimals)

	weth, ok := eth.Lookup(common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
	require.True(t, ok)
	require.Equal(t, "WETH", weth.Symbol)
}

func TestUnknownChain(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	_, err = reg.Chain("solana")
	require.Error(t, err)
}

func TestStableFallsBackToFirstToken(t *testing.T) {
	reg, err := Parse([]byte(`
testnet:
  chain_id: 5
  tokens:
    - {symbol: AAA, name: A, address: "0x0000000000000000000000000000000000000001", decimals: 18}
    - {symbol: BBB, name: B, address: "0x0000000000000000000000000000000000000002", decimals: 6}
`))
	require.NoError(t, err)

	chain, err := reg.Chain("testnet")
	require.NoError(t, err)
	stable, ok := chain.Stable()
	require.True(t, ok)
	require.Equal(t, "AAA", stable.Symbol)
	require.Equal(t, common.Address{}, chain.Multicall)
}

func TestParseRejectsInvalidToken(t *testing.T) {
	_, err := Parse([]byte(`
bad:
  tokens:
    - {symbol: X, address: "0xPool_X", decimals: 18}
`))
	require.Error(t, err)
}
