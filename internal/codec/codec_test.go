package codec

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	return c
}

func TestEncodeSelectors(t *testing.T) {
	c := newTestCodec(t)

	cases := map[string]string{
		Token0:    "0x0dfe1681",
		Token1:    "0xd21220a7",
		Fee:       "0xddca3f43",
		Slot0:     "0x3850c7bd",
		Liquidity: "0x1a686502",
		Decimals:  "0x313ce567",
		Symbol:    "0x95d89b41",
		Name:      "0x06fdde03",
	}
	for fn, selector := range cases {
		data, err := c.Encode(fn)
		require.NoError(t, err, fn)
		require.Equal(t, selector, hexutil.Encode(data), fn)
	}

	holder := common.HexToAddress("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640")
	data, err := c.Encode(BalanceOf, holder)
	require.NoError(t, err)
	require.Len(t, data, 4+32)
	require.Equal(t, "0x70a08231", hexutil.Encode(data[:4]))
	require.Equal(t, holder.Bytes(), data[4+12:])
}

func TestEncodeUnregistered(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Encode("getReserves")
	require.Error(t, err)
}

func TestDecodeInvertsEncodeResult(t *testing.T) {
	c := newTestCodec(t)
	sqrtPrice, ok := new(big.Int).SetString("1461446703485210103287273052203988822378723970341", 10)
	require.True(t, ok)

	cases := []struct {
		fn    string
		value interface{}
	}{
		{Token0, common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")},
		{Token1, common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")},
		{Fee, uint32(3000)},
		{Fee, uint32(1<<24 - 1)},
		{Liquidity, new(big.Int).Lsh(big.NewInt(1), 127)},
		{Decimals, uint8(6)},
		{Symbol, "USDC"},
		{Name, "USD Coin"},
		{BalanceOf, new(big.Int).Lsh(big.NewInt(3), 200)},
		{Slot0, Slot0State{
			SqrtPriceX96:               sqrtPrice,
			Tick:                       -887272,
			ObservationIndex:           12,
			ObservationCardinality:     100,
			ObservationCardinalityNext: 200,
			FeeProtocol:                0,
			Unlocked:                   true,
		}},
	}

	for _, tc := range cases {
		data, err := c.EncodeResult(tc.fn, tc.value)
		require.NoError(t, err, tc.fn)

		decoded, err := c.Decode(tc.fn, data)
		require.NoError(t, err, tc.fn)

		switch want := tc.value.(type) {
		case *big.Int:
			got, ok := decoded.(*big.Int)
			require.True(t, ok, tc.fn)
			require.Zero(t, want.Cmp(got), tc.fn)
		case Slot0State:
			got, ok := decoded.(Slot0State)
			require.True(t, ok, tc.fn)
			require.Zero(t, want.SqrtPriceX96.Cmp(got.SqrtPriceX96))
			want.SqrtPriceX96, got.SqrtPriceX96 = nil, nil
			require.Equal(t, want, got)
		default:
			require.Equal(t, tc.value, decoded, tc.fn)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	c := newTestCodec(t)

	for _, tc := range []struct {
		fn   string
		data []byte
	}{
		{Token0, nil},
		{Fee, []byte{0x01, 0x02}},
		{Slot0, make([]byte, 64)},
		{Liquidity, []byte{}},
	} {
		_, err := c.Decode(tc.fn, tc.data)
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr), "%s: %v", tc.fn, err)
		require.Equal(t, tc.fn, decodeErr.Function)
	}
}

func TestDecodeFeeOverflow(t *testing.T) {
	c := newTestCodec(t)
	word := common.LeftPadBytes(big.NewInt(1<<24).Bytes(), 32)
	_, err := c.Decode(Fee, word)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeUnregistered(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Decode("getReserves", make([]byte, 96))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "getReserves", decodeErr.Function)
}

func TestDecodeBytes32Symbol(t *testing.T) {
	c := newTestCodec(t)
	var word [32]byte
	copy(word[:], "MKR")

	decoded, err := c.Decode(Symbol, word[:])
	require.NoError(t, err)
	require.Equal(t, "MKR", decoded)
}

func TestFunctionsListed(t *testing.T) {
	c := newTestCodec(t)
	require.Equal(t, []string{BalanceOf, Decimals, Fee, Liquidity, Name, Slot0, Symbol, Token0, Token1}, c.Functions())
}
