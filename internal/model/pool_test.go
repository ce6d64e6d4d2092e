package model

import (
	"encoding/json"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestPoolJSONReservesAreStrings(t *testing.T) {
	reserve0, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	pool := Pool{
		Address:  common.HexToAddress("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"),
		Token0:   Token{Symbol: "USDC", Name: "USD Coin", Address: common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), Decimals: 6},
		Token1:   Token{Symbol: "WETH", Name: "Wrapped Ether", Address: common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"), Decimals: 18},
		Reserve0: reserve0,
		Reserve1: big.NewInt(42),
		FeeTier:  500,
	}

	data, err := json.Marshal(pool)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got, ok := generic["reserve0"].(string); !ok || got != "123456789012345678901234567890" {
		t.Fatalf("reserve0 should be a decimal string, got %#v", generic["reserve0"])
	}
	if _, ok := generic["reserve1"].(string); !ok {
		t.Fatalf("reserve1 should be string")
	}

	var decoded Pool
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode pool: %v", err)
	}
	if !reflect.DeepEqual(pool, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", pool, decoded)
	}
}

func TestPoolJSONNilReserves(t *testing.T) {
	data, err := json.Marshal(Pool{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if generic["reserve0"] != "0" || generic["reserve1"] != "0" {
		t.Fatalf("nil reserves should encode as \"0\": %s", data)
	}
}

func TestSnapshotJSONRejectsBadInteger(t *testing.T) {
	input := `{"address":"0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640","sqrt_price_x96":"1.5","liquidity":"1","tick":0}`
	var snap PoolSnapshot
	if err := json.Unmarshal([]byte(input), &snap); err == nil {
		t.Fatalf("expected error for non-integer sqrt price")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		value    *big.Int
		decimals uint8
		want     string
	}{
		{big.NewInt(1500000), 6, "1.500000"},
		{big.NewInt(-25), 1, "-2.5"},
		{big.NewInt(7), 0, "7"},
		{nil, 18, "0"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("FormatAmount(%v, %d) = %s, want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
}
