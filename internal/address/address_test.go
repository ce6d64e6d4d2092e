package address

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase", "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640", true},
		{"checksummed", "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640", true},
		{"upper prefix", "0X88E6A0C2DDD26FEEB64F039A2C41296FCB3F5640", true},
		{"surrounding space", "  0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640 ", true},
		{"missing prefix", "88e6a0c2ddd26feeb64f039a2c41296fcb3f5640", false},
		{"too short", "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f564", false},
		{"too long", "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f56400", false},
		{"non hex", "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f56zz", false},
		{"placeholder", "0xPool_WETH_ethereum", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Validate(tc.input); got != tc.want {
				t.Fatalf("Validate(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCheckReturnsValidationError(t *testing.T) {
	err := Check("0x1234")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Candidate != "0x1234" {
		t.Fatalf("candidate mismatch: %s", vErr.Candidate)
	}
	if err := Check("0x1111111111111111111111111111111111111111"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseKeepsOrderAndRejects(t *testing.T) {
	valid, rejected := Parse([]string{
		"0x2222222222222222222222222222222222222222",
		"bogus",
		"0x1111111111111111111111111111111111111111",
		"0x12",
	})

	want := []common.Address{
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
	}
	if len(valid) != len(want) {
		t.Fatalf("valid length mismatch: %d", len(valid))
	}
	for i := range want {
		if valid[i] != want[i] {
			t.Fatalf("valid[%d] = %s, want %s", i, valid[i].Hex(), want[i].Hex())
		}
	}
	if len(rejected) != 2 || rejected[0] != "bogus" || rejected[1] != "0x12" {
		t.Fatalf("rejected mismatch: %v", rejected)
	}
}

func TestDedupeCaseInsensitive(t *testing.T) {
	valid, _ := Parse([]string{
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	})

	got := Dedupe(valid)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique addresses, got %d", len(got))
	}
	if got[0] != common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Fatalf("first-seen order not kept: %s", got[0].Hex())
	}

	again := Dedupe(got)
	if len(again) != len(got) || again[0] != got[0] || again[1] != got[1] {
		t.Fatalf("dedupe is not idempotent: %v", again)
	}
}
