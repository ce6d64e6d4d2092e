// Package codec encodes and decodes the fixed set of read-only contract calls
// used to inspect pools and their tokens.
package codec

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Registered function names.
const (
	Token0    = "token0"
	Token1    = "token1"
	Fee       = "fee"
	Slot0     = "slot0"
	Liquidity = "liquidity"
	Decimals  = "decimals"
	Symbol    = "symbol"
	Name      = "name"
	BalanceOf = "balanceOf"
)

// Slot0State is the decoded slot0() tuple of a V3 pool.
type Slot0State struct {
	SqrtPriceX96               *big.Int
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
	Unlocked                   bool
}

// DecodeError reports malformed return data or an unregistered function.
// Callers treat it as a failure of the single call that produced the data.
type DecodeError struct {
	Function string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Function, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type function struct {
	decode func(values []interface{}) (interface{}, error)
	encode func(value interface{}) ([]interface{}, error)
}

// Codec packs calls and unpacks return data for the registered functions.
type Codec struct {
	abi       abi.ABI
	bytes32   abi.ABI
	functions map[string]function
}

// New builds a Codec over the embedded ABI.
func New() (*Codec, error) {
	parsed, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	fallback, err := bytes32MetaABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse bytes32 metadata abi: %w", err)
	}

	return &Codec{
		abi:     parsed,
		bytes32: fallback,
		functions: map[string]function{
			Token0:    {decode: decodeAddress, encode: encodeAddress},
			Token1:    {decode: decodeAddress, encode: encodeAddress},
			Fee:       {decode: decodeFee, encode: encodeFee},
			Slot0:     {decode: decodeSlot0, encode: encodeSlot0},
			Liquidity: {decode: decodeBig, encode: encodeBig},
			Decimals:  {decode: decodeDecimals, encode: encodeDecimals},
			Symbol:    {decode: decodeString, encode: encodeString},
			Name:      {decode: decodeString, encode: encodeString},
			BalanceOf: {decode: decodeBig, encode: encodeBig},
		},
	}, nil
}

// Functions returns the registered function names in sorted order.
func (c *Codec) Functions() []string {
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether fn is registered.
func (c *Codec) Has(fn string) bool {
	_, ok := c.functions[fn]
	return ok
}

// Encode returns the calldata (selector and packed arguments) for fn.
func (c *Codec) Encode(fn string, args ...interface{}) ([]byte, error) {
	if !c.Has(fn) {
		return nil, fmt.Errorf("unregistered function %s", fn)
	}
	data, err := c.abi.Pack(fn, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", fn, err)
	}
	return data, nil
}

// Decode unpacks returnData of fn into its typed value:
// common.Address for token0/token1, uint32 for fee, Slot0State for slot0,
// *big.Int for liquidity/balanceOf, uint8 for decimals, string for symbol/name.
func (c *Codec) Decode(fn string, returnData []byte) (interface{}, error) {
	entry, ok := c.functions[fn]
	if !ok {
		return nil, &DecodeError{Function: fn, Err: fmt.Errorf("unregistered function")}
	}

	values, err := c.abi.Unpack(fn, returnData)
	if err != nil {
		if fn == Symbol || fn == Name {
			if text, ok := c.decodeBytes32(fn, returnData); ok {
				return text, nil
			}
		}
		return nil, &DecodeError{Function: fn, Err: err}
	}

	value, err := entry.decode(values)
	if err != nil {
		return nil, &DecodeError{Function: fn, Err: err}
	}
	return value, nil
}

// EncodeResult packs a typed value as fn would return it on-chain.
// It is the inverse of Decode.
func (c *Codec) EncodeResult(fn string, value interface{}) ([]byte, error) {
	entry, ok := c.functions[fn]
	if !ok {
		return nil, fmt.Errorf("unregistered function %s", fn)
	}
	values, err := entry.encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", fn, err)
	}
	data, err := c.abi.Methods[fn].Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s result: %w", fn, err)
	}
	return data, nil
}

func (c *Codec) decodeBytes32(fn string, returnData []byte) (string, bool) {
	values, err := c.bytes32.Unpack(fn, returnData)
	if err != nil || len(values) == 0 {
		return "", false
	}
	return bytes32ToString(values[0])
}

func single(values []interface{}) (interface{}, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("expected 1 value, got %d", len(values))
	}
	return values[0], nil
}

func decodeAddress(values []interface{}) (interface{}, error) {
	value, err := single(values)
	if err != nil {
		return nil, err
	}
	return asAddress(value)
}

func encodeAddress(value interface{}) ([]interface{}, error) {
	addr, err := asAddress(value)
	if err != nil {
		return nil, err
	}
	return []interface{}{addr}, nil
}

func decodeFee(values []interface{}) (interface{}, error) {
	value, err := single(values)
	if err != nil {
		return nil, err
	}
	fee, err := asBigInt(value)
	if err != nil {
		return nil, err
	}
	return uint24FromBig(fee)
}

func encodeFee(value interface{}) ([]interface{}, error) {
	fee, err := asBigInt(value)
	if err != nil {
		return nil, err
	}
	return []interface{}{fee}, nil
}

func decodeBig(values []interface{}) (interface{}, error) {
	value, err := single(values)
	if err != nil {
		return nil, err
	}
	return asBigInt(value)
}

func encodeBig(value interface{}) ([]interface{}, error) {
	v, err := asBigInt(value)
	if err != nil {
		return nil, err
	}
	return []interface{}{v}, nil
}

func decodeDecimals(values []interface{}) (interface{}, error) {
	value, err := single(values)
	if err != nil {
		return nil, err
	}
	return asUint8(value)
}

func encodeDecimals(value interface{}) ([]interface{}, error) {
	v, err := asUint8(value)
	if err != nil {
		return nil, err
	}
	return []interface{}{v}, nil
}

func decodeString(values []interface{}) (interface{}, error) {
	value, err := single(values)
	if err != nil {
		return nil, err
	}
	text, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported string type %T", value)
	}
	return text, nil
}

func encodeString(value interface{}) ([]interface{}, error) {
	text, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported string type %T", value)
	}
	return []interface{}{text}, nil
}

func decodeSlot0(values []interface{}) (interface{}, error) {
	if len(values) != 7 {
		return nil, fmt.Errorf("expected 7 values, got %d", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	obsIndex, err := asUint16(values[2])
	if err != nil {
		return nil, fmt.Errorf("observationIndex: %w", err)
	}
	obsCard, err := asUint16(values[3])
	if err != nil {
		return nil, fmt.Errorf("observationCardinality: %w", err)
	}
	obsCardNext, err := asUint16(values[4])
	if err != nil {
		return nil, fmt.Errorf("observationCardinalityNext: %w", err)
	}
	feeProtocol, err := asUint8(values[5])
	if err != nil {
		return nil, fmt.Errorf("feeProtocol: %w", err)
	}
	unlocked, err := asBool(values[6])
	if err != nil {
		return nil, fmt.Errorf("unlocked: %w", err)
	}

	return Slot0State{
		SqrtPriceX96:               sqrtPrice,
		Tick:                       tick,
		ObservationIndex:           obsIndex,
		ObservationCardinality:     obsCard,
		ObservationCardinalityNext: obsCardNext,
		FeeProtocol:                feeProtocol,
		Unlocked:                   unlocked,
	}, nil
}

func encodeSlot0(value interface{}) ([]interface{}, error) {
	state, ok := value.(Slot0State)
	if !ok {
		return nil, fmt.Errorf("unsupported slot0 type %T", value)
	}
	if state.SqrtPriceX96 == nil {
		return nil, fmt.Errorf("sqrtPriceX96 is nil")
	}
	return []interface{}{
		state.SqrtPriceX96,
		big.NewInt(int64(state.Tick)),
		state.ObservationIndex,
		state.ObservationCardinality,
		state.ObservationCardinalityNext,
		state.FeeProtocol,
		state.Unlocked,
	}, nil
}
