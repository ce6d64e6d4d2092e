// Package multicall submits batches of read-only calls through a Multicall3
// aggregation contract and demultiplexes the results per address.
package multicall

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/model"
)

// DefaultAddress is the Multicall3 deployment shared by most EVM chains.
var DefaultAddress = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

const multicallABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "bytes", "name": "callData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Call[]",
        "name": "calls",
        "type": "tuple[]"
      }
    ],
    "name": "aggregate",
    "outputs": [
      {"internalType": "uint256", "name": "blockNumber", "type": "uint256"},
      {"internalType": "bytes[]", "name": "returnData", "type": "bytes[]"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "bool", "name": "requireSuccess", "type": "bool"},
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "bytes", "name": "callData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Call[]",
        "name": "calls",
        "type": "tuple[]"
      }
    ],
    "name": "tryAggregate",
    "outputs": [
      {
        "components": [
          {"internalType": "bool", "name": "success", "type": "bool"},
          {"internalType": "bytes", "name": "returnData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Result[]",
        "name": "returnData",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	multicallABI     abi.ABI
	multicallABIOnce sync.Once
	multicallABIErr  error
)

// ABI returns the parsed Multicall3 ABI subset.
func ABI() (abi.ABI, error) {
	multicallABIOnce.Do(func() {
		multicallABI, multicallABIErr = abi.JSON(strings.NewReader(multicallABIJSON))
	})
	return multicallABI, multicallABIErr
}

// Mode selects how a chunk is aggregated.
type Mode int

const (
	// ModeLenient uses tryAggregate(false, ...): each call reports its own status.
	ModeLenient Mode = iota
	// ModeStrict uses aggregate(...): a single revert fails the whole chunk.
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLenient:
		return "lenient"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "strict" or "lenient" (case-insensitive).
func ParseMode(input string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "lenient":
		return ModeLenient, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModeLenient, fmt.Errorf("unknown aggregation mode %q", input)
	}
}

// TransportError reports an aggregation invocation that failed as a whole:
// RPC errors, reverts in strict mode, or an undecodable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("multicall %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Aggregator executes a list of calls in one round trip.
type Aggregator interface {
	Aggregate(ctx context.Context, calls []model.Call) (uint64, [][]byte, error)
	TryAggregate(ctx context.Context, requireSuccess bool, calls []model.Call) ([]model.CallResult, error)
}

// ContractCaller performs an eth_call. chain.Client and ethclient.Client satisfy it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract is an Aggregator backed by a deployed Multicall3 contract.
type Contract struct {
	caller  ContractCaller
	address common.Address
	abi     abi.ABI
}

// NewContract binds the Multicall3 deployment at address.
func NewContract(caller ContractCaller, address common.Address) (*Contract, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse multicall abi: %w", err)
	}
	if address == (common.Address{}) {
		address = DefaultAddress
	}
	return &Contract{caller: caller, address: address, abi: parsed}, nil
}

// Address returns the aggregation contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

type aggregateOutput struct {
	BlockNumber *big.Int
	ReturnData  [][]byte
}

// Aggregate runs aggregate(calls); any reverting call fails the invocation.
func (c *Contract) Aggregate(ctx context.Context, calls []model.Call) (uint64, [][]byte, error) {
	resp, err := c.call(ctx, "aggregate", calls)
	if err != nil {
		return 0, nil, err
	}

	var out aggregateOutput
	if err := c.abi.UnpackIntoInterface(&out, "aggregate", resp); err != nil {
		return 0, nil, &TransportError{Op: "aggregate", Err: fmt.Errorf("unpack: %w", err)}
	}
	var blockNumber uint64
	if out.BlockNumber != nil && out.BlockNumber.IsUint64() {
		blockNumber = out.BlockNumber.Uint64()
	}
	return blockNumber, out.ReturnData, nil
}

// TryAggregate runs tryAggregate(requireSuccess, calls).
func (c *Contract) TryAggregate(ctx context.Context, requireSuccess bool, calls []model.Call) ([]model.CallResult, error) {
	resp, err := c.call(ctx, "tryAggregate", requireSuccess, calls)
	if err != nil {
		return nil, err
	}

	var out []model.CallResult
	if err := c.abi.UnpackIntoInterface(&out, "tryAggregate", resp); err != nil {
		return nil, &TransportError{Op: "tryAggregate", Err: fmt.Errorf("unpack: %w", err)}
	}
	return out, nil
}

func (c *Contract) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("pack: %w", err)}
	}
	to := c.address
	resp, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	return resp, nil
}
