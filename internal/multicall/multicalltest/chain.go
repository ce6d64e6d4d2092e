// Package multicalltest provides an in-memory chain that answers Multicall3
// aggregations, for tests of code built on the batcher.
package multicalltest

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/codec"
	"poolScope/internal/model"
	"poolScope/internal/multicall"
)

type key struct {
	target   common.Address
	calldata string
}

// Chain answers registered calls. It implements multicall.Aggregator and
// multicall.ContractCaller.
type Chain struct {
	codec *codec.Codec

	// BlockNumber is reported by aggregate().
	BlockNumber uint64
	// Latency delays every invocation; the delay honours ctx cancellation.
	Latency time.Duration

	mu          sync.Mutex
	responses   map[key][]byte
	broken      map[common.Address]bool
	invocations [][]model.Call
}

// New returns an empty chain using c to encode responses.
func New(c *codec.Codec) *Chain {
	return &Chain{
		codec:       c,
		BlockNumber: 1,
		responses:   make(map[key][]byte),
		broken:      make(map[common.Address]bool),
	}
}

// Set registers the value returned by fn() on target.
func (c *Chain) Set(target common.Address, fn string, value interface{}) error {
	return c.SetCall(target, fn, nil, value)
}

// SetCall registers the value returned by fn(args...) on target.
func (c *Chain) SetCall(target common.Address, fn string, args []interface{}, value interface{}) error {
	data, err := c.codec.Encode(fn, args...)
	if err != nil {
		return err
	}
	ret, err := c.codec.EncodeResult(fn, value)
	if err != nil {
		return err
	}
	c.SetRaw(target, data, ret)
	return nil
}

// SetRaw registers raw return data for exact calldata on target.
func (c *Chain) SetRaw(target common.Address, calldata, ret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[key{target: target, calldata: hex.EncodeToString(calldata)}] = ret
}

// Break makes every invocation that touches target fail as a whole.
func (c *Chain) Break(target common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken[target] = true
}

// Invocations returns the call lists of every aggregation received so far.
func (c *Chain) Invocations() [][]model.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]model.Call, len(c.invocations))
	copy(out, c.invocations)
	return out
}

// Aggregate implements multicall.Aggregator. Any unanswered call reverts the
// whole invocation.
func (c *Chain) Aggregate(ctx context.Context, calls []model.Call) (uint64, [][]byte, error) {
	results, err := c.invoke(ctx, calls)
	if err != nil {
		return 0, nil, err
	}
	data := make([][]byte, len(results))
	for i, res := range results {
		if !res.Success {
			return 0, nil, fmt.Errorf("execution reverted: call %d", i)
		}
		data[i] = res.ReturnData
	}
	return c.BlockNumber, data, nil
}

// TryAggregate implements multicall.Aggregator.
func (c *Chain) TryAggregate(ctx context.Context, requireSuccess bool, calls []model.Call) ([]model.CallResult, error) {
	results, err := c.invoke(ctx, calls)
	if err != nil {
		return nil, err
	}
	if requireSuccess {
		for i, res := range results {
			if !res.Success {
				return nil, fmt.Errorf("execution reverted: call %d", i)
			}
		}
	}
	return results, nil
}

type tryAggregateInput struct {
	RequireSuccess bool
	Calls          []model.Call
}

// CallContract implements multicall.ContractCaller by decoding Multicall3
// calldata and encoding the response like the deployed contract would.
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := multicall.ABI()
	if err != nil {
		return nil, err
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("calldata too short")
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "aggregate":
		var calls []model.Call
		if err := method.Inputs.Copy(&calls, args); err != nil {
			return nil, err
		}
		blockNumber, data, err := c.Aggregate(ctx, calls)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(blockNumber), data)
	case "tryAggregate":
		var input tryAggregateInput
		if err := method.Inputs.Copy(&input, args); err != nil {
			return nil, err
		}
		results, err := c.TryAggregate(ctx, input.RequireSuccess, input.Calls)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(results)
	default:
		return nil, fmt.Errorf("unsupported method %s", method.Name)
	}
}

func (c *Chain) invoke(ctx context.Context, calls []model.Call) ([]model.CallResult, error) {
	c.mu.Lock()
	recorded := make([]model.Call, len(calls))
	copy(recorded, calls)
	c.invocations = append(c.invocations, recorded)
	latency := c.Latency
	c.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]model.CallResult, len(calls))
	for i, call := range calls {
		if c.broken[call.Target] {
			return nil, fmt.Errorf("rpc unavailable for %s", call.Target.Hex())
		}
		ret, ok := c.responses[key{target: call.Target, calldata: hex.EncodeToString(call.CallData)}]
		if ok {
			results[i] = model.CallResult{Success: true, ReturnData: ret}
		}
	}
	return results, nil
}
