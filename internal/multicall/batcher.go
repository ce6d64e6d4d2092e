package multicall

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"poolScope/internal/codec"
	"poolScope/internal/model"
	"poolScope/internal/observe"
)

const (
	DefaultChunkSize   = 50
	DefaultParallelism = 1
	DefaultCallTimeout = 10 * time.Second
)

// Config controls chunking and per-chunk execution.
type Config struct {
	ChunkSize   int
	Parallelism int
	CallTimeout time.Duration
}

// DefaultConfig returns the default batching parameters.
func DefaultConfig() Config {
	return Config{
		ChunkSize:   DefaultChunkSize,
		Parallelism: DefaultParallelism,
		CallTimeout: DefaultCallTimeout,
	}
}

func (c Config) normalize() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.CallTimeout < 0 {
		c.CallTimeout = 0
	}
	return c
}

// CallSpec is one call issued on behalf of an address. A zero Target means
// the address itself.
type CallSpec struct {
	Target   common.Address
	Function string
	Args     []interface{}
}

// Request groups the calls whose results form one Record.
type Request struct {
	Address common.Address
	Calls   []CallSpec
}

// Record holds the decoded values for one address, aligned with its calls.
// BlockNumber is only set in strict mode.
type Record struct {
	Address     common.Address
	Values      []interface{}
	BlockNumber uint64
}

// CallError reports a single call that reverted inside a lenient aggregation.
type CallError struct {
	Target   common.Address
	Function string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %s on %s failed", e.Function, e.Target.Hex())
}

// Batcher partitions address sets into chunks, submits each chunk through an
// Aggregator and decodes the per-call results.
type Batcher struct {
	agg      Aggregator
	codec    *codec.Codec
	cfg      Config
	observer observe.Observer
}

// NewBatcher builds a Batcher. A nil observer drops events.
func NewBatcher(agg Aggregator, c *codec.Codec, cfg Config, observer observe.Observer) (*Batcher, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregator is nil")
	}
	if c == nil {
		return nil, fmt.Errorf("codec is nil")
	}
	return &Batcher{
		agg:      agg,
		codec:    c,
		cfg:      cfg.normalize(),
		observer: observe.OrNop(observer),
	}, nil
}

// Config returns the effective configuration.
func (b *Batcher) Config() Config {
	return b.cfg
}

// Run calls the same functions on every address. Records come back in input
// order; addresses with any failed call are omitted.
func (b *Batcher) Run(ctx context.Context, op string, mode Mode, addresses []common.Address, functions ...string) []Record {
	if len(addresses) == 0 || len(functions) == 0 {
		return nil
	}

	requests := make([]Request, len(addresses))
	for i, addr := range addresses {
		calls := make([]CallSpec, len(functions))
		for j, fn := range functions {
			calls[j] = CallSpec{Function: fn}
		}
		requests[i] = Request{Address: addr, Calls: calls}
	}
	return b.Execute(ctx, op, mode, requests)
}

// Execute submits arbitrary per-address call lists. It never returns an
// error: failed chunks and failed records are reported to the observer and
// left out of the result.
func (b *Batcher) Execute(ctx context.Context, op string, mode Mode, requests []Request) []Record {
	if len(requests) == 0 {
		return nil
	}

	chunks, err := SplitChunks(len(requests), b.cfg.ChunkSize)
	if err != nil {
		b.observer.ChunkFailed(op, 0, len(requests), err)
		return nil
	}

	slots := make([][]Record, len(chunks))
	if b.cfg.Parallelism <= 1 || len(chunks) == 1 {
		for i, chunk := range chunks {
			slots[i] = b.runChunk(ctx, op, mode, i, requests[chunk.From:chunk.To])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(b.cfg.Parallelism)
		for i, chunk := range chunks {
			i, chunk := i, chunk
			g.Go(func() error {
				slots[i] = b.runChunk(ctx, op, mode, i, requests[chunk.From:chunk.To])
				return nil
			})
		}
		_ = g.Wait()
	}

	var out []Record
	for _, slot := range slots {
		out = append(out, slot...)
	}
	return out
}

type pending struct {
	request Request
	offset  int
}

func (b *Batcher) runChunk(ctx context.Context, op string, mode Mode, index int, requests []Request) []Record {
	start := time.Now()

	calls := make([]model.Call, 0, len(requests))
	entries := make([]pending, 0, len(requests))
	for _, req := range requests {
		encoded, err := b.encode(req)
		if err != nil {
			b.observer.RecordSkipped(op, req.Address, err)
			continue
		}
		entries = append(entries, pending{request: req, offset: len(calls)})
		calls = append(calls, encoded...)
	}
	if len(calls) == 0 {
		return nil
	}

	callCtx := ctx
	if b.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.cfg.CallTimeout)
		defer cancel()
	}

	results, blockNumber, err := b.aggregate(callCtx, mode, calls)
	if err != nil {
		b.observer.ChunkFailed(op, index, len(requests), err)
		return nil
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		record, err := b.decode(entry, calls, results)
		if err != nil {
			b.observer.RecordSkipped(op, entry.request.Address, err)
			continue
		}
		record.BlockNumber = blockNumber
		records = append(records, record)
	}

	b.observer.ChunkDone(op, index, len(requests), time.Since(start))
	return records
}

func (b *Batcher) aggregate(ctx context.Context, mode Mode, calls []model.Call) ([]model.CallResult, uint64, error) {
	switch mode {
	case ModeStrict:
		blockNumber, data, err := b.agg.Aggregate(ctx, calls)
		if err != nil {
			return nil, 0, asTransportError("aggregate", err)
		}
		if len(data) != len(calls) {
			return nil, 0, &TransportError{
				Op:  "aggregate",
				Err: fmt.Errorf("got %d results for %d calls", len(data), len(calls)),
			}
		}
		results := make([]model.CallResult, len(data))
		for i, ret := range data {
			results[i] = model.CallResult{Success: true, ReturnData: ret}
		}
		return results, blockNumber, nil
	case ModeLenient:
		results, err := b.agg.TryAggregate(ctx, false, calls)
		if err != nil {
			return nil, 0, asTransportError("tryAggregate", err)
		}
		if len(results) != len(calls) {
			return nil, 0, &TransportError{
				Op:  "tryAggregate",
				Err: fmt.Errorf("got %d results for %d calls", len(results), len(calls)),
			}
		}
		return results, 0, nil
	default:
		return nil, 0, fmt.Errorf("unsupported mode %s", mode)
	}
}

func (b *Batcher) encode(req Request) ([]model.Call, error) {
	if len(req.Calls) == 0 {
		return nil, fmt.Errorf("no calls for %s", req.Address.Hex())
	}
	calls := make([]model.Call, len(req.Calls))
	for i, cs := range req.Calls {
		data, err := b.codec.Encode(cs.Function, cs.Args...)
		if err != nil {
			return nil, err
		}
		target := cs.Target
		if target == (common.Address{}) {
			target = req.Address
		}
		calls[i] = model.Call{Target: target, CallData: data}
	}
	return calls, nil
}

func (b *Batcher) decode(entry pending, calls []model.Call, results []model.CallResult) (Record, error) {
	wanted := entry.request.Calls
	values := make([]interface{}, len(wanted))
	for i, cs := range wanted {
		res := results[entry.offset+i]
		if !res.Success {
			return Record{}, &CallError{Target: calls[entry.offset+i].Target, Function: cs.Function}
		}
		value, err := b.codec.Decode(cs.Function, res.ReturnData)
		if err != nil {
			return Record{}, err
		}
		values[i] = value
	}
	return Record{Address: entry.request.Address, Values: values}, nil
}

func asTransportError(op string, err error) error {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
