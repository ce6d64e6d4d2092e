package observe

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Recorder keeps events in memory, for tests and diagnostics.
type Recorder struct {
	mu sync.Mutex

	ChunksDone      int
	ChunkFailures   []error
	Skipped         []common.Address
	ProviderErrors  map[string]error
	Rejected        []string
	LastPoolsLoaded map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		ProviderErrors:  make(map[string]error),
		LastPoolsLoaded: make(map[string]int),
	}
}

func (r *Recorder) ChunkDone(string, int, int, time.Duration) {
	r.mu.Lock()
	r.ChunksDone++
	r.mu.Unlock()
}

func (r *Recorder) ChunkFailed(_ string, _, _ int, err error) {
	r.mu.Lock()
	r.ChunkFailures = append(r.ChunkFailures, err)
	r.mu.Unlock()
}

func (r *Recorder) RecordSkipped(_ string, address common.Address, _ error) {
	r.mu.Lock()
	r.Skipped = append(r.Skipped, address)
	r.mu.Unlock()
}

func (r *Recorder) ProviderFailed(provider string, err error) {
	r.mu.Lock()
	r.ProviderErrors[provider] = err
	r.mu.Unlock()
}

func (r *Recorder) AddressRejected(candidate string) {
	r.mu.Lock()
	r.Rejected = append(r.Rejected, candidate)
	r.mu.Unlock()
}

func (r *Recorder) PoolsLoaded(op string, count int) {
	r.mu.Lock()
	r.LastPoolsLoaded[op] = count
	r.mu.Unlock()
}
