// Package observe turns retrieval events (chunk failures, skipped records,
// provider failures) into injectable observability hooks.
package observe

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Observer receives retrieval events. Implementations must be safe for
// concurrent use; the batcher may report from several chunks at once.
type Observer interface {
	ChunkDone(op string, index, size int, elapsed time.Duration)
	ChunkFailed(op string, index, size int, err error)
	RecordSkipped(op string, address common.Address, err error)
	ProviderFailed(provider string, err error)
	AddressRejected(candidate string)
	PoolsLoaded(op string, count int)
}

type nop struct{}

// Nop returns an Observer that drops every event.
func Nop() Observer { return nop{} }

func (nop) ChunkDone(string, int, int, time.Duration) {}
func (nop) ChunkFailed(string, int, int, error) {}
func (nop) RecordSkipped(string, common.Address, error) {}
func (nop) ProviderFailed(string, error) {}
func (nop) AddressRejected(string) {}
func (nop) PoolsLoaded(string, int) {}

// Multi fans events out to every non-nil observer.
type Multi []Observer

func (m Multi) ChunkDone(op string, index, size int, elapsed time.Duration) {
	for _, o := range m {
		if o != nil {
			o.ChunkDone(op, index, size, elapsed)
		}
	}
}

func (m Multi) ChunkFailed(op string, index, size int, err error) {
	for _, o := range m {
		if o != nil {
			o.ChunkFailed(op, index, size, err)
		}
	}
}

func (m Multi) RecordSkipped(op string, address common.Address, err error) {
	for _, o := range m {
		if o != nil {
			o.RecordSkipped(op, address, err)
		}
	}
}

func (m Multi) ProviderFailed(provider string, err error) {
	for _, o := range m {
		if o != nil {
			o.ProviderFailed(provider, err)
		}
	}
}

func (m Multi) AddressRejected(candidate string) {
	for _, o := range m {
		if o != nil {
			o.AddressRejected(candidate)
		}
	}
}

func (m Multi) PoolsLoaded(op string, count int) {
	for _, o := range m {
		if o != nil {
			o.PoolsLoaded(op, count)
		}
	}
}

// OrNop returns o, or a no-op observer when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop()
	}
	return o
}
