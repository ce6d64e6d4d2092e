package observe

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Zap logs events through a zap logger.
type Zap struct {
	logger *zap.Logger
}

func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

func (z *Zap) ChunkDone(op string, index, size int, elapsed time.Duration) {
	z.logger.Debug("multicall chunk complete",
		zap.String("op", op),
		zap.Int("chunk", index),
		zap.Int("addresses", size),
		zap.Duration("elapsed", elapsed),
	)
}

func (z *Zap) ChunkFailed(op string, index, size int, err error) {
	z.logger.Warn("multicall chunk failed",
		zap.String("op", op),
		zap.Int("chunk", index),
		zap.Int("addresses", size),
		zap.Error(err),
	)
}

func (z *Zap) RecordSkipped(op string, address common.Address, err error) {
	z.logger.Debug("record skipped", zap.String("op", op), zap.String("address", address.Hex()), zap.Error(err))
}

func (z *Zap) ProviderFailed(provider string, err error) {
	z.logger.Warn("discovery provider failed", zap.String("provider", provider), zap.Error(err))
}

func (z *Zap) AddressRejected(candidate string) {
	z.logger.Debug("address rejected", zap.String("candidate", candidate))
}

func (z *Zap) PoolsLoaded(op string, count int) {
	z.logger.Info("pools loaded", zap.String("op", op), zap.Int("count", count))
}
