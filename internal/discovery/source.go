package discovery

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/address"
	"poolScope/internal/observe"
)

// Source queries Providers in order, then Fallback providers while the limit
// is not reached.
type Source struct {
	Providers []Provider
	Fallback  []Provider
	// Timeout bounds each provider call. Zero means no extra bound.
	Timeout  time.Duration
	Observer observe.Observer
}

// Discover returns at most q.Limit valid, unique pool addresses in the order
// they were first seen. Provider failures are reported and skipped.
func (s *Source) Discover(ctx context.Context, q Query) ([]common.Address, error) {
	if q.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	out := make([]common.Address, 0)
	if q.Limit == 0 {
		return out, nil
	}

	obs := observe.OrNop(s.Observer)
	seen := make(map[common.Address]struct{})
	providers := make([]Provider, 0, len(s.Providers)+len(s.Fallback))
	providers = append(providers, s.Providers...)
	providers = append(providers, s.Fallback...)

	for _, p := range providers {
		if len(out) >= q.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}
		if p == nil {
			continue
		}

		candidates, err := s.query(ctx, p, q)
		if err != nil {
			obs.ProviderFailed(p.Name(), &ProviderError{Provider: p.Name(), Err: err})
			continue
		}

		valid, rejected := address.Parse(candidates)
		for _, candidate := range rejected {
			obs.AddressRejected(candidate)
		}
		for _, addr := range valid {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
			if len(out) >= q.Limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Source) query(ctx context.Context, p Provider, q Query) ([]string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return p.Discover(ctx, q)
}
