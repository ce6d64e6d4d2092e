// Package discovery merges pool candidates from several providers into one
// validated, deduplicated and bounded address list.
package discovery

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidLimit is returned for a negative limit.
var ErrInvalidLimit = errors.New("limit must not be negative")

// Query asks for up to Limit pools that trade Token.
type Query struct {
	Token string
	Limit int
}

// Provider returns raw pool address candidates. Candidates are validated by
// the Source, so providers may return anything they find.
type Provider interface {
	Name() string
	Discover(ctx context.Context, q Query) ([]string, error)
}

// ProviderError reports a provider that could not contribute.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("discovery provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
