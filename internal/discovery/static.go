package discovery

import "context"

// StaticProvider returns a fixed candidate list regardless of the token.
type StaticProvider struct {
	Label string
	Pools []string
}

func NewStaticProvider(label string, pools []string) *StaticProvider {
	copied := make([]string, len(pools))
	copy(copied, pools)
	return &StaticProvider{Label: label, Pools: copied}
}

func (p *StaticProvider) Name() string {
	if p.Label == "" {
		return "static"
	}
	return p.Label
}

func (p *StaticProvider) Discover(context.Context, Query) ([]string, error) {
	out := make([]string, len(p.Pools))
	copy(out, p.Pools)
	return out, nil
}
