// Package tokens holds the static per-chain token registry.
package tokens

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"poolScope/internal/address"
	"poolScope/internal/model"
)

//go:embed tokens.yaml
var defaultRegistry []byte

type tokenEntry struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Decimals uint8  `yaml:"decimals"`
}

type chainEntry struct {
	ChainID   uint64       `yaml:"chain_id"`
	Multicall string       `yaml:"multicall"`
	Stable    string       `yaml:"stable"`
	Tokens    []tokenEntry `yaml:"tokens"`
	Pools     []string     `yaml:"pools"`
}

// Chain is the registry entry of one chain.
type Chain struct {
	Name      string
	ChainID   uint64
	Multicall common.Address
	Tokens    []model.Token
	Pools     []string

	stable string
	byAddr map[common.Address]model.Token
}

// Lookup returns the registered token at addr.
func (c *Chain) Lookup(addr common.Address) (model.Token, bool) {
	token, ok := c.byAddr[addr]
	return token, ok
}

// BySymbol returns the first token with the given symbol (case-insensitive).
func (c *Chain) BySymbol(symbol string) (model.Token, bool) {
	for _, token := range c.Tokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return token, true
		}
	}
	return model.Token{}, false
}

// Stable returns the chain's stable token: the configured symbol, then USDC,
// then the first registered token.
func (c *Chain) Stable() (model.Token, bool) {
	for _, symbol := range []string{c.stable, "USDC"} {
		if symbol == "" {
			continue
		}
		if token, ok := c.BySymbol(symbol); ok {
			return token, true
		}
	}
	if len(c.Tokens) > 0 {
		return c.Tokens[0], true
	}
	return model.Token{}, false
}

// Registry maps lowercase chain names to their entries.
type Registry struct {
	chains map[string]*Chain
}

// Default parses the embedded registry.
func Default() (*Registry, error) {
	return Parse(defaultRegistry)
}

// Parse builds a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var raw map[string]chainEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse token registry: %w", err)
	}

	reg := &Registry{chains: make(map[string]*Chain, len(raw))}
	for name, entry := range raw {
		chain, err := buildChain(name, entry)
		if err != nil {
			return nil, err
		}
		reg.chains[chain.Name] = chain
	}
	return reg, nil
}

func buildChain(name string, entry chainEntry) (*Chain, error) {
	chain := &Chain{
		Name:    strings.ToLower(strings.TrimSpace(name)),
		ChainID: entry.ChainID,
		Pools:   append([]string(nil), entry.Pools...),
		stable:  entry.Stable,
		byAddr:  make(map[common.Address]model.Token, len(entry.Tokens)),
	}
	if entry.Multicall != "" {
		if !address.Validate(entry.Multicall) {
			return nil, fmt.Errorf("chain %s: invalid multicall address %q", name, entry.Multicall)
		}
		chain.Multicall = common.HexToAddress(entry.Multicall)
	}

	for _, t := range entry.Tokens {
		if !address.Validate(t.Address) {
			return nil, fmt.Errorf("chain %s: token %s: invalid address %q", name, t.Symbol, t.Address)
		}
		token := model.Token{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Address:  common.HexToAddress(t.Address),
			Decimals: t.Decimals,
		}
		if _, dup := chain.byAddr[token.Address]; dup {
			return nil, fmt.Errorf("chain %s: duplicate token %s", name, token.Address.Hex())
		}
		chain.byAddr[token.Address] = token
		chain.Tokens = append(chain.Tokens, token)
	}
	return chain, nil
}

// Chain returns the entry for name (case-insensitive).
func (r *Registry) Chain(name string) (*Chain, error) {
	chain, ok := r.chains[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown chain %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return chain, nil
}

// Names returns the registered chain names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
