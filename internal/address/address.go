// Package address validates and normalizes EVM addresses before they enter a call batch.
package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationError describes a rejected candidate address.
type ValidationError struct {
	Candidate string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid address: %q", e.Candidate)
}

// Validate reports whether candidate is a 0x-prefixed, 40 hex digit address.
func Validate(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) != 2+2*common.AddressLength {
		return false
	}
	if candidate[0] != '0' || (candidate[1] != 'x' && candidate[1] != 'X') {
		return false
	}
	return common.IsHexAddress(candidate)
}

// Check returns a ValidationError for a malformed candidate.
func Check(candidate string) error {
	if !Validate(candidate) {
		return &ValidationError{Candidate: candidate}
	}
	return nil
}

// Parse converts well-formed candidates into addresses, keeping input order.
// Malformed candidates are returned separately and never converted.
func Parse(candidates []string) ([]common.Address, []string) {
	valid := make([]common.Address, 0, len(candidates))
	var rejected []string
	for _, candidate := range candidates {
		if !Validate(candidate) {
			rejected = append(rejected, candidate)
			continue
		}
		valid = append(valid, common.HexToAddress(strings.TrimSpace(candidate)))
	}
	return valid, rejected
}

// Dedupe drops repeated addresses, keeping first-seen order. Parsed addresses
// are raw bytes, so mixed-case spellings of the same address collapse.
func Dedupe(addresses []common.Address) []common.Address {
	seen := make(map[common.Address]struct{}, len(addresses))
	out := make([]common.Address, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
