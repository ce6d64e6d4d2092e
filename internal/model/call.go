package model

import "github.com/ethereum/go-ethereum/common"

// Call is one ABI-encoded read-only invocation. Field names match the
// Multicall3 tuple components so the struct packs directly.
type Call struct {
	Target   common.Address
	CallData []byte
}

// CallResult is one raw response, positionally aligned with its Call.
type CallResult struct {
	Success    bool
	ReturnData []byte
}
