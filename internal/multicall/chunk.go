package multicall

import "fmt"

// Chunk is the half-open index range [From, To) of one aggregation invocation.
type Chunk struct {
	From int
	To   int
}

// Len returns the number of addresses in the chunk.
func (c Chunk) Len() int {
	return c.To - c.From
}

// SplitChunks splits n items into consecutive chunks of at most size items.
func SplitChunks(n, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("item count must not be negative")
	}

	chunks := make([]Chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{From: start, To: end})
	}
	return chunks, nil
}
