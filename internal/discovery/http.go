package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"poolScope/internal/httpx"
)

// Object keys that may carry a pool address in explorer-style responses.
var addressKeys = []string{"address", "pool", "pairAddress", "contractAddress", "TokenHolderAddress", "id"}

// HTTPProvider queries an explorer-style JSON API. URLTemplate may contain
// {token}, {limit} and {apikey} placeholders.
type HTTPProvider struct {
	Label       string
	URLTemplate string
	APIKey      string

	client *httpx.Client
}

func NewHTTPProvider(urlTemplate, apiKey string, client *httpx.Client) (*HTTPProvider, error) {
	if strings.TrimSpace(urlTemplate) == "" {
		return nil, fmt.Errorf("discovery url is required")
	}
	if client == nil {
		return nil, fmt.Errorf("http client is nil")
	}
	return &HTTPProvider{
		Label:       "http",
		URLTemplate: urlTemplate,
		APIKey:      apiKey,
		client:      client,
	}, nil
}

func (p *HTTPProvider) Name() string {
	if p.Label == "" {
		return "http"
	}
	return p.Label
}

func (p *HTTPProvider) Discover(ctx context.Context, q Query) ([]string, error) {
	var body json.RawMessage
	if err := p.client.GetJSON(ctx, p.expand(q), &body); err != nil {
		return nil, err
	}
	return parseExplorerResponse(body)
}

func (p *HTTPProvider) expand(q Query) string {
	replacer := strings.NewReplacer(
		"{token}", url.QueryEscape(q.Token),
		"{limit}", strconv.Itoa(q.Limit),
		"{apikey}", url.QueryEscape(p.APIKey),
	)
	return replacer.Replace(p.URLTemplate)
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// parseExplorerResponse accepts {"status","message","result":[...]} or a
// bare array. Array items are address strings or objects carrying one of
// addressKeys.
func parseExplorerResponse(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	if trimmed[0] == '[' {
		return parseResultArray(trimmed)
	}

	var resp explorerResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("response has no result (status %q, message %q)", resp.Status, resp.Message)
	}
	if result[0] != '[' {
		// explorers report errors as a string result with status "0"
		var text string
		if err := json.Unmarshal(result, &text); err == nil {
			return nil, fmt.Errorf("explorer error: %s: %s", resp.Message, text)
		}
		return nil, fmt.Errorf("unexpected result shape")
	}
	return parseResultArray(result)
}

func parseResultArray(data []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if candidate, ok := itemAddress(item); ok {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func itemAddress(item json.RawMessage) (string, bool) {
	var text string
	if err := json.Unmarshal(item, &text); err == nil {
		return text, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return "", false
	}
	for _, key := range addressKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &text); err == nil && text != "" {
			return text, true
		}
	}
	return "", false
}
