package tokensvc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokensPageLimit is the page size used when walking an owner's tokens.
const tokensPageLimit = 30

// Client queries CW721 contracts through a chain REST endpoint's smart-query
// route. It implements Service.
type Client struct {
	url    string
	client *http.Client
}

// Compile-time interface check.
var _ Service = (*Client)(nil)

// smartResponse is the envelope of a smart-query reply.
type smartResponse struct {
	Data json.RawMessage `json:"data"`
}

// errorResponse is returned by the endpoint on a failed query.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a smart-query client with the given configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Smart runs query against contract and decodes the reply's data into result.
//
// Smart returns ErrConnectionFailed if the HTTP request fails, ErrQueryFailed
// if the endpoint reports a contract error, and ErrInvalidResponse if the reply
// cannot be decoded.
func (c *Client) Smart(ctx context.Context, contract string, query interface{}, result interface{}) error {
	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("tokensvc: marshal query: %w", err)
	}
	endpoint := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s",
		c.url, url.PathEscape(contract), url.PathEscape(base64.StdEncoding.EncodeToString(body)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("tokensvc: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var e errorResponse
		if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: code %d: %s", ErrQueryFailed, e.Code, e.Message)
		}
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, string(respBody))
	}

	var sr smartResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}
	if len(sr.Data) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}
	if result != nil {
		if err := json.Unmarshal(sr.Data, result); err != nil {
			return fmt.Errorf("%w: unmarshal data: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}

// ContractInfo queries {"contract_info":{}}.
func (c *Client) ContractInfo(ctx context.Context, contract string) (*ContractInfo, error) {
	var info ContractInfo
	q := map[string]interface{}{"contract_info": struct{}{}}
	if err := c.Smart(ctx, contract, q, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// NumTokens queries {"num_tokens":{}}.
func (c *Client) NumTokens(ctx context.Context, contract string) (uint64, error) {
	var out struct {
		Count uint64 `json:"count"`
	}
	q := map[string]interface{}{"num_tokens": struct{}{}}
	if err := c.Smart(ctx, contract, q, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// NftInfo queries {"nft_info":{"token_id":...}}.
func (c *Client) NftInfo(ctx context.Context, contract, tokenID string) (*NftInfo, error) {
	var info NftInfo
	q := map[string]interface{}{"nft_info": map[string]string{"token_id": tokenID}}
	if err := c.Smart(ctx, contract, q, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// tokensQuery is the body of a paginated {"tokens":{...}} query.
type tokensQuery struct {
	Owner      string `json:"owner"`
	StartAfter string `json:"start_after,omitempty"`
	Limit      uint32 `json:"limit"`
}

// Tokens walks {"tokens":{...}} pages until a short page is returned.
// Token ids come back in ascending key order, so every full page must end past
// the previous cursor; an endpoint that does not advance yields ErrInvalidResponse.
func (c *Client) Tokens(ctx context.Context, contract, owner string) ([]string, error) {
	var all []string
	startAfter := ""
	for {
		var page struct {
			Tokens []string `json:"tokens"`
		}
		q := map[string]interface{}{"tokens": tokensQuery{Owner: owner, StartAfter: startAfter, Limit: tokensPageLimit}}
		if err := c.Smart(ctx, contract, q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Tokens...)
		if len(page.Tokens) < tokensPageLimit {
			return all, nil
		}
		last := page.Tokens[len(page.Tokens)-1]
		if startAfter != "" && last <= startAfter {
			return nil, fmt.Errorf("%w: tokens page ending at %q does not advance past %q",
				ErrInvalidResponse, last, startAfter)
		}
		startAfter = last
	}
}
