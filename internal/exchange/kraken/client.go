// Package kraken implements the subset of the Kraken REST API the bot
// consumes: the public ticker and asset-pairs endpoints, and the private
// signed AddOrder and Balance endpoints.
package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

const (
	// DefaultBaseURL is the production Kraken API endpoint.
	DefaultBaseURL = "https://api.kraken.com"

	// DefaultTimeout bounds every exchange HTTP call so a stalled request
	// surfaces as a failed result instead of wedging the loop.
	DefaultTimeout = 10 * time.Second

	tickerPath     = "/0/public/Ticker"
	assetPairsPath = "/0/public/AssetPairs"
	addOrderPath   = "/0/private/AddOrder"
	balancePath    = "/0/private/Balance"
)

// Client talks to the Kraken REST API. The zero credentials client can only
// use the public endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client

	// nonces must be strictly increasing across all private calls.
	nonceMu   sync.Mutex
	lastNonce int64
}

// NewClient creates a client for the given base URL. Empty credentials are
// allowed; private endpoints will then fail with ErrCodeInvalidCredentials.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		nonceMu:    sync.Mutex{},
		lastNonce:  0,
	}
}

// apiResponse is the common Kraken envelope: a populated error array means
// the call failed regardless of HTTP status.
type apiResponse struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// OrderRequest describes one limit order submission.
type OrderRequest struct {
	Pair   string
	Side   types.Side
	Volume float64
	Price  float64
}

// Ticker fetches the last trade closed price for one pair.
func (c *Client) Ticker(ctx context.Context, pair string) (float64, error) {
	endpoint := fmt.Sprintf("%s%s?pair=%s", c.baseURL, tickerPath, url.QueryEscape(pair))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeTickerFetchFailed, "failed to build ticker request", err)
	}

	body, err := c.do(req, errors.ErrCodeTickerFetchFailed)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Error  []string `json:"error"`
		Result map[string]struct {
			// C is [last trade price, lot volume].
			C []string `json:"c"`
		} `json:"result"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMalformedResponse, "failed to decode ticker response", err)
	}

	if len(resp.Error) > 0 {
		return 0, errors.Newf(errors.ErrCodeTickerFetchFailed, "ticker error for %s: %s", pair, strings.Join(resp.Error, "; "))
	}

	entry, ok := resp.Result[pair]
	if !ok || len(entry.C) == 0 {
		return 0, errors.Newf(errors.ErrCodeMalformedResponse, "ticker response missing pair %s", pair)
	}

	price, err := strconv.ParseFloat(entry.C[0], 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMalformedResponse, err, "unparseable price %q for %s", entry.C[0], pair)
	}

	return price, nil
}

// AssetPairs lists the instrument symbols available on the exchange.
func (c *Client) AssetPairs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+assetPairsPath, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to build asset pairs request", err)
	}

	body, err := c.do(req, errors.ErrCodeExchangeUnavailable)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Error  []string                   `json:"error"`
		Result map[string]json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, "failed to decode asset pairs response", err)
	}

	if len(resp.Error) > 0 {
		return nil, errors.Newf(errors.ErrCodeExchangeUnavailable, "asset pairs error: %s", strings.Join(resp.Error, "; "))
	}

	pairs := make([]string, 0, len(resp.Result))
	for pair := range resp.Result {
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// AddOrder submits a signed limit order. A populated error array in the
// response is returned as ErrCodeExchangeRejected.
func (c *Client) AddOrder(ctx context.Context, order OrderRequest) error {
	params := url.Values{}
	params.Set("ordertype", "limit")
	params.Set("type", strings.ToLower(string(order.Side)))
	params.Set("volume", formatFloat(order.Volume))
	params.Set("pair", order.Pair)
	params.Set("price", formatFloat(order.Price))

	body, err := c.private(ctx, addOrderPath, params)
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedResponse, "failed to decode order response", err)
	}

	if len(resp.Error) > 0 {
		return errors.Newf(errors.ErrCodeExchangeRejected, "order rejected: %s", strings.Join(resp.Error, "; "))
	}

	return nil
}

// Balance fetches the account balances as asset -> quantity.
func (c *Client) Balance(ctx context.Context) (map[string]float64, error) {
	body, err := c.private(ctx, balancePath, url.Values{})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Error  []string          `json:"error"`
		Result map[string]string `json:"result"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, "failed to decode balance response", err)
	}

	if len(resp.Error) > 0 {
		return nil, errors.Newf(errors.ErrCodeBalanceQueryFailed, "balance error: %s", strings.Join(resp.Error, "; "))
	}

	balances := make(map[string]float64, len(resp.Result))

	for asset, raw := range resp.Result {
		qty, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMalformedResponse, err, "unparseable balance %q for %s", raw, asset)
		}

		balances[asset] = qty
	}

	return balances, nil
}

// private performs a signed POST to a private endpoint and returns the raw
// body. The nonce is injected into the form parameters before signing.
func (c *Client) private(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, errors.New(errors.ErrCodeInvalidCredentials, "private endpoint requires credentials")
	}

	nonce := c.nextNonce()
	params.Set("nonce", nonce)

	signature, err := Sign(c.apiSecret, path, nonce, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to build private request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("API-Sign", signature)

	return c.do(req, errors.ErrCodeExchangeUnavailable)
}

// do executes the request and returns the body, mapping transport errors and
// non-2xx statuses to the given code.
func (c *Client) do(req *http.Request, code errors.ErrorCode) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(code, "exchange request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(code, "failed to read exchange response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(code, "exchange returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// nextNonce returns a strictly increasing nonce derived from the current
// time in milliseconds.
func (c *Client) nextNonce() string {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()

	nonce := time.Now().UnixMilli()
	if nonce <= c.lastNonce {
		nonce = c.lastNonce + 1
	}

	c.lastNonce = nonce

	return strconv.FormatInt(nonce, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
