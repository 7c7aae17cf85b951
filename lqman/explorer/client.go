/*
Package explorer talks to an Esplora-style block explorer.

Only one endpoint is used:

	GET {base}/address/{address}/utxo

Each call is a single request. There is no retry and no backoff,
cancel through the context.
*/
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

const DefaultTimeout = 30 * time.Second

var (
	// ErrRequestFailed indicates a transport failure or a non-2xx status.
	ErrRequestFailed = errors.New("explorer: request failed")

	// ErrInvalidResponse indicates a body that is not the expected JSON.
	ErrInvalidResponse = errors.New("explorer: invalid response")
)

// One element of the utxo endpoint's answer.
// Blinded outputs carry commitments instead of value/asset.
type esploraUtxo struct {
	TxID   string  `json:"txid"`
	Vout   uint32  `json:"vout"`
	Value  *uint64 `json:"value,omitempty"`
	Asset  string  `json:"asset,omitempty"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight uint64 `json:"block_height,omitempty"`
	} `json:"status"`
	ValueCommitment string `json:"valuecommitment,omitempty"`
	AssetCommitment string `json:"assetcommitment,omitempty"`
}

func (e *esploraUtxo) explicit() bool {
	return e.Value != nil && e.Asset != ""
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the explorer at baseURL.
// A zero timeout means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchUtxos returns the explicit unspent outputs of address,
// in the order the explorer lists them.
func (c *Client) FetchUtxos(ctx context.Context, address string) ([]utxo.UnspentOutput, error) {
	endpoint := fmt.Sprintf("%s/address/%s/utxo", c.baseURL, url.PathEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrRequestFailed, resp.Status, strings.TrimSpace(string(body)))
	}

	var raw []esploraUtxo
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	result := make([]utxo.UnspentOutput, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		if !item.explicit() {
			skipped++
			continue
		}
		result = append(result, utxo.UnspentOutput{
			TxID:  item.TxID,
			Vout:  item.Vout,
			Asset: item.Asset,
			Value: *item.Value,
		})
	}

	logger.WithFields(logger.Fields{
		"address": address,
		"utxos":   len(result),
		"blinded": skipped,
	}).Debug("fetched utxos")

	return result, nil
}

// FetchBalances sums the explicit unspent outputs of address per asset.
func (c *Client) FetchBalances(ctx context.Context, address string) (map[string]uint64, error) {
	utxos, err := c.FetchUtxos(ctx, address)
	if err != nil {
		return nil, err
	}
	return AggregateBalances(utxos), nil
}

// AggregateBalances sums values per asset id.
func AggregateBalances(utxos []utxo.UnspentOutput) map[string]uint64 {
	balances := make(map[string]uint64)
	for _, u := range utxos {
		balances[u.Asset] += u.Value
	}
	return balances
}

// FetchUtxos is a one-shot call against the explorer at baseURL.
func FetchUtxos(ctx context.Context, address string, baseURL string) ([]utxo.UnspentOutput, error) {
	return NewClient(baseURL, 0).FetchUtxos(ctx, address)
}

// FetchBalances is a one-shot call against the explorer at baseURL.
func FetchBalances(ctx context.Context, address string, baseURL string) (map[string]uint64, error) {
	return NewClient(baseURL, 0).FetchBalances(ctx, address)
}
