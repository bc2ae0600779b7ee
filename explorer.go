package coinbooks

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

const explorerApiKeyEnv = "EXPLORER_API_KEY"

var explorerApiFlag = flag.String("explorer-api-key", "", "API key for the block-explorer balance endpoint.\n If missing it will read the environment variable \""+explorerApiKeyEnv+"\".")

func explorerApiKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *explorerApiFlag == "" {
		*explorerApiFlag = os.Getenv(explorerApiKeyEnv)
	}
	return *explorerApiFlag
}

// Explorer fetches on-chain balances from a block-explorer style JSON API.
// It implements BalanceSource.
//
// The expected response shape is:
//
//	{
//	    "address": "bc1q...",
//	    "balances": [
//	        {"asset": "BTC", "balance": "1.5021", "blockNumber": 840000, "timestamp": "2025-04-01T12:00:00Z"},
//	        ...
//	    ]
//	}
//
// Responses are cached on disk with a daily expiry, like every other remote
// service the tool talks to.
type Explorer struct {
	BaseURL string
	client  *http.Client
}

// NewExplorer creates an explorer client for the given API base URL.
func NewExplorer(baseURL string) *Explorer {
	return &Explorer{BaseURL: strings.TrimRight(baseURL, "/"), client: daily()}
}

// Balances fetches the balances the explorer reports for the address,
// restricted to the given assets.
func (x *Explorer) Balances(ctx context.Context, address string, assets []string) ([]OnChainBalance, error) {
	addr := fmt.Sprintf("%s/v1/address/%s/balances?assets=%s&api_token=%s",
		x.BaseURL, url.PathEscape(address), url.QueryEscape(strings.Join(assets, ",")), url.QueryEscape(explorerApiKey()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := jwdo(x.client, req, &jobj); err != nil {
		return nil, fmt.Errorf("error fetching balances for %q: %w", address, err)
	}

	jlist, err := jsonpath.Get("$.balances[*]", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing balances for %q: %w", address, err)
	}
	items, ok := jlist.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer; normalize to a list.
		items = []any{jlist}
	}

	balances := make([]OnChainBalance, 0, len(items))
	for _, item := range items {
		b, err := parseExplorerBalance(item)
		if err != nil {
			return nil, fmt.Errorf("error parsing balance for %q: %w", address, err)
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// parseExplorerBalance decodes one element of the "balances" array.
func parseExplorerBalance(item any) (OnChainBalance, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return OnChainBalance{}, fmt.Errorf("not an object: %v", item)
	}

	asset, _ := obj["asset"].(string)
	if asset == "" {
		return OnChainBalance{}, fmt.Errorf("missing asset in %v", obj)
	}

	var qty Quantity
	switch v := obj["balance"].(type) {
	case string:
		var err error
		qty, err = ParseQuantity(v)
		if err != nil {
			return OnChainBalance{}, fmt.Errorf("invalid balance for %s: %w", asset, err)
		}
	case float64:
		qty = Q(v)
	default:
		return OnChainBalance{}, fmt.Errorf("missing balance for %s", asset)
	}

	var block int64
	if v, ok := obj["blockNumber"].(float64); ok {
		block = int64(v)
	}
	var ts time.Time
	if v, ok := obj["timestamp"].(string); ok {
		ts, _ = time.Parse(time.RFC3339, v)
	}

	return OnChainBalance{Asset: asset, Balance: qty, BlockNumber: block, Timestamp: ts}, nil
}
