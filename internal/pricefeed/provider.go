package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// MarketPrice is one mandi quote for a crop. Prices carry exact decimal
// values as reported by the feed; they are advisory and never used for
// escrow arithmetic.
type MarketPrice struct {
	Crop       string          `json:"crop"`
	Market     string          `json:"market"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	Currency   string          `json:"currency"`
	AsOf       time.Time       `json:"as_of"`
}

// Provider fetches current market quotes from an upstream feed.
type Provider interface {
	Fetch(ctx context.Context) ([]MarketPrice, error)
}

type httpProvider struct {
	client     *http.Client
	url        string
	maxRetries uint64
}

// NewHTTPProvider builds a provider against the given feed URL. Transient
// failures are retried with exponential backoff before the caller falls
// back to the bundled dataset.
func NewHTTPProvider(url string, timeout time.Duration, maxRetries uint64) (Provider, error) {
	if url == "" {
		return nil, fmt.Errorf("price feed url required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpProvider{
		client:     &http.Client{Timeout: timeout},
		url:        url,
		maxRetries: maxRetries,
	}, nil
}

type staticProvider struct {
	now func() time.Time
}

// NewStaticProvider serves the bundled dataset directly. Used when no feed
// URL is configured.
func NewStaticProvider() Provider {
	return &staticProvider{now: time.Now}
}

func (p *staticProvider) Fetch(ctx context.Context) ([]MarketPrice, error) {
	return FallbackPrices(p.now()), nil
}

func (p *httpProvider) Fetch(ctx context.Context) ([]MarketPrice, error) {
	var prices []MarketPrice
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, err := p.fetchOnce(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		prices = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (p *httpProvider) fetchOnce(ctx context.Context) ([]MarketPrice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price feed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned %d", res.StatusCode)
	}

	var payload struct {
		Prices []MarketPrice `json:"prices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price feed: %w", err)
	}
	return payload.Prices, nil
}
