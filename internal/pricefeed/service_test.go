package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agritrust/agritrust-backend/pkg/logger"
)

type fakeCache struct {
	values map[string]string
	miss   error
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if value, ok := f.values[key]; ok {
		return value, nil
	}
	return "", f.miss
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) CacheKey(parts ...string) string {
	return "test:cache:" + strings.Join(parts, ":")
}

type fakeProvider struct {
	prices []MarketPrice
	err    error
	calls  int
}

func (f *fakeProvider) Fetch(context.Context) ([]MarketPrice, error) {
	f.calls++
	return f.prices, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func missError() error {
	// Mimics redis.Nil without a live server; IsMiss only matches the real
	// sentinel, so this registers as an unexpected error path too.
	return errors.New("cache miss")
}

func TestQuotesFetchesAndCaches(t *testing.T) {
	provider := &fakeProvider{prices: []MarketPrice{
		{Crop: "Wheat", Market: "Kurnool", PricePerKg: decimal.NewFromFloat(22.50), Currency: "INR"},
		{Crop: "Onion", Market: "Nashik", PricePerKg: decimal.NewFromFloat(14.00), Currency: "INR"},
	}}
	cache := &fakeCache{values: map[string]string{}, miss: missError()}

	svc, err := NewService(provider, cache, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	quotes, err := svc.Quotes(context.Background(), "")
	if err != nil {
		t.Fatalf("quotes: %v", err)
	}
	if quotes.Source != "feed" {
		t.Fatalf("source = %s, want feed", quotes.Source)
	}
	if len(quotes.Prices) != 2 {
		t.Fatalf("prices = %d, want 2", len(quotes.Prices))
	}
	if len(cache.values) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(cache.values))
	}

	// Second read is served from cache without touching the provider.
	quotes, err = svc.Quotes(context.Background(), "wheat")
	if err != nil {
		t.Fatalf("quotes: %v", err)
	}
	if quotes.Source != "cache" {
		t.Fatalf("source = %s, want cache", quotes.Source)
	}
	if len(quotes.Prices) != 1 || quotes.Prices[0].Crop != "Wheat" {
		t.Fatalf("filtered prices = %+v, want the Wheat quote", quotes.Prices)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestQuotesFallsBackWhenFeedDown(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc, err := NewService(provider, nil, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	quotes, err := svc.Quotes(context.Background(), "")
	if err != nil {
		t.Fatalf("quotes: %v", err)
	}
	if quotes.Source != "fallback" {
		t.Fatalf("source = %s, want fallback", quotes.Source)
	}
	if len(quotes.Prices) == 0 {
		t.Fatalf("fallback dataset is empty")
	}
	for _, price := range quotes.Prices {
		if price.AsOf.IsZero() {
			t.Fatalf("fallback price missing as_of stamp: %+v", price)
		}
	}
}

func TestHTTPProviderRetriesThenSucceeds(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		payload := map[string]any{"prices": []MarketPrice{
			{Crop: "Rice", Market: "Raipur", PricePerKg: decimal.NewFromFloat(35.00), Currency: "INR"},
		}}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(server.URL, time.Second, 4)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	prices, err := provider.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits != 3 {
		t.Fatalf("hits = %d, want 3", hits)
	}
	if len(prices) != 1 || prices[0].Crop != "Rice" {
		t.Fatalf("prices = %+v, want the Rice quote", prices)
	}
	if !prices[0].PricePerKg.Equal(decimal.NewFromFloat(35.00)) {
		t.Fatalf("price = %s, want 35", prices[0].PricePerKg)
	}
}

func TestHTTPProviderGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(server.URL, time.Second, 1)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := provider.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}
