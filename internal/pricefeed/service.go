package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agritrust/agritrust-backend/pkg/logger"
	"github.com/agritrust/agritrust-backend/pkg/redis"
)

const cacheKeyFeed = "market-prices"

// Quotes is the price feed response including where the data came from.
type Quotes struct {
	Prices []MarketPrice `json:"prices"`
	// Source is "feed", "cache" or "fallback".
	Source string `json:"source"`
}

// Service serves market quotes with a cache in front of the upstream feed
// and a bundled fallback behind it.
type Service interface {
	Quotes(ctx context.Context, crop string) (*Quotes, error)
}

type service struct {
	provider Provider
	cache    redis.Cache
	ttl      time.Duration
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the price feed. cache may be nil when Redis is not
// configured; quotes then always hit the provider.
func NewService(provider Provider, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("price provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &service{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Quotes(ctx context.Context, crop string) (*Quotes, error) {
	if prices, ok := s.fromCache(ctx); ok {
		return &Quotes{Prices: filterCrop(prices, crop), Source: "cache"}, nil
	}

	prices, err := s.provider.Fetch(ctx)
	if err != nil {
		s.logg.Warn(ctx, "price feed unavailable, serving fallback dataset")
		return &Quotes{Prices: filterCrop(FallbackPrices(s.now()), crop), Source: "fallback"}, nil
	}

	s.toCache(ctx, prices)
	return &Quotes{Prices: filterCrop(prices, crop), Source: "feed"}, nil
}

func (s *service) fromCache(ctx context.Context) ([]MarketPrice, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheKeyFeed))
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(ctx, "price cache read failed")
		}
		return nil, false
	}
	var prices []MarketPrice
	if err := json.Unmarshal([]byte(raw), &prices); err != nil {
		return nil, false
	}
	return prices, true
}

func (s *service) toCache(ctx context.Context, prices []MarketPrice) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(prices)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(cacheKeyFeed), string(raw), s.ttl); err != nil {
		s.logg.Warn(ctx, "price cache write failed")
	}
}

func filterCrop(prices []MarketPrice, crop string) []MarketPrice {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		return prices
	}
	var filtered []MarketPrice
	for _, price := range prices {
		if strings.EqualFold(price.Crop, crop) {
			filtered = append(filtered, price)
		}
	}
	return filtered
}
