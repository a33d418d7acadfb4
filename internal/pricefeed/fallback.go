package pricefeed

import (
	"time"

	"github.com/shopspring/decimal"
)

// fallbackPrices is the bundled dataset served when the upstream feed is
// unreachable. Values track typical mandi rates so the marketplace stays
// usable offline.
var fallbackPrices = []MarketPrice{
	{Crop: "Wheat", Market: "Kurnool", PricePerKg: decimal.NewFromFloat(22.50), Currency: "INR"},
	{Crop: "Wheat", Market: "Indore", PricePerKg: decimal.NewFromFloat(23.10), Currency: "INR"},
	{Crop: "Onion", Market: "Nashik", PricePerKg: decimal.NewFromFloat(14.00), Currency: "INR"},
	{Crop: "Onion", Market: "Bengaluru", PricePerKg: decimal.NewFromFloat(16.75), Currency: "INR"},
	{Crop: "Rice", Market: "Raipur", PricePerKg: decimal.NewFromFloat(35.00), Currency: "INR"},
	{Crop: "Rice", Market: "Karnal", PricePerKg: decimal.NewFromFloat(36.40), Currency: "INR"},
	{Crop: "Tomato", Market: "Kolar", PricePerKg: decimal.NewFromFloat(18.25), Currency: "INR"},
	{Crop: "Potato", Market: "Agra", PricePerKg: decimal.NewFromFloat(12.80), Currency: "INR"},
}

// FallbackPrices returns a copy of the bundled dataset stamped with now.
func FallbackPrices(now time.Time) []MarketPrice {
	prices := make([]MarketPrice, len(fallbackPrices))
	copy(prices, fallbackPrices)
	for i := range prices {
		prices[i].AsOf = now
	}
	return prices
}
