package models

import (
	"time"
)

// Trend is the qualitative direction of an asset over the last 24 hours.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// AssetSnapshot is one trending asset at the time of a single run.
type AssetSnapshot struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Rank            int     `json:"rank"`
	PercentChange24 float64 `json:"percent_change_24h"`
}

// MarketSummary is derived from a snapshot list and recomputed every run.
type MarketSummary struct {
	TopGainer AssetSnapshot `json:"top_gainer"`
	TopLoser  AssetSnapshot `json:"top_loser"`
}

// TrendingRecord is a single raw record from the trending source before
// normalization. Rank and change may be absent upstream.
type TrendingRecord struct {
	Name      string
	Symbol    string
	Rank      int
	Change24h *float64
}

// TrendingResponse mirrors the CoinGecko /search/trending payload shape.
type TrendingResponse struct {
	Coins []TrendingCoin `json:"coins"`
}

type TrendingCoin struct {
	Item TrendingItem `json:"item"`
}

type TrendingItem struct {
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	MarketCapRank int               `json:"market_cap_rank"`
	Data          *TrendingItemData `json:"data,omitempty"`
}

// TrendingItemData carries per-currency 24h change percentages keyed by
// quote currency ("usd", "btc", ...).
type TrendingItemData struct {
	PriceChange24h map[string]float64 `json:"price_change_percentage_24h"`
}

// Record converts the API item into the normalized raw record consumed by
// the snapshot builder. A nil Change24h means the source omitted the value.
func (c TrendingCoin) Record() TrendingRecord {
	rec := TrendingRecord{
		Name:   c.Item.Name,
		Symbol: c.Item.Symbol,
		Rank:   c.Item.MarketCapRank,
	}
	if c.Item.Data != nil {
		if v, ok := c.Item.Data.PriceChange24h["usd"]; ok {
			chg := v
			rec.Change24h = &chg
		}
	}
	return rec
}

// Run identifies a single pipeline invocation.
type Run struct {
	ID        string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}
