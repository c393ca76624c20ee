package market

import (
	"coincast/models"
)

// StaticTrending is the hardcoded list used when the trending source is
// entirely unreachable. Five well-known assets with fixed changes, so the
// rest of the pipeline always has a non-empty set to work with.
func StaticTrending() []models.TrendingRecord {
	return []models.TrendingRecord{
		{Name: "Bitcoin", Symbol: "btc", Rank: 1, Change24h: ptr(2.4)},
		{Name: "Ethereum", Symbol: "eth", Rank: 2, Change24h: ptr(1.8)},
		{Name: "Solana", Symbol: "sol", Rank: 3, Change24h: ptr(-3.1)},
		{Name: "BNB", Symbol: "bnb", Rank: 4, Change24h: ptr(0.9)},
		{Name: "XRP", Symbol: "xrp", Rank: 5, Change24h: ptr(-1.2)},
	}
}

func ptr(v float64) *float64 { return &v }
