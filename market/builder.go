package market

import (
	"math/rand"

	"coincast/models"
)

// Rand is the randomness seam for synthetic percent changes. Tests inject a
// deterministic implementation; production uses the package default.
type Rand interface {
	Float64() float64
}

type defaultRand struct{}

func (defaultRand) Float64() float64 { return rand.Float64() }

// DefaultRand returns the production randomness source.
func DefaultRand() Rand { return defaultRand{} }

// BuildSnapshots normalizes raw trending records into asset snapshots.
// Order is preserved, the list is capped at limit, and rank is the position
// in the trending list starting at 1. When the source omitted the 24h change
// a synthetic value uniform in [-10, +10) is substituted from rng; outputs
// containing that fallback are not real data.
func BuildSnapshots(records []models.TrendingRecord, limit int, rng Rand) []models.AssetSnapshot {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	if rng == nil {
		rng = defaultRand{}
	}

	snaps := make([]models.AssetSnapshot, 0, limit)
	for i, rec := range records[:limit] {
		change := rng.Float64()*20 - 10
		if rec.Change24h != nil {
			change = *rec.Change24h
		}
		snaps = append(snaps, models.AssetSnapshot{
			Name:            rec.Name,
			Symbol:          rec.Symbol,
			Rank:            i + 1,
			PercentChange24: change,
		})
	}
	return snaps
}
