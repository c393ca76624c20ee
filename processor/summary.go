package processor

import (
	"fmt"

	"coincast/models"
)

// Summarize derives the top gainer and top loser from a snapshot list in one
// left-to-right pass seeded with element 0. Comparisons are strict, so when
// several assets tie at the extreme the first occurrence in input order wins.
func Summarize(snaps []models.AssetSnapshot) (models.MarketSummary, error) {
	if len(snaps) == 0 {
		return models.MarketSummary{}, fmt.Errorf("cannot summarize an empty snapshot list")
	}

	summary := models.MarketSummary{
		TopGainer: snaps[0],
		TopLoser:  snaps[0],
	}
	for _, s := range snaps[1:] {
		if s.PercentChange24 > summary.TopGainer.PercentChange24 {
			summary.TopGainer = s
		}
		if s.PercentChange24 < summary.TopLoser.PercentChange24 {
			summary.TopLoser = s
		}
	}
	return summary, nil
}

// Partition splits a snapshot list into non-negative and negative movers,
// preserving input order. Zero change lands in the non-negative half; the
// rising/falling trend classification used for rendering is a separate rule.
func Partition(snaps []models.AssetSnapshot) (positive, negative []models.AssetSnapshot) {
	for _, s := range snaps {
		if s.PercentChange24 >= 0 {
			positive = append(positive, s)
		} else {
			negative = append(negative, s)
		}
	}
	return positive, negative
}
