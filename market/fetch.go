package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appconfig "coincast/config"
	"coincast/logger"
	"coincast/models"
)

// FetchTrending performs a single GET against the configured trending
// endpoint and returns the raw records in source order. It never substitutes
// data of its own; on any failure the caller decides whether to fall back to
// the static list.
func FetchTrending(cfg *appconfig.Config) ([]models.TrendingRecord, error) {
	log := logger.GetLogger().WithComponent("market_fetch").WithFields(logger.Fields{
		"url": cfg.Market.TrendingURL,
	})

	body, err := httpGet(cfg.Market.TrendingURL, cfg.Market.Timeout)
	if err != nil {
		log.WithError(err).Warn("trending fetch failed")
		return nil, err
	}

	var resp models.TrendingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.WithError(err).Warn("failed to unmarshal trending response")
		return nil, fmt.Errorf("failed to unmarshal trending response: %w", err)
	}

	if len(resp.Coins) == 0 {
		return nil, fmt.Errorf("trending response contained no coins")
	}

	records := make([]models.TrendingRecord, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		records = append(records, coin.Record())
	}

	logger.IncrementTrendingFetch(len(body))
	log.WithFields(logger.Fields{"records": len(records)}).Info("trending fetch successful")

	return records, nil
}

// httpGet is a helper function for making HTTP GET requests.
func httpGet(url string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Coincast/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
