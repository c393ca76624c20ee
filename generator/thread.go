package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appconfig "coincast/config"
	"coincast/logger"
	"coincast/models"
	"coincast/render"
)

// Client drafts the social-media thread for a run. When a generative
// endpoint is configured it is asked first; on any failure the client falls
// back to a deterministic templated thread so the pipeline always has text
// to deliver.
type Client struct {
	config     *appconfig.Config
	httpClient *http.Client
	log        *logger.Log
}

func New(cfg *appconfig.Config) *Client {
	timeout := cfg.Generator.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.GetLogger(),
	}
}

type generateRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Thread returns the thread text for the run. It never fails outright; the
// worst case is the templated fallback.
func (c *Client) Thread(snaps []models.AssetSnapshot, summary models.MarketSummary) string {
	log := c.log.WithComponent("generator")

	if c.config.Generator.Endpoint == "" {
		log.Info("no generator endpoint configured, using templated thread")
		return BuildFallbackThread(snaps, summary)
	}

	text, err := c.generate(BuildPrompt(snaps, summary))
	if err != nil {
		log.WithError(err).Warn("remote generation failed, using templated thread")
		return BuildFallbackThread(snaps, summary)
	}

	log.WithFields(logger.Fields{"chars": len(text)}).Info("thread generated")
	return text
}

func (c *Client) generate(prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.config.Generator.Model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequest("POST", c.config.Generator.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Generator.APIKey)
	req.Header.Set("User-Agent", "Coincast/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal generation response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("generation response contained no text")
	}
	return out.Text, nil
}

// BuildPrompt assembles the instruction sent to the generative endpoint.
func BuildPrompt(snaps []models.AssetSnapshot, summary models.MarketSummary) string {
	var b strings.Builder
	b.WriteString("Write a short social-media thread about today's trending cryptocurrencies. ")
	b.WriteString("Be factual and concise. The data:\n")
	for _, s := range snaps {
		fmt.Fprintf(&b, "- %s (%s), rank %d, 24h change %s\n",
			s.Name, strings.ToUpper(s.Symbol), s.Rank, render.FormatChange(s.PercentChange24))
	}
	fmt.Fprintf(&b, "Top gainer: %s (%s). Top loser: %s (%s).\n",
		summary.TopGainer.Name, render.FormatChange(summary.TopGainer.PercentChange24),
		summary.TopLoser.Name, render.FormatChange(summary.TopLoser.PercentChange24))
	return b.String()
}

// BuildFallbackThread renders the deterministic thread used when no
// generative endpoint is available.
func BuildFallbackThread(snaps []models.AssetSnapshot, summary models.MarketSummary) string {
	var b strings.Builder
	b.WriteString("Trending crypto today:\n\n")
	for _, s := range snaps {
		fmt.Fprintf(&b, "%d. %s (%s): %s\n", s.Rank, s.Name, strings.ToUpper(s.Symbol),
			render.FormatChange(s.PercentChange24))
	}
	fmt.Fprintf(&b, "\nTop gainer: %s at %s. Top loser: %s at %s.",
		summary.TopGainer.Name, render.FormatChange(summary.TopGainer.PercentChange24),
		summary.TopLoser.Name, render.FormatChange(summary.TopLoser.PercentChange24))
	return b.String()
}
