package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appconfig "coincast/config"
	"coincast/logger"
)

const defaultBaseURL = "https://api.telegram.org"

// Client posts run output to a Telegram-style bot endpoint: the thread as a
// text message and each artifact as a document upload. It passes the
// preconfigured token through and nothing more; retries are the caller's
// non-problem (there are none).
type Client struct {
	baseURL    string
	token      string
	chatID     string
	parseMode  string
	httpClient *http.Client
	log        *logger.Log
}

func New(cfg *appconfig.Config) *Client {
	baseURL := cfg.Delivery.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Delivery.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Delivery.BotToken,
		chatID:     cfg.Delivery.ChatID,
		parseMode:  cfg.Delivery.ParseMode,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.GetLogger(),
	}
}

// Enabled reports whether the client has the credentials to deliver at all.
func (c *Client) Enabled() bool {
	return c.token != "" && c.chatID != ""
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendMessage delivers the thread text.
func (c *Client) SendMessage(text string) error {
	log := c.log.WithComponent("delivery").WithFields(logger.Fields{"method": "sendMessage"})

	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text, ParseMode: c.parseMode})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequest("POST", c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req); err != nil {
		log.WithError(err).Warn("message delivery failed")
		return err
	}

	logger.IncrementDelivery(len(text))
	log.WithFields(logger.Fields{"chars": len(text)}).Info("message delivered")
	return nil
}

// SendDocument uploads one artifact file with a caption.
func (c *Client) SendDocument(path, caption string) error {
	log := c.log.WithComponent("delivery").WithFields(logger.Fields{
		"method": "sendDocument",
		"file":   filepath.Base(path),
	})

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("chat_id", c.chatID); err != nil {
		return fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	size, err := io.Copy(part, file)
	if err != nil {
		return fmt.Errorf("failed to copy artifact into form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequest("POST", c.methodURL("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(req); err != nil {
		log.WithError(err).Warn("document delivery failed")
		return err
	}

	logger.IncrementDelivery(int(size))
	log.WithFields(logger.Fields{"bytes": size}).Info("document delivered")
	return nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP error: %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return nil
}
