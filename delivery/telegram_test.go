package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appconfig "coincast/config"
)

func deliveryConfig(baseURL string) *appconfig.Config {
	return &appconfig.Config{
		Delivery: appconfig.DeliveryConfig{
			BaseURL:  baseURL,
			BotToken: "test-token",
			ChatID:   "42",
			Timeout:  2 * time.Second,
		},
	}
}

func TestEnabled(t *testing.T) {
	if !New(deliveryConfig("http://localhost")).Enabled() {
		t.Error("client with token and chat id should be enabled")
	}
	cfg := deliveryConfig("http://localhost")
	cfg.Delivery.BotToken = ""
	if New(cfg).Enabled() {
		t.Error("client without token should be disabled")
	}
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New(deliveryConfig(server.URL))
	if err := c.SendMessage("hello market"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotBody.ChatID != "42" || gotBody.Text != "hello market" {
		t.Errorf("unexpected body: %+v", gotBody)
	}
}

func TestSendMessageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if err := New(deliveryConfig(server.URL)).SendMessage("x"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSendDocument(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "card.svg")
	if err := os.WriteFile(artifact, []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	var gotCaption, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotCaption = r.FormValue("caption")
		if f, header, err := r.FormFile("document"); err == nil {
			gotFile = header.Filename
			f.Close()
		} else {
			t.Errorf("form file: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New(deliveryConfig(server.URL))
	if err := c.SendDocument(artifact, "Bitcoin card"); err != nil {
		t.Fatalf("SendDocument failed: %v", err)
	}
	if gotCaption != "Bitcoin card" {
		t.Errorf("unexpected caption: %s", gotCaption)
	}
	if gotFile != "card.svg" {
		t.Errorf("unexpected file name: %s", gotFile)
	}
}

func TestSendDocumentMissingFile(t *testing.T) {
	c := New(deliveryConfig("http://localhost:1"))
	if err := c.SendDocument("/nonexistent/file.svg", ""); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestSendMessageTruncatesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	err := New(deliveryConfig(server.URL)).SendMessage("x")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 700 {
		t.Errorf("error message should carry a truncated body, got %d chars", len(err.Error()))
	}
}
