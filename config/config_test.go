package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTempConfig creates a minimal configuration file required for LoadConfig
// and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const minimalConfig = `coincast:
  name: "TestApp"
  version: "1.0"
storage:
  s3:
    enabled: false
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeTempConfig(t, minimalConfig)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Coincast.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.Coincast.Name)
	}
	if cfg.Market.Limit != 5 {
		t.Errorf("unexpected default limit: %d", cfg.Market.Limit)
	}
	if cfg.Market.Timeout != 10*time.Second {
		t.Errorf("unexpected default timeout: %v", cfg.Market.Timeout)
	}
	if cfg.Render.CardDir != "out/cards" {
		t.Errorf("unexpected default card dir: %s", cfg.Render.CardDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeTempConfig(t, `coincast:
  name: "TestApp"
  version: "1.0"
market:
  trending_url: "http://localhost:9999/trending"
  limit: 3
  timeout: 2s
delivery:
  base_url: "http://localhost:9998"
  bot_token: "from-file"
  chat_id: "123"
`)

	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Delivery.BotToken != "from-env" {
		t.Errorf("expected env override, got %s", cfg.Delivery.BotToken)
	}
	if cfg.Market.Limit != 3 {
		t.Errorf("unexpected limit: %d", cfg.Market.Limit)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeTempConfig(t, `coincast:
  name: "TestApp"
  version: "1.0"
delivery:
  base_url: "http://localhost:9998"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for missing bot token")
	}
}

func TestLoadConfigProductionRequiresDelivery(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	path := writeTempConfig(t, minimalConfig)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for production config without delivery credentials")
	}
}

func TestAppEnvironmentAliases(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	if env := AppEnvironment(); env != EnvironmentProduction {
		t.Errorf("expected %s, got %s", EnvironmentProduction, env)
	}
	if !IsProductionLike(EnvironmentStaging) {
		t.Error("staging should be production-like")
	}
	if IsProductionLike(EnvironmentDevelopment) {
		t.Error("development should not be production-like")
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"valid-bucket", true},
		{"Invalid", false},
		{"ab", false},
		{"my..bucket", false},
	}
	for _, c := range cases {
		if got := isValidS3Bucket(c.name); got != c.valid {
			t.Errorf("isValidS3Bucket(%q) = %v, want %v", c.name, got, c.valid)
		}
	}
}
