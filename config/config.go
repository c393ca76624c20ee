package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Coincast  CoincastConfig  `yaml:"coincast"`
	Market    MarketConfig    `yaml:"market"`
	Generator GeneratorConfig `yaml:"generator"`
	Render    RenderConfig    `yaml:"render"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type CoincastConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type MarketConfig struct {
	TrendingURL string        `yaml:"trending_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Limit       int           `yaml:"limit"`
}

type GeneratorConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RenderConfig struct {
	CardDir   string `yaml:"card_dir"`
	ChartDir  string `yaml:"chart_dir"`
	CardCount int    `yaml:"card_count"`
}

type DeliveryConfig struct {
	BaseURL     string        `yaml:"base_url"`
	BotToken    string        `yaml:"bot_token"`
	ChatID      string        `yaml:"chat_id"`
	Timeout     time.Duration `yaml:"timeout"`
	UploadDelay time.Duration `yaml:"upload_delay"`
	DisableDocs bool          `yaml:"disable_docs"`
	ParseMode   string        `yaml:"parse_mode"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	DashboardName string `yaml:"dashboard_name"`
}

// LoadConfig reads, parses and validates the yaml configuration. Secrets are
// overridden from the environment when present so config files can stay free
// of credentials.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Market: MarketConfig{
			TrendingURL: "https://api.coingecko.com/api/v3/search/trending",
			Timeout:     10 * time.Second,
			Limit:       5,
		},
		Render: RenderConfig{
			CardDir:  "out/cards",
			ChartDir: "out/charts",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		config.Delivery.BotToken = strings.TrimSpace(v)
	}
	if v := os.Getenv("CHAT_ID"); v != "" {
		config.Delivery.ChatID = strings.TrimSpace(v)
	}
	if v := os.Getenv("GENERATOR_API_KEY"); v != "" {
		config.Generator.APIKey = strings.TrimSpace(v)
	}
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Development runs may skip delivery entirely; production-like runs may
	// not post into the void.
	if IsProductionLike(AppEnvironment()) {
		if config.Delivery.BotToken == "" || config.Delivery.ChatID == "" {
			return nil, fmt.Errorf("delivery.bot_token and delivery.chat_id are required in %s", AppEnvironment())
		}
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Coincast.Name == "" {
		return fmt.Errorf("coincast.name is required")
	}

	if cfg.Coincast.Version == "" {
		return fmt.Errorf("coincast.version is required")
	}

	if cfg.Market.TrendingURL == "" {
		return fmt.Errorf("market.trending_url is required")
	}
	if cfg.Market.Limit <= 0 {
		return fmt.Errorf("market.limit must be greater than 0")
	}
	if cfg.Market.Timeout <= 0 {
		return fmt.Errorf("market.timeout must be greater than 0")
	}

	if cfg.Render.CardDir == "" || cfg.Render.ChartDir == "" {
		return fmt.Errorf("render.card_dir and render.chart_dir are required")
	}

	if cfg.Delivery.BaseURL != "" && cfg.Delivery.BotToken == "" {
		return fmt.Errorf("delivery.bot_token is required when delivery.base_url is set")
	}
	if cfg.Delivery.BaseURL != "" && cfg.Delivery.ChatID == "" {
		return fmt.Errorf("delivery.chat_id is required when delivery.base_url is set")
	}

	if cfg.Generator.Endpoint != "" && cfg.Generator.APIKey == "" {
		return fmt.Errorf("generator.api_key is required when generator.endpoint is set")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
