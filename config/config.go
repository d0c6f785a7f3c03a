// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gosimple/slug"
)

// Config carries every deployment-level option the service reads. It is built
// once in main and passed into the services that need it, so nothing in the
// award pipeline touches the environment directly.
type Config struct {
	Port           string
	AllowedOrigins string

	DatabaseURL  string
	ServiceToken string // gateway bearer token
	CronSecret   string // shared secret for the daily-run trigger

	// Ledger settings. When OnChainEnabled is false the awarder runs in
	// shadow mode and never dials the RPC endpoint.
	OnChainEnabled  bool
	RPCEndpoint     string
	SignerKey       string
	ContractAddress string

	DailyAwardAmount int64 // whole tokens per award
	DailyActionKind  string
	BatchSize        int
	PacingDelay      time.Duration
	AwardTimeout     time.Duration
	DailyRunAt       string // "HH:MM", UTC

	SyncServiceURL   string
	SyncServiceToken string

	R2AccountID    string
	R2AccessKeyID  string
	R2AccessSecret string
	R2Bucket       string
	CDNBaseURL     string
}

// Load reads the environment into a Config and validates the combinations
// that would otherwise only fail at first use.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "5300"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ServiceToken: os.Getenv("REWARD_SERVICE_TOKEN"),
		CronSecret:   os.Getenv("CRON_SECRET"),

		OnChainEnabled:  getEnvBool("ONCHAIN_AWARDS_ENABLED", false),
		RPCEndpoint:     os.Getenv("LEDGER_RPC_URL"),
		SignerKey:       os.Getenv("LEDGER_SIGNER_KEY"),
		ContractAddress: os.Getenv("REWARD_CONTRACT_ADDRESS"),

		DailyAwardAmount: getEnvInt64("DAILY_AWARD_AMOUNT", 10),
		DailyActionKind:  slug.Make(getEnv("DAILY_ACTION_KIND", "daily-login")),
		BatchSize:        getEnvInt("AWARD_BATCH_SIZE", 50),
		PacingDelay:      time.Duration(getEnvInt("AWARD_PACING_MS", 1500)) * time.Millisecond,
		AwardTimeout:     time.Duration(getEnvInt("AWARD_TIMEOUT_S", 90)) * time.Second,
		DailyRunAt:       getEnv("DAILY_RUN_AT", "00:15"),

		SyncServiceURL:   os.Getenv("SYNC_SERVICE_URL"),
		SyncServiceToken: os.Getenv("SYNC_SERVICE_TOKEN"),

		R2AccountID:    os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:  os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessSecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:       os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:     os.Getenv("CDN_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ServiceToken == "" {
		return nil, fmt.Errorf("REWARD_SERVICE_TOKEN is required")
	}
	if cfg.CronSecret == "" {
		return nil, fmt.Errorf("CRON_SECRET is required")
	}
	if cfg.OnChainEnabled {
		if cfg.RPCEndpoint == "" {
			return nil, fmt.Errorf("LEDGER_RPC_URL is required when on-chain awards are enabled")
		}
		if cfg.SignerKey == "" {
			return nil, fmt.Errorf("LEDGER_SIGNER_KEY is required when on-chain awards are enabled")
		}
		if cfg.ContractAddress == "" {
			return nil, fmt.Errorf("REWARD_CONTRACT_ADDRESS is required when on-chain awards are enabled")
		}
	}
	if cfg.DailyAwardAmount <= 0 {
		return nil, fmt.Errorf("DAILY_AWARD_AMOUNT must be positive, got %d", cfg.DailyAwardAmount)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("AWARD_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if _, err := time.Parse("15:04", cfg.DailyRunAt); err != nil {
		return nil, fmt.Errorf("DAILY_RUN_AT must be HH:MM, got %q", cfg.DailyRunAt)
	}

	return cfg, nil
}

// SyncConfigured reports whether the profile sync worker should run.
func (c *Config) SyncConfigured() bool {
	return c.SyncServiceURL != "" && c.SyncServiceToken != ""
}

// R2Configured reports whether audit snapshots can be exported.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessSecret != "" && c.R2Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
