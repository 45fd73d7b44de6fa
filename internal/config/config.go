// Package config loads the fixed set of secrets and settings every binary
// needs from the environment (optionally seeded from a .env file). Missing
// mandatory values are a startup error, never a runtime-recoverable one.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mlaborde/suivi/internal/bank"
)

// Config holds every environment-driven setting.
type Config struct {
	Port string

	// Ledger (Notion)
	NotionToken      string
	NotionDatabaseID string

	// Remote cache store (GCS)
	GCSBucket          string
	GCSFolder          string
	GCSCredentialsJSON string // optional; empty falls back to ADC

	// Dashboard
	AppPassword string
	CacheTTL    time.Duration

	// Banking aggregator (Plaid)
	PlaidClientID  string
	PlaidSecret    string
	PlaidEnv       string
	BankAccounts   []bank.Account
	BankFetchCount int
}

// bankAccountEnv maps the fixed account labels to their token variables.
var bankAccountEnv = map[string]string{
	"PERSO": "BANK_PERSO_TOKEN",
	"JOINT": "BANK_JOINT_TOKEN",
}

// Load reads the environment. A .env file is honored when present.
func Load() *Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		NotionToken:        getEnv("NOTION_TOKEN", ""),
		NotionDatabaseID:   getEnv("NOTION_DATABASE_ID", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSFolder:          getEnv("GCS_FOLDER", "exports"),
		GCSCredentialsJSON: getEnv("GCS_CREDENTIALS_JSON", ""),
		AppPassword:        getEnv("APP_PASSWORD", ""),
		CacheTTL:           getEnvDuration("CACHE_TTL", time.Hour),
		PlaidClientID:      getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:        getEnv("PLAID_SECRET", ""),
		PlaidEnv:           getEnv("PLAID_ENV", "production"),
		BankFetchCount:     getEnvInt("BANK_FETCH_COUNT", bank.DefaultFetchCount),
	}

	for _, name := range []string{"PERSO", "JOINT"} {
		if token := os.Getenv(bankAccountEnv[name]); token != "" {
			cfg.BankAccounts = append(cfg.BankAccounts, bank.Account{Name: name, AccessToken: token})
		}
	}

	return cfg
}

// ValidateDashboard checks the values the interactive dashboard requires.
func (c *Config) ValidateDashboard() error {
	return c.require(map[string]string{
		"NOTION_TOKEN":       c.NotionToken,
		"NOTION_DATABASE_ID": c.NotionDatabaseID,
		"GCS_BUCKET":         c.GCSBucket,
		"APP_PASSWORD":       c.AppPassword,
	})
}

// ValidateReload checks the values a forced ledger reload requires.
func (c *Config) ValidateReload() error {
	return c.require(map[string]string{
		"NOTION_TOKEN":       c.NotionToken,
		"NOTION_DATABASE_ID": c.NotionDatabaseID,
		"GCS_BUCKET":         c.GCSBucket,
	})
}

// ValidateBankSync checks the values the banking ingestion path requires.
func (c *Config) ValidateBankSync() error {
	if err := c.require(map[string]string{
		"NOTION_TOKEN":       c.NotionToken,
		"NOTION_DATABASE_ID": c.NotionDatabaseID,
		"PLAID_CLIENT_ID":    c.PlaidClientID,
		"PLAID_SECRET":       c.PlaidSecret,
	}); err != nil {
		return err
	}
	if len(c.BankAccounts) == 0 {
		return fmt.Errorf("config: no bank account tokens set (BANK_PERSO_TOKEN, BANK_JOINT_TOKEN)")
	}
	return nil
}

func (c *Config) require(values map[string]string) error {
	var missing []string
	for name, value := range values {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("config: missing required environment values: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
