package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// API
	APIPort int

	// Index computation
	ScrapeIntervalMinutes      int
	ValidationThresholdPercent float64
	ForcePublish               bool

	// Oracle (on-chain price push)
	EthereumRPCURL string
	PrivateKey     string
	OracleAddress  string
	OracleAssetID  string
	ChainID        int
	OracleGasLimit int
}

const (
	// MultiAssetOracle deployment on Sepolia and the A100 asset id.
	defaultOracleAddress = "0xB44d652354d12Ac56b83112c6ece1fa2ccEfc683"
	defaultOracleAssetID = "0x2d2dcb773769dec98aac013f27fbeba7c0dfe1d4edf46e4d3bfee86443ac6cde"
	sepoliaChainID       = 11155111
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "A100IndexBot"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "a100_index"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// API
		APIPort: envInt("API_PORT", 3001),

		// Index computation
		ScrapeIntervalMinutes:      envInt("SCRAPE_INTERVAL_MINUTES", 60),
		ValidationThresholdPercent: envFloat("VALIDATION_THRESHOLD_PERCENT", 20),
		ForcePublish:               envBool("FORCE_PUBLISH", false),

		// Oracle
		EthereumRPCURL: envStr("ETHEREUM_RPC_URL", ""),
		PrivateKey:     envStr("PRIVATE_KEY", ""),
		OracleAddress:  envStr("ORACLE_ADDRESS", defaultOracleAddress),
		OracleAssetID:  envStr("ORACLE_ASSET_ID", defaultOracleAssetID),
		ChainID:        envInt("CHAIN_ID", sepoliaChainID),
		OracleGasLimit: envInt("ORACLE_GAS_LIMIT", 100000),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.ScrapeIntervalMinutes < 5 {
		errs = append(errs, "SCRAPE_INTERVAL_MINUTES must be at least 5")
	}
	if c.EthereumRPCURL != "" && c.PrivateKey == "" {
		errs = append(errs, "PRIVATE_KEY is required when ETHEREUM_RPC_URL is set")
	}
	if c.EthereumRPCURL == "" {
		fmt.Println("[WARN] ETHEREUM_RPC_URL not set - on-chain oracle push disabled")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set - REST API has no authentication")
	}
	if c.ForcePublish {
		fmt.Println("[WARN] FORCE_PUBLISH enabled - price changes beyond the validation threshold will be marked valid")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== A100 GPU Price Index Configuration ===")
	fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Println("--------------------------------------")
	fmt.Println("Index Computation:")
	fmt.Printf("  Interval: every %d minutes\n", c.ScrapeIntervalMinutes)
	fmt.Printf("  Validation threshold: +/-%.0f%%\n", c.ValidationThresholdPercent)
	fmt.Printf("  Force publish: %v\n", c.ForcePublish)
	fmt.Println("--------------------------------------")
	fmt.Println("Oracle:")
	if c.EthereumRPCURL != "" {
		fmt.Printf("  Contract: %s (chain %d)\n", c.OracleAddress, c.ChainID)
		fmt.Printf("  Asset ID: %s...\n", truncHex(c.OracleAssetID))
	} else {
		fmt.Println("  Disabled (no RPC endpoint)")
	}
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func truncHex(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
