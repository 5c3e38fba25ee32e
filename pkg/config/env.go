package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultRPCEndpoint  = "https://api.mainnet-beta.solana.com"
	DefaultRPCRateLimit = 20
	DefaultHTTPAddr     = ":8080"
)

type Config struct {
	// RPC settings
	RPCEndpoints []string
	WSEndpoint   string
	RPCRateLimit int // requests per second per endpoint
	QuoteTimeout time.Duration

	// Jupiter quote API, used for vendor-priced pools
	JupiterAPIURL string
	JupiterAPIKey string

	// Logging
	LogLevel string
	LogJSON  bool

	// HTTP service
	HTTPAddr string
}

// LoadEnv loads environment variables from a .env file if it exists.
// Variables already set in the environment win.
func LoadEnv(filename string) error {
	err := godotenv.Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		// .env file is optional
		return nil
	}
	return err
}

// FromEnv reads Config from the environment, applying defaults.
func FromEnv() *Config {
	endpoints := GetRPCEndpoints()
	if len(endpoints) == 0 {
		endpoints = []string{DefaultRPCEndpoint}
	}
	return &Config{
		RPCEndpoints:  endpoints,
		WSEndpoint:    getEnv("WS_ENDPOINT", ""),
		RPCRateLimit:  getIntEnv("RPC_RATE_LIMIT", DefaultRPCRateLimit),
		QuoteTimeout:  getDurationEnv("QUOTE_TIMEOUT", 15*time.Second),
		JupiterAPIURL: getEnv("JUPITER_API_URL", ""),
		JupiterAPIKey: getEnv("JUPITER_API_KEY", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogJSON:       getBoolEnv("LOG_JSON", false),
		HTTPAddr:      getEnv("HTTP_ADDR", DefaultHTTPAddr),
	}
}

// Validate rejects settings no binary can run with.
func (c *Config) Validate() error {
	if len(c.RPCEndpoints) == 0 {
		return fmt.Errorf("at least one RPC endpoint is required")
	}
	if c.RPCRateLimit <= 0 {
		return fmt.Errorf("RPC_RATE_LIMIT must be positive, got %d", c.RPCRateLimit)
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT must be positive, got %s", c.QuoteTimeout)
	}
	return nil
}

// WebSocketURL returns WSEndpoint, or the first RPC endpoint with its scheme
// switched to ws/wss.
func (c *Config) WebSocketURL() string {
	if c.WSEndpoint != "" {
		return c.WSEndpoint
	}
	if len(c.RPCEndpoints) == 0 {
		return ""
	}
	u := c.RPCEndpoints[0]
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// GetRPCEndpoints returns the comma separated RPC_ENDPOINTS, or nil
func GetRPCEndpoints() []string {
	return SplitEndpoints(os.Getenv("RPC_ENDPOINTS"))
}

// SplitEndpoints splits a comma separated endpoint list, dropping blanks.
func SplitEndpoints(s string) []string {
	if s == "" {
		return nil
	}
	endpoints := strings.Split(s, ",")
	result := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
