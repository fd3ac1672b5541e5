package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	RedisAddr   string
	PostgresDSN string // empty disables the article archive

	NewsAPIURL  string
	NewsAPIKey  string
	NewsItems   int
	PriceAPIURL string
	PriceAPIKey string
	HeadlineURL string

	CacheTTL time.Duration
	CronSpec string
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		NewsAPIURL:  getEnv("NEWS_API_URL", "https://cryptonews-api.com/api/v1"),
		NewsAPIKey:  getEnv("NEWS_API_KEY", ""),
		NewsItems:   getEnvInt("NEWS_API_ITEMS", 3),
		PriceAPIURL: getEnv("PRICE_API_URL", "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"),
		PriceAPIKey: getEnv("PRICE_API_KEY", ""),
		HeadlineURL: getEnv("HEADLINE_URL", "https://www.coindesk.com"),
		CacheTTL:    getEnvDuration("CACHE_TTL", time.Hour),
		CronSpec:    getEnv("CRON_SPEC", "*/15 * * * *"),
	}

	log.Printf("config loaded: port=%s redis=%s cron=%s ttl=%s archive=%v",
		cfg.AppPort, cfg.RedisAddr, cfg.CronSpec, cfg.CacheTTL, cfg.PostgresDSN != "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("config: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("config: invalid %s=%q, using %s", key, v, def)
	}
	return def
}
