package shared

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	MetricsAddr string

	SourceURL   string
	Language    string
	Currency    string
	Adults      int
	Workers     int
	RPS         int
	RatesPage   int
	MaxPages    int
	HTTPTimeout int // seconds

	RedisAddr string
	RedisPass string
	RedisDB   int
	RedisTTL  int // seconds

	MySQLDSN string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		MetricsAddr: env("METRICS_ADDR", ""),
		SourceURL:   env("ITAKA_GQL_URL", "https://www.itaka.pl/graphql"),
		Language:    env("LANGUAGE", "pl"),
		Currency:    env("CURRENCY", "PLN"),
		Adults:      atoi("ADULTS", 2),
		Workers:     atoi("SCRAPE_WORKERS", 4),
		RPS:         atoi("SCRAPE_RPS", 3),
		RatesPage:   atoi("RATES_PER_PAGE", 100),
		MaxPages:    atoi("MAX_RATE_PAGES", 50),
		HTTPTimeout: atoi("HTTP_TIMEOUT_SECONDS", 20),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisTTL:    atoi("REDIS_TTL_SECONDS", 3600),
		MySQLDSN:    env("MYSQL_DSN", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
