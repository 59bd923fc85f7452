package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Shopify Admin API
	ShopifyShopDomain  string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	// Throttle-aware retry tuning for the GraphQL client
	ShopifyMaxRetries  int
	ShopifyRetryBase   time.Duration
	ShopifyRetryCap    time.Duration
	ShopifyRetryJitter time.Duration
	ShopifyMinBudget   int
	ShopifyBudgetPause time.Duration
	// Orchestration
	DryRunZoneDelay time.Duration
	// Rate generation defaults (used when a carrier row leaves them unset)
	DefaultMaxParcelWeight float64
	DefaultMaxTotalWeight  float64
	Currency               string
	// Cache
	CacheZoneListTTL time.Duration
	CacheTariffTTL   time.Duration
	// R2 run-report archive (optional; archiving is skipped when unset)
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	R2UploadTimeout   time.Duration
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: Try loading .env (standard local dev)
		// We don't error here because in pure docker/prod envs, .env might not exist,
		// and we rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		ShopifyShopDomain:  getEnv("SHOPIFY_SHOP_DOMAIN", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-07"),

		// Retry defaults: 5 attempts, 500ms base doubled per attempt, 8s cap,
		// up to 200ms jitter, pause when remaining call budget drops below 50
		ShopifyMaxRetries:  getIntEnv("SHOPIFY_MAX_RETRIES", 5),
		ShopifyRetryBase:   getDurationEnv("SHOPIFY_RETRY_BASE", 500*time.Millisecond),
		ShopifyRetryCap:    getDurationEnv("SHOPIFY_RETRY_CAP", 8*time.Second),
		ShopifyRetryJitter: getDurationEnv("SHOPIFY_RETRY_JITTER", 200*time.Millisecond),
		ShopifyMinBudget:   getIntEnv("SHOPIFY_MIN_BUDGET", 50),
		ShopifyBudgetPause: getDurationEnv("SHOPIFY_BUDGET_PAUSE", time.Second),

		DryRunZoneDelay: getDurationEnv("DRY_RUN_ZONE_DELAY", 500*time.Millisecond),

		DefaultMaxParcelWeight: getFloatEnv("DEFAULT_MAX_PARCEL_WEIGHT", 2.0),
		DefaultMaxTotalWeight:  getFloatEnv("DEFAULT_MAX_TOTAL_WEIGHT", 20.0),
		Currency:               getEnv("CURRENCY", "GBP"),

		CacheZoneListTTL: getDurationEnv("CACHE_ZONE_LIST_TTL", time.Minute),
		CacheTariffTTL:   getDurationEnv("CACHE_TARIFF_TTL", time.Minute),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.ShopifyShopDomain == "" {
		log.Fatal("CRITICAL: SHOPIFY_SHOP_DOMAIN is required")
	}
	if c.ShopifyAccessToken == "" {
		log.Fatal("CRITICAL: SHOPIFY_ACCESS_TOKEN is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
