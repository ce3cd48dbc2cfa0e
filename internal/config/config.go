package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"

	CounterPostgres = "postgres"
	CounterRedis    = "redis"
)

type Config struct {
	AppEnv              string
	LogLevel            string
	Port                string
	CORSOrigins         []string
	TrustedProxies      []string
	BaseURL             string
	DBUser              string
	DBPassword          string
	DBName              string
	DBHost              string
	DBPort              string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	AbuseCounter        string
	AbuseThreshold      int64
	ReferralPolicy      string
	RequireReferralCode bool
	RewardTiersFile     string
	BotToken            string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnv("PORT", "8080"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", "")),
		BaseURL:             strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "waitlist"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		AbuseCounter:        oneOf("ABUSE_COUNTER", CounterPostgres, CounterRedis),
		AbuseThreshold:      getEnvInt("ABUSE_THRESHOLD", 3),
		ReferralPolicy:      oneOf("REFERRAL_POLICY", PolicyStrict, PolicyLenient),
		RequireReferralCode: getEnvBool("REQUIRE_REFERRAL_CODE", false),
		RewardTiersFile:     getEnv("REWARD_TIERS_FILE", ""),
		BotToken:            getEnv("TELEGRAM_BOT_TOKEN", ""),
	}
}

// LenientReferrals reports whether unmatched referral codes are ignored.
func (c *Config) LenientReferrals() bool {
	return c.ReferralPolicy == PolicyLenient
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

// oneOf returns the lower-cased value of key when it is one of allowed,
// otherwise the first allowed value.
func oneOf(key string, allowed ...string) string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if raw == a {
			return a
		}
	}
	if raw != "" {
		log.Printf("Unknown %s=%q, using %s", key, raw, allowed[0])
	}
	return allowed[0]
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if v := strings.TrimRight(strings.TrimSpace(p), "/"); v != "" {
			out = append(out, v)
		}
	}
	return out
}
