package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string

	JWTSecret string
	TokenTTL  time.Duration

	Zarinpal ZarinpalConfig
	Mail     MailConfig
}

// ZarinpalConfig configures the online payment gateway. An empty
// MerchantID disables online payments entirely.
type ZarinpalConfig struct {
	MerchantID  string
	Sandbox     bool
	CallbackURL string
}

// MailConfig configures the transactional mail API. An empty APIKey
// disables outgoing mail.
type MailConfig struct {
	APIURL string
	APIKey string
	From   string
}

// Load reads configuration from environment variables, applying defaults
// for everything except DB_URL and JWT_SECRET, which callers must check.
func Load() Config {
	return Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DB_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    getDuration("TOKEN_TTL", 24*time.Hour),
		Zarinpal: ZarinpalConfig{
			MerchantID:  os.Getenv("ZARINPAL_MERCHANT_ID"),
			Sandbox:     getBool("ZARINPAL_SANDBOX", false),
			CallbackURL: getEnv("ZARINPAL_CALLBACK_URL", "https://rabik.ir/api/payments/callback"),
		},
		Mail: MailConfig{
			APIURL: getEnv("MAIL_API_URL", "https://api.resend.com/emails"),
			APIKey: os.Getenv("MAIL_API_KEY"),
			From:   getEnv("MAIL_FROM", "رابیک <info@rabik.ir>"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
