package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	StylesPath  string
	StylesOrder string
	SamplesDir  string

	GroqAPIKey      string
	GroqModel       string
	GroqBaseURL     string
	GroqTemperature float64
	GroqMaxTokens   int

	PollinationsBaseURL string
	PollinationsModel   string

	TranslateBaseURL string

	ImgurClientID string

	TelegramBotToken string
	TelegramChatID   string

	GreenAPIInstanceID string
	GreenAPIToken      string
	GreenAPIBaseURL    string

	CounterBackend string
	CounterPath    string
	DatabaseURL    string

	GeoIPDBPath   string
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	GeneratePerMin   int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. No variable is strictly required: every external
// channel (Telegram, WhatsApp, imgur, Postgres) degrades to disabled when
// its credentials are absent.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		StylesPath:  getEnv("STYLES_PATH", "data/image_styles.json"),
		StylesOrder: getEnv("STYLES_ORDER", "alphabetical"),
		SamplesDir:  getEnv("SAMPLES_DIR", "data/samples"),

		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqModel:       getEnv("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqTemperature: getEnvFloat("GROQ_TEMPERATURE", 0.7),
		GroqMaxTokens:   getEnvInt("GROQ_MAX_TOKENS", 1024),

		PollinationsBaseURL: getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		PollinationsModel:   getEnv("POLLINATIONS_MODEL", "flux"),

		TranslateBaseURL: getEnv("TRANSLATE_BASE_URL", "https://translate.googleapis.com"),

		ImgurClientID: os.Getenv("IMGUR_CLIENT_ID"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		GreenAPIInstanceID: os.Getenv("GREEN_API_INSTANCE_ID"),
		GreenAPIToken:      os.Getenv("GREEN_API_TOKEN"),
		GreenAPIBaseURL:    getEnv("GREEN_API_BASE_URL", "https://api.green-api.com"),

		CounterBackend: getEnv("COUNTER_BACKEND", "memory"),
		CounterPath:    getEnv("COUNTER_PATH", "data/counters.json"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "he"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		GeneratePerMin:   getEnvInt("GENERATE_RATE_PER_MINUTE", 6),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
