package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Keys         APIKeys
	Ai           AIConfig
	Backend      BackendConfig
	Push         PushConfig
	RateLimit    RateLimitConfig
	Conversation ConversationConfig
}

type AppConfig struct {
	Port                 string
	Environment          string
	Version              string
	LogFilePath          string
	PushLogFilePath      string
	CorsAllowedOrigins   string
	NatsURL              string
	RedisURL             string
	RunCron              bool
	DailyReminderEnabled bool
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string
	OpenAIBaseURL string
	OllamaBaseURL string
	Temperature   float64
}

type BackendConfig struct {
	TaskAPIURL     string
	TaskAPITimeout time.Duration
}

type PushConfig struct {
	ExpoPushURL     string
	ExpoAccessToken string
	ChunkSize       int
	MaxConcurrency  int
}

type RateLimitConfig struct {
	DailyLimit    int
	Backend       string // "database", "redis" or "memory"
	RetentionDays int
}

type ConversationConfig struct {
	TTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                 getEnv("APP_PORT", "8000"),
			Environment:          getEnv("GO_ENV", "development"),
			Version:              getEnv("APP_VERSION", "1.0.0"),
			LogFilePath:          getEnv("LOG_FILE_PATH", "logs/app.log"),
			PushLogFilePath:      getEnv("PUSH_LOG_FILE_PATH", "logs/push.log"),
			CorsAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:              getEnv("NATS_URL", ""),
			RedisURL:             getEnv("REDIS_URL", ""),
			RunCron:              getEnvAsBool("RUN_CRON", false),
			DailyReminderEnabled: getEnvAsBool("DAILY_REMINDER_ENABLED", false),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			LLMModel:      getEnv("LLM_MODEL", "gemini-1.5-flash"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		},
		Backend: BackendConfig{
			TaskAPIURL:     strings.TrimRight(getEnv("TASK_API_URL", "https://staging-api.realdevsquad.com"), "/"),
			TaskAPITimeout: getEnvAsDuration("TASK_API_TIMEOUT", 30*time.Second),
		},
		Push: PushConfig{
			ExpoPushURL:     getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			ExpoAccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),
			ChunkSize:       getEnvAsInt("EXPO_CHUNK_SIZE", 100),
			MaxConcurrency:  getEnvAsInt("EXPO_MAX_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			DailyLimit:    getEnvAsInt("RATE_LIMIT_PER_DAY", 20),
			Backend:       strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "database")),
			RetentionDays: getEnvAsInt("RATE_LIMIT_RETENTION_DAYS", 30),
		},
		Conversation: ConversationConfig{
			TTL: getEnvAsDuration("CONVERSATION_TTL", 10*time.Minute),
		},
	}
}

// LLMAPIKey picks the key matching the configured provider. Gemini keys are
// accepted for the OpenAI-compatible endpoint.
func (c *Config) LLMAPIKey() string {
	if c.Keys.OpenAI != "" {
		return c.Keys.OpenAI
	}
	return c.Keys.GoogleGemini
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
