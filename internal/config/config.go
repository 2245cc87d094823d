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
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Ai        AIConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Knowledge KnowledgeConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ContactTopic       string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type SMTPConfig struct {
	Host           string
	Port           int
	Email          string
	Password       string
	SenderName     string
	OwnerAddrs     []string
	MaxAttempts    int
	InitialBackoff time.Duration
}

type AIConfig struct {
	LLMProvider       string // "openrouter" or "ollama"
	BaseURL           string
	APIKey            string
	ChatModel         string
	ClassifierModel   string
	TranslatorModel   string
	EmbeddingProvider string // "openrouter" or "ollama"
	EmbeddingBaseURL  string
	EmbeddingModel    string
	OllamaBaseURL     string
	HistoryTokens     int
	RequestTimeout    time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	AdminJWTSecret string
	SecureCookie   bool
}

type RateLimitConfig struct {
	ChatDailyLimit  int
	EmailDailyLimit int
	ChargePolicy    string // "upfront" or "on_success"
}

type KnowledgeConfig struct {
	Scopes   []string
	TopK     int
	SeedFile string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ContactTopic:       getEnv("CONTACT_TOPIC_NAME", "CONTACT_EMAIL"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORAGE_DRIVER", "memory"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", ""),
			Port:           getEnvAsInt("SMTP_PORT", 587),
			Email:          getEnv("SMTP_EMAIL", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			SenderName:     getEnv("SMTP_SENDER_NAME", "Portfolio Team"),
			OwnerAddrs:     getEnvAsList("CONTACT_OWNER_EMAILS", nil),
			MaxAttempts:    getEnvAsInt("SMTP_MAX_ATTEMPTS", 5),
			InitialBackoff: getEnvAsDuration("SMTP_INITIAL_BACKOFF", time.Second),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openrouter"),
			BaseURL:           getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:            getEnv("OPENROUTER_API_KEY", ""),
			ChatModel:         getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			ClassifierModel:   getEnv("OPENROUTER_CLASSIFIER_MODEL", "openai/gpt-4o-mini"),
			TranslatorModel:   getEnv("OPENROUTER_TRANSLATOR_MODEL", "openai/gpt-4o-mini"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openrouter"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "https://openrouter.ai/api/v1"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "openai/text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HistoryTokens:     getEnvAsInt("HISTORY_TOKEN_BUDGET", 3000),
			RequestTimeout:    getEnvAsDuration("LLM_REQUEST_TIMEOUT", 120*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
			SecureCookie:   getEnvAsBool("COOKIE_SECURE", true),
		},
		RateLimit: RateLimitConfig{
			ChatDailyLimit:  getEnvAsInt("CHAT_DAILY_LIMIT", 10),
			EmailDailyLimit: getEnvAsInt("EMAIL_DAILY_LIMIT", 2),
			ChargePolicy:    getEnv("CHAT_CHARGE_POLICY", "upfront"),
		},
		Knowledge: KnowledgeConfig{
			Scopes:   getEnvAsList("KNOWLEDGE_SCOPES", []string{"jonathan", "pablo"}),
			TopK:     getEnvAsInt("KNOWLEDGE_TOP_K", 5),
			SeedFile: getEnv("KNOWLEDGE_SEED_FILE", "data/knowledge.json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
