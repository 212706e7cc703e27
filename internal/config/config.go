package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI             string
	HuggingFace        string
	GoogleGemini       string
	MemoryCaptureTopic string
}

type AIConfig struct {
	// Fallback chain order: openai, then ollama, then huggingface. An entry
	// without credentials is skipped.
	OpenAIBaseURL     string
	OpenAIModel       string
	OllamaBaseURL     string
	OllamaModel       string
	HuggingFaceModel  string
	EmbeddingProvider string // "local", "ollama" or "gemini"
	EmbeddingModel    string
	DefaultLocale     string
	TokenBudget       int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:             getEnv("OPENAI_API_KEY", ""),
			HuggingFace:        getEnv("HUGGINGFACE_API_KEY", ""),
			GoogleGemini:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			MemoryCaptureTopic: getEnv("MEMORY_CAPTURE_TOPIC_NAME", "CAPTURE_CHAT_MEMORY"),
		},
		Ai: AIConfig{
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "qwen2.5"),
			HuggingFaceModel:  getEnv("HUGGINGFACE_MODEL", "Qwen/Qwen2.5-7B-Instruct"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			DefaultLocale:     getEnv("DEFAULT_LOCALE", "en-US"),
			TokenBudget:       getEnvAsInt("TURN_TOKEN_BUDGET", 2048),
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
