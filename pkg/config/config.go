package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GigaChat GigaChatConfig
	Matching MatchingConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

// MatchingConfig bounds the matching pipeline. Defaults mirror the product
// guarantees: at most 100 rule-stage candidates, 50 relaxed candidates, 20
// candidates forwarded to the ranking prompt, 5 recommendations.
type MatchingConfig struct {
	CandidateLimit       int
	RelaxedLimit         int
	PromptCandidates     int
	TopK                 int
	LLMTimeout           time.Duration
	ReasoningConcurrency int
}

func Load() (*Config, error) {
	// Optional .env; plain environment variables win when it is absent
	// (useful for Docker/K8s).
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 30)
	llmTimeout := getEnvInt("MATCHING_LLM_TIMEOUT_SECONDS", 60)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "grant_navi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		Matching: MatchingConfig{
			CandidateLimit:       getEnvInt("MATCHING_CANDIDATE_LIMIT", 100),
			RelaxedLimit:         getEnvInt("MATCHING_RELAXED_LIMIT", 50),
			PromptCandidates:     getEnvInt("MATCHING_PROMPT_CANDIDATES", 20),
			TopK:                 getEnvInt("MATCHING_TOP_K", 5),
			LLMTimeout:           time.Duration(llmTimeout) * time.Second,
			ReasoningConcurrency: getEnvInt("MATCHING_REASONING_CONCURRENCY", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
