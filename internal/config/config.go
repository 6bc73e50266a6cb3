package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	Model    ModelConfig
	Database DatabaseConfig
	Artifact ArtifactConfig
}

type ModelConfig struct {
	// Provider selects the backend: gemini, openai, or fake.
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the API endpoint for openai-compatible servers.
	BaseURL string

	RPS   float64
	Burst int

	RetryAttempts int
	RetryBackoff  time.Duration

	SimpleTimeout   time.Duration
	DetailedTimeout time.Duration
	ChatTimeout     time.Duration
}

type DatabaseConfig struct {
	// DSN empty disables history persistence.
	DSN string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	model, err := loadModelConfig(env)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:      *port,
		Env:       env,
		LogLevel:  firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		LogFormat: resolveLogFormat(env),
		Model:     model,
		Database: DatabaseConfig{
			DSN: strings.TrimSpace(os.Getenv("HISTORY_PG_DSN")),
		},
		Artifact: loadArtifactConfig(env),
	}, nil
}

func loadModelConfig(env string) (ModelConfig, error) {
	provider := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("MODEL_PROVIDER")), "gemini"))
	switch provider {
	case "gemini", "openai", "fake":
	default:
		return ModelConfig{}, fmt.Errorf("config: unknown MODEL_PROVIDER %q", provider)
	}

	apiKey := strings.TrimSpace(os.Getenv("MODEL_API_KEY"))
	if apiKey == "" {
		switch provider {
		case "gemini":
			apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		case "openai":
			apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
	}
	if apiKey == "" && provider != "fake" {
		return ModelConfig{}, fmt.Errorf("config: api key is required for provider %q", provider)
	}

	model := strings.TrimSpace(os.Getenv("MODEL_NAME"))
	if model == "" {
		switch provider {
		case "gemini":
			model = "gemini-2.0-flash"
		case "openai":
			model = "gpt-4o-mini"
		}
	}

	return ModelConfig{
		Provider:        provider,
		Model:           model,
		APIKey:          apiKey,
		BaseURL:         strings.TrimSpace(os.Getenv("MODEL_BASE_URL")),
		RPS:             envFloat("MODEL_RPS", 2),
		Burst:           envInt("MODEL_BURST", 4),
		RetryAttempts:   envInt("MODEL_RETRY_ATTEMPTS", 2),
		RetryBackoff:    envDuration("MODEL_RETRY_BACKOFF", 300*time.Millisecond),
		SimpleTimeout:   envDuration("MODEL_SIMPLE_TIMEOUT", 30*time.Second),
		DetailedTimeout: envDuration("MODEL_DETAILED_TIMEOUT", 90*time.Second),
		ChatTimeout:     envDuration("MODEL_CHAT_TIMEOUT", 30*time.Second),
	}, nil
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "medimind-reports"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func resolveLogFormat(env string) string {
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format != "" {
		return format
	}
	if strings.EqualFold(env, "local") {
		return "console"
	}
	return "json"
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
