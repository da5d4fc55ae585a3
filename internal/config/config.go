package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port             string
	APIKey           string
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	CryptoPanicToken   string
	CryptoPanicBaseURL string
	NewsFetchLimit     int
	NewsCacheTTLSecs   int

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	ChatMaxHistory int

	PredictCommand      []string
	PredictTimeoutSecs  int
	SnapshotRefreshSecs int

	DataDir           string
	PriceDatasetPath  string
	SentimentDataPath string
	SnapshotPath      string
}

func Load() *Config {
	cfg := &Config{
		APIKey:           os.Getenv("API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CryptoPanicToken: os.Getenv("CRYPTOPANIC_API_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, conversation history disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.CryptoPanicToken == "" {
		log.Println("Warning: CRYPTOPANIC_API_TOKEN not set, news fetches will fail")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, chat and sentiment scoring disabled")
	}

	cfg.CryptoPanicBaseURL = strings.TrimSpace(os.Getenv("CRYPTOPANIC_BASE_URL"))

	cfg.NewsFetchLimit = 10
	if v := strings.TrimSpace(os.Getenv("NEWS_FETCH_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsFetchLimit = n
		}
	}

	cfg.NewsCacheTTLSecs = 300
	if v := strings.TrimSpace(os.Getenv("NEWS_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsCacheTTLSecs = n
		}
	}

	cfg.OpenAIBaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.deepseek.com"
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "deepseek-chat"
	}

	cfg.ChatMaxHistory = 20
	if v := strings.TrimSpace(os.Getenv("CHAT_MAX_HISTORY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChatMaxHistory = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("PREDICT_COMMAND")); v != "" {
		cfg.PredictCommand = strings.Fields(v)
	} else {
		log.Println("Warning: PREDICT_COMMAND not set, predictions use the saved snapshot only")
	}

	cfg.PredictTimeoutSecs = 60
	if v := strings.TrimSpace(os.Getenv("PREDICT_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PredictTimeoutSecs = n
		}
	}

	cfg.SnapshotRefreshSecs = 300
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_REFRESH_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SnapshotRefreshSecs = n
		}
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("DATA_DIR"))
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.PriceDatasetPath = filepath.Join(cfg.DataDir, "bitcoin_prices.csv")
	cfg.SentimentDataPath = filepath.Join(cfg.DataDir, "bitcoin_sentiment.csv")
	cfg.SnapshotPath = filepath.Join(cfg.DataDir, "prediction_snapshot.json")

	return cfg
}
