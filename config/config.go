package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	DBPath           string
	APIBaseURL       string
	GitHubAPIURL     string
	GitHubToken      string
	SearchPerPage    int
	FetchTimeout     time.Duration
	FetchConcurrency int
	CachePolicy      string
	CacheTTL         time.Duration
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	port := GetEnv("PORT", "3000")

	AppConfig = &Config{
		Port:             port,
		Env:              GetEnv("ENV", "development"),
		DBPath:           GetEnv("DB_PATH", "./data/repo-browser.db"),
		APIBaseURL:       GetEnv("API_BASE_URL", "http://127.0.0.1:"+port),
		GitHubAPIURL:     GetEnv("GITHUB_API_URL", ""),
		GitHubToken:      GetEnv("GITHUB_TOKEN", ""),
		SearchPerPage:    GetEnvInt("SEARCH_PER_PAGE", 10),
		FetchTimeout:     GetEnvDuration("FETCH_TIMEOUT", 5*time.Second),
		FetchConcurrency: GetEnvInt("FETCH_CONCURRENCY", 3),
		CachePolicy:      GetEnv("CACHE_POLICY", "none"),
		CacheTTL:         GetEnvDuration("CACHE_TTL", 5*time.Minute),
	}

	if AppConfig.FetchConcurrency < 1 {
		log.Fatal("FETCH_CONCURRENCY must be at least 1")
	}
	if AppConfig.FetchTimeout <= 0 {
		log.Fatal("FETCH_TIMEOUT must be positive")
	}
	if AppConfig.GitHubToken == "" {
		log.Println("GITHUB_TOKEN is not set, using unauthenticated GitHub API rate limits")
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, value)
	}
	return n
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("%s must be a duration like 5s, got %q", key, value)
	}
	return d
}
