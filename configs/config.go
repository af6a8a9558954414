package config

import (
	"os"
	"strconv"
)

type Config struct {
	PostgresURI           string
	RedisURI              string
	RedisDB               int
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	LinkedinVersion       string
	FrontendURL           string
	SecretKey             string
	CookieName            string
	HTTPTimeoutSeconds    int
	DispatchConcurrency   int
	MissedPostGraceMins   int
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		TwitterConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
		TwitterConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
		LinkedinVersion:       getEnv("LINKEDIN_VERSION", "202405"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:             getEnv("SECRET_KEY", ""),
		CookieName:            getEnv("COOKIE_NAME", "postrelay_session"),
		HTTPTimeoutSeconds:    getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		DispatchConcurrency:   getEnvInt("DISPATCH_CONCURRENCY", 10),
		MissedPostGraceMins:   getEnvInt("MISSED_POST_GRACE_MINUTES", 10),
	}
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
