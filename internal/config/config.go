package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server process needs from the
// environment. A .env file in the working directory is loaded first
// when present; real environment variables win over it.
type Config struct {
	HTTPAddr     string
	DatabaseURL  string
	KafkaBrokers []string
}

func Load() Config {
	// Missing .env is fine; containers set the environment directly.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
