package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/coins")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "postgres://localhost/coins", cfg.DatabaseURL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}
