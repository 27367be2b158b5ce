package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 64, cfg.QueueDepth)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 50, cfg.FeedLen)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("ORDER_QUEUE_DEPTH", "128")
	t.Setenv("ORDER_SUBMIT_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 128, cfg.QueueDepth)
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Setenv("ORDER_QUEUE_DEPTH", "-1")
	t.Setenv("ORDER_SUBMIT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 64, cfg.QueueDepth)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
}
