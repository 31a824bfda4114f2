package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, "kafka", cfg.Messaging.Driver)
	assert.Equal(t, "pos.events", cfg.Messaging.Kafka.Topic)
	assert.Equal(t, "dinehall-worker", cfg.Messaging.ConsumerGroup)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "dinehall", cfg.Observability.ServiceName)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9091")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_WRITER_DSN", "file:test.db")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("WORKER_CONCURRENCY", "8")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.WriterDSN)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Messaging.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Messaging.Workers.Concurrency)
}

func TestDisabledSubsystemsFallBackToNoop(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
}

func TestReaderDSNFallsBackToWriter(t *testing.T) {
	t.Setenv("DB_WRITER_DSN", "postgres://writer:5432/pos")
	t.Setenv("DB_READER_DSN", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestInvalidValues(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "-1")
		_, err := New()
		require.Error(t, err)
	})

	t.Run("unknown cache driver", func(t *testing.T) {
		t.Setenv("CACHE_DRIVER", "memcached")
		_, err := New()
		require.Error(t, err)
	})

	t.Run("unknown messaging driver", func(t *testing.T) {
		t.Setenv("MESSAGING_DRIVER", "rabbitmq")
		_, err := New()
		require.Error(t, err)
	})

	t.Run("empty kafka topic", func(t *testing.T) {
		t.Setenv("KAFKA_TOPIC", "")
		_, err := New()
		require.Error(t, err)
	})
}
