package config_test

import (
	"testing"
	"time"

	"github.com/DeafMist/federal-archive/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func clearAPIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ELASTICSEARCH_ADDR", "COLLECTION_SCOPE", "KAFKA_BROKERS", "KAFKA_CHANGES_TOPIC",
		"API_BIND_ADDR", "STORE_PAGE_SIZE", "API_SUMMARY_LENGTH", "JWT_SIGNING_KEY",
		"SESSION_TOKEN_TTL", "SESSION_IDLE_TTL", "ADMIN_EMAIL", "ADMIN_PASSWORD_HASH", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAPIDefaults(t *testing.T) {
	clearAPIEnv(t)

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, config.ScopeGlobal, cfg.CollectionScope)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "document_changes", cfg.ChangesTopic)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 1000, cfg.PageSize)
	require.Equal(t, 160, cfg.SummaryLength)
	require.Equal(t, 12*time.Hour, cfg.TokenTTL)
	require.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	require.Empty(t, cfg.AdminEmail)
	require.Empty(t, cfg.RedisURL)
}

func TestLoadAPIOverrides(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("COLLECTION_SCOPE", "per-identity")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("STORE_PAGE_SIZE", "250")
	t.Setenv("SESSION_TOKEN_TTL", "30m")
	t.Setenv("ADMIN_EMAIL", "admin@archive.gov")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("JWT_SIGNING_KEY", "k3y-for-tests")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, config.ScopePerIdentity, cfg.CollectionScope)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 250, cfg.PageSize)
	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, "admin@archive.gov", cfg.AdminEmail)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadAPIRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown scope", key: "COLLECTION_SCOPE", val: "shared"},
		{name: "page size too large", key: "STORE_PAGE_SIZE", val: "20000"},
		{name: "zero idle ttl", key: "SESSION_IDLE_TTL", val: "0s"},
		{name: "negative summary length", key: "API_SUMMARY_LENGTH", val: "-1"},
		{name: "admin email without hash", key: "ADMIN_EMAIL", val: "admin@archive.gov"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAPIEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := config.LoadAPI()
			require.Error(t, err)
		})
	}
}

func TestLoadAPIRefusesDevSigningKeyWithAdmin(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("ADMIN_EMAIL", "admin@archive.gov")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	_, err := config.LoadAPI()
	require.ErrorContains(t, err, "JWT_SIGNING_KEY")

	t.Setenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
	_, err = config.LoadAPI()
	require.Error(t, err)

	t.Setenv("JWT_SIGNING_KEY", "k3y-for-tests")
	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, "k3y-for-tests", cfg.JWTSigningKey)
}

func TestLoadWorker(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("KAFKA_INGEST_TOPIC", "custom_raw")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "custom_raw", cfg.IngestTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
	require.Equal(t, "document_changes", cfg.ChangesTopic)
}
