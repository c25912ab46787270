package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// devSigningKey is the fallback token key for local runs without an administrator.
const devSigningKey = "dev-secret-key-change-in-production"

// Collection scopes select where documents live.
const (
	ScopeGlobal      = "global"
	ScopePerIdentity = "per-identity"
)

// Common contains store and change-feed parameters shared by every service.
type Common struct {
	ElasticsearchAddr string
	CollectionScope   string
	KafkaBrokers      []string
	ChangesTopic      string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr          string
	PageSize          int
	SummaryLength     int
	JWTSigningKey     string
	TokenTTL          time.Duration
	SessionIdleTTL    time.Duration
	AdminEmail        string
	AdminPasswordHash string
	RedisURL          string
}

// Worker holds configuration for the Kafka -> Elasticsearch ingest worker.
type Worker struct {
	Common
	IngestTopic    string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

var dotenvOnce sync.Once

// loadDotEnv reads a .env file from the working directory when one exists. Values
// already present in the environment win.
func loadDotEnv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

func loadCommon() (Common, error) {
	c := Common{
		ElasticsearchAddr: getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		CollectionScope:   getEnv("COLLECTION_SCOPE", ScopeGlobal),
		KafkaBrokers:      splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		ChangesTopic:      getEnv("KAFKA_CHANGES_TOPIC", "document_changes"),
	}

	if c.CollectionScope != ScopeGlobal && c.CollectionScope != ScopePerIdentity {
		return Common{}, fmt.Errorf("COLLECTION_SCOPE must be %q or %q", ScopeGlobal, ScopePerIdentity)
	}
	if len(c.KafkaBrokers) == 0 {
		return Common{}, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	loadDotEnv()

	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:            common,
		BindAddr:          getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		PageSize:          getInt("STORE_PAGE_SIZE", 1000),
		SummaryLength:     getInt("API_SUMMARY_LENGTH", 160),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", devSigningKey),
		TokenTTL:          getDuration("SESSION_TOKEN_TTL", "12h"),
		SessionIdleTTL:    getDuration("SESSION_IDLE_TTL", "30m"),
		AdminEmail:        strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
	}

	if c.PageSize <= 0 || c.PageSize > 10_000 {
		return nil, fmt.Errorf("STORE_PAGE_SIZE must be between 1 and 10000")
	}
	if c.SummaryLength < 0 {
		return nil, fmt.Errorf("API_SUMMARY_LENGTH cannot be negative")
	}
	if c.TokenTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TOKEN_TTL must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPasswordHash == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set together")
	}
	if c.AdminEmail != "" && c.JWTSigningKey == devSigningKey {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be set when ADMIN_EMAIL is configured")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	loadDotEnv()

	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:         common,
		IngestTopic:    getEnv("KAFKA_INGEST_TOPIC", "documents_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "archive-ingest"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
