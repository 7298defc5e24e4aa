package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"credledger/pkg/platform/middleware/metadata"
)

// DefaultProgramID is the address of the deployed credential program.
const DefaultProgramID = "5AFgFmdQthc3DZKmygrsGZkNnCN9JYMefADiAvNXpYCg"

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Signature verifiers.
const (
	VerifierNone  = "none"
	VerifierEdDSA = "eddsa"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	ProgramID      string
	StoreBackend   string
	ZKVerifier     string
	TxTimeout      time.Duration
	RequestTimeout time.Duration
	// MaxTokenAge caps how far in the future a signed request may expire.
	MaxTokenAge time.Duration
	// TrustedProxies lists CIDRs allowed to set X-Forwarded-For.
	TrustedProxies string
	// TraceExporter is "none" or "stdout".
	TraceExporter string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers            string
	EventsTopic        string
	Acks               string
	Retries            int
	DeliveryTimeout    time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	// Processed outbox entries older than OutboxRetention are swept every
	// OutboxCleanupInterval.
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration
	// StatusProjectorGroup enables the status cache projector when set.
	StatusProjectorGroup string
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (Server, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load env file: %w", err)
	}
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           getEnv("ADDR", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "local"),
		ProgramID:      getEnv("PROGRAM_ID", DefaultProgramID),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		ZKVerifier:     strings.ToLower(getEnv("ZK_VERIFIER", VerifierNone)),
		TxTimeout:      getDuration("TX_TIMEOUT", 5*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 15*time.Second),
		MaxTokenAge:    getDuration("MAX_TOKEN_AGE", 5*time.Minute),
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		TraceExporter:  strings.ToLower(getEnv("TRACE_EXPORTER", "none")),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:               os.Getenv("KAFKA_BROKERS"),
			EventsTopic:           getEnv("LEDGER_EVENTS_TOPIC", "ledger.events"),
			Acks:                  getEnv("KAFKA_ACKS", "all"),
			Retries:               getInt("KAFKA_RETRIES", 3),
			DeliveryTimeout:       getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
			OutboxPollInterval:    getDuration("OUTBOX_POLL_INTERVAL", 250*time.Millisecond),
			OutboxBatchSize:       getInt("OUTBOX_BATCH_SIZE", 100),
			OutboxRetention:       getDuration("OUTBOX_RETENTION", 7*24*time.Hour),
			OutboxCleanupInterval: getDuration("OUTBOX_CLEANUP_INTERVAL", time.Hour),
			StatusProjectorGroup:  os.Getenv("STATUS_PROJECTOR_GROUP"),
		},
	}
}

// Validate rejects combinations the server cannot start with.
func (s Server) Validate() error {
	switch s.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if s.Database.URL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.StoreBackend)
	}
	if s.Kafka.StatusProjectorGroup != "" && (s.Kafka.Brokers == "" || s.Redis.URL == "") {
		return fmt.Errorf("STATUS_PROJECTOR_GROUP requires KAFKA_BROKERS and REDIS_URL")
	}
	switch s.ZKVerifier {
	case VerifierNone, VerifierEdDSA:
	default:
		return fmt.Errorf("unknown ZK_VERIFIER %q", s.ZKVerifier)
	}
	switch s.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown TRACE_EXPORTER %q", s.TraceExporter)
	}
	if _, err := metadata.ParseTrustedProxies(s.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
