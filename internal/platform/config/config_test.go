package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PROGRAM_ID", "")

	cfg := FromEnv()
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, DefaultProgramID, cfg.ProgramID)
	assert.Equal(t, "ledger.events", cfg.Kafka.EventsTopic)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.StoreBackend = StorePostgres
	cfg.Database.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.ZKVerifier = "groth16"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.Kafka.StatusProjectorGroup = "credledger-status"
	cfg.Kafka.Brokers = "localhost:9092"
	cfg.Redis.URL = ""
	assert.Error(t, cfg.Validate())

	cfg.Redis.URL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())

	cfg = FromEnv()
	cfg.TrustedProxies = "10.0.0.0/8, lb.internal"
	assert.ErrorContains(t, cfg.Validate(), "TRUSTED_PROXIES")

	cfg.TrustedProxies = "10.0.0.0/8, 192.0.2.10"
	assert.NoError(t, cfg.Validate())

	cfg = FromEnv()
	cfg.TraceExporter = "jaeger"
	assert.ErrorContains(t, cfg.Validate(), "TRACE_EXPORTER")
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_EVENTS_TOPIC=ledger.test\n"), 0o600))
	t.Setenv("LEDGER_EVENTS_TOPIC", "")
	require.NoError(t, os.Unsetenv("LEDGER_EVENTS_TOPIC"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ledger.test", cfg.Kafka.EventsTopic)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
