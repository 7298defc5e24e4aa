//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"credledger/internal/platform/config"
	"credledger/internal/platform/database"
	"credledger/migrations"
)

// ledgerTables are truncated between tests, children first.
var ledgerTables = []string{"outbox", "ledger_accounts"}

type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *database.Pool
	DB        *sql.DB
}

func startPostgres(t *testing.T) (*PostgresContainer, error) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("credledger"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("run postgres: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}

	// Same pool settings the server uses, sized for concurrent issuance tests.
	pool, err := database.New(ctx, config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    32,
		MaxIdleConns:    8,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		_ = pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool, DB: pool.DB()}, nil
}

// TruncateAll empties every ledger table in one statement.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	stmt := "TRUNCATE TABLE "
	for i, table := range ledgerTables {
		if i > 0 {
			stmt += ", "
		}
		stmt += table
	}
	if _, err := p.DB.ExecContext(ctx, stmt+" RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("truncate ledger tables: %w", err)
	}
	return nil
}
