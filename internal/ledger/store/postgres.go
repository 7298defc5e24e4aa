package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"credledger/internal/ledger/codec"
	"credledger/pkg/domain"
	"credledger/pkg/platform/sentinel"
	txcontext "credledger/pkg/platform/tx"
)

// PostgresStore persists accounts in the ledger_accounts table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectAccount = `
	SELECT address, discriminator, data, created_at, updated_at
	FROM ledger_accounts
	WHERE address = $1
`

func (s *PostgresStore) Get(ctx context.Context, addr domain.Pubkey) (*Account, error) {
	return s.get(ctx, selectAccount, addr)
}

// GetForUpdate row-locks the account when called inside a transaction.
func (s *PostgresStore) GetForUpdate(ctx context.Context, addr domain.Pubkey) (*Account, error) {
	if _, ok := txcontext.From(ctx); !ok {
		return s.get(ctx, selectAccount, addr)
	}
	return s.get(ctx, selectAccount+" FOR UPDATE", addr)
}

func (s *PostgresStore) get(ctx context.Context, query string, addr domain.Pubkey) (*Account, error) {
	acct, err := scanAccount(s.execer(ctx).QueryRowContext(ctx, query, addr.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
		}
		if isConnectionFailure(err) {
			return nil, fmt.Errorf("get account: %w: %w", sentinel.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

func (s *PostgresStore) Create(ctx context.Context, acct *Account) error {
	if acct == nil {
		return fmt.Errorf("account is required")
	}
	query := `
		INSERT INTO ledger_accounts (address, discriminator, data, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`
	_, err := s.execer(ctx).ExecContext(ctx, query, acct.Address.String(), acct.Discriminator[:], acct.Data)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, acct *Account) error {
	if acct == nil {
		return fmt.Errorf("account is required")
	}
	query := `
		UPDATE ledger_accounts
		SET data = $2, updated_at = now()
		WHERE address = $1 AND discriminator = $3
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, acct.Address.String(), acct.Data, acct.Discriminator[:])
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", acct.Address, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListByDiscriminator(ctx context.Context, disc codec.Discriminator) ([]*Account, error) {
	query := `
		SELECT address, discriminator, data, created_at, updated_at
		FROM ledger_accounts
		WHERE discriminator = $1
		ORDER BY address
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, disc[:])
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

type accountRow interface {
	Scan(dest ...any) error
}

func scanAccount(row accountRow) (*Account, error) {
	var (
		acct    Account
		address string
		disc    []byte
	)
	if err := row.Scan(&address, &disc, &acct.Data, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return nil, err
	}
	addr, err := domain.ParsePubkey(address)
	if err != nil {
		return nil, fmt.Errorf("stored address %q: %w", address, err)
	}
	if len(disc) != codec.DiscriminatorLength {
		return nil, fmt.Errorf("stored discriminator has %d bytes", len(disc))
	}
	acct.Address = addr
	copy(acct.Discriminator[:], disc)
	return &acct, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isConnectionFailure reports errors where the statement never reached the
// server or the connection dropped before a reply.
func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
