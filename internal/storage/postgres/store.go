// Package postgres implements the durable ledger store on top of
// database/sql with the lib/pq driver. Entries live in one append-only
// table keyed by a BIGSERIAL sequence; there is no UPDATE or DELETE
// anywhere in this package.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/communityhq/coin-ledger/internal/interfaces"
	"github.com/communityhq/coin-ledger/internal/models"
)

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

// EnsureSchema creates the entries table and the (account_id, id)
// index used by the latest-entry lookup and the ranking query.
func (p *PostgresLedgerStore) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id            BIGSERIAL PRIMARY KEY,
		account_id    TEXT        NOT NULL,
		operation     TEXT        NOT NULL,
		amount        NUMERIC     NOT NULL CHECK (amount > 0),
		balance_after NUMERIC     NOT NULL CHECK (balance_after >= 0),
		reference     TEXT        NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS ledger_entries_account_id_id_idx
		ON ledger_entries (account_id, id DESC);`

	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

const insertEntry = `INSERT INTO ledger_entries (account_id, operation, amount, balance_after, reference, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

func (p *PostgresLedgerStore) Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error) {
	err := p.db.QueryRowContext(ctx, insertEntry,
		entry.AccountID, entry.Operation, entry.Amount, entry.BalanceAfter, entry.Reference, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("insert ledger entry: %w", err)
	}
	return entry, nil
}

// AppendPair inserts the debit and the credit inside one transaction;
// any failure rolls back both inserts.
func (p *PostgresLedgerStore) AppendPair(ctx context.Context, debit, credit models.LedgerEntry) (models.LedgerEntry, models.LedgerEntry, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.LedgerEntry{}, models.LedgerEntry{}, fmt.Errorf("begin transfer tx: %w", err)
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	err = dbTx.QueryRowContext(ctx, insertEntry,
		debit.AccountID, debit.Operation, debit.Amount, debit.BalanceAfter, debit.Reference, debit.CreatedAt,
	).Scan(&debit.ID)
	if err != nil {
		return models.LedgerEntry{}, models.LedgerEntry{}, fmt.Errorf("insert debit entry: %w", err)
	}

	err = dbTx.QueryRowContext(ctx, insertEntry,
		credit.AccountID, credit.Operation, credit.Amount, credit.BalanceAfter, credit.Reference, credit.CreatedAt,
	).Scan(&credit.ID)
	if err != nil {
		return models.LedgerEntry{}, models.LedgerEntry{}, fmt.Errorf("insert credit entry: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		return models.LedgerEntry{}, models.LedgerEntry{}, fmt.Errorf("commit transfer tx: %w", err)
	}
	return debit, credit, nil
}

func (p *PostgresLedgerStore) Latest(ctx context.Context, accountID string) (*models.LedgerEntry, error) {
	const query = `SELECT id, account_id, operation, amount, balance_after, reference, created_at
	FROM ledger_entries
	WHERE account_id = $1
	ORDER BY id DESC
	LIMIT 1`

	var entry models.LedgerEntry
	err := p.db.QueryRowContext(ctx, query, accountID).Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.Operation,
		&entry.Amount,
		&entry.BalanceAfter,
		&entry.Reference,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest entry: %w", err)
	}
	return &entry, nil
}

// LatestPerAccount is a latest-row-per-group query: the window
// function picks each account's highest-ID entry, then the outer
// select orders by the balance snapshot. The (account_id, id) index
// drives the partition scan.
func (p *PostgresLedgerStore) LatestPerAccount(ctx context.Context, limit int) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, operation, amount, balance_after, reference, created_at
	FROM (
		SELECT *, ROW_NUMBER() OVER (PARTITION BY account_id ORDER BY id DESC) AS rn
		FROM ledger_entries
	) latest
	WHERE rn = 1
	ORDER BY balance_after DESC, account_id ASC
	LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select latest per account: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Operation,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.Reference,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan latest per account: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest per account: %w", err)
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
