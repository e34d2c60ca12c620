package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, account_id, fund_id, kind, amount, status, description, created_at, updated_at, completed_at`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func toDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		FundID:        m.FundID,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        m.Amount,
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.CompletedAt.Valid {
		completedAt := m.CompletedAt.Time
		d.CompletedAt = &completedAt
	}
	return d
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.FundID,
		&m.Kind,
		&m.Amount,
		&m.Status,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CompletedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return toDomainTransaction(m), nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// CreateTransaction inserts a new ledger entry.
func (r *PgxLedgerRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.Pool.Exec(ctx, query,
		txn.TransactionID,
		txn.AccountID,
		txn.FundID,
		string(txn.Kind),
		txn.Amount,
		string(txn.Status),
		txn.Description,
		txn.CreatedAt,
		txn.UpdatedAt,
		txn.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return fmt.Errorf("failed to create transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateTransactionStatus locks the row, checks the transition and writes the new status.
func (r *PgxLedgerRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, at time.Time) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = r.Rollback(ctx, tx)
		}
	}()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	if !domain.TransactionStatus(current).CanTransitionTo(status) {
		err = fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusTransition, current, status)
		return err
	}

	var completedAt *time.Time
	if status == domain.StatusCompleted {
		completedAt = &at
	}
	_, err = tx.Exec(ctx,
		`UPDATE transactions SET status = $2, updated_at = $3, completed_at = $4 WHERE transaction_id = $1;`,
		transactionID, string(status), at, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a single ledger entry.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// QueryTransactions returns one page of an account's history plus the total match count.
func (r *PgxLedgerRepository) QueryTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: offset %d limit %d", apperrors.ErrValidation, offset, limit)
	}
	filterClause := `WHERE account_id = $1`
	args := []interface{}{accountID}
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		filterClause += " AND kind = $" + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		filterClause += " AND status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+filterClause+`;`, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for account %s: %w", accountID, err)
	}
	if total == 0 || offset >= total {
		return []domain.Transaction{}, total, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions ` + filterClause +
		` ORDER BY created_at DESC, transaction_id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2) + `;`
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListRecentTransactions returns the newest entries across all accounts.
func (r *PgxLedgerRepository) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC, transaction_id DESC LIMIT $1;`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	return collectTransactions(rows)
}
