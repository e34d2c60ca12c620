package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, email, full_name, phone, role, notification_preference, password_hash, balance, is_active, refresh_token_hash, refresh_token_expires_at, created_at, last_updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert domain.Account to models.Account for DB storage
func toModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountID:              d.AccountID,
		Email:                  strings.ToLower(d.Email),
		FullName:               d.FullName,
		Phone:                  sql.NullString{String: d.Phone, Valid: d.Phone != ""},
		Role:                   string(d.Role),
		NotificationPreference: string(d.NotificationPreference),
		PasswordHash:           d.PasswordHash,
		Balance:                d.Balance,
		IsActive:               d.IsActive,
		RefreshTokenHash:       sql.NullString{String: d.RefreshTokenHash, Valid: d.RefreshTokenHash != ""},
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
	if d.RefreshTokenExpiresAt != nil {
		m.RefreshTokenExpiresAt = sql.NullTime{Time: *d.RefreshTokenExpiresAt, Valid: true}
	}
	return m
}

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountID:              m.AccountID,
		Email:                  m.Email,
		FullName:               m.FullName,
		Phone:                  m.Phone.String,
		Role:                   domain.Role(m.Role),
		NotificationPreference: domain.NotificationPreference(m.NotificationPreference),
		PasswordHash:           m.PasswordHash,
		Balance:                m.Balance,
		IsActive:               m.IsActive,
		RefreshTokenHash:       m.RefreshTokenHash.String,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
	if m.RefreshTokenExpiresAt.Valid {
		expiresAt := m.RefreshTokenExpiresAt.Time
		d.RefreshTokenExpiresAt = &expiresAt
	}
	return d
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Email,
		&m.FullName,
		&m.Phone,
		&m.Role,
		&m.NotificationPreference,
		&m.PasswordHash,
		&m.Balance,
		&m.IsActive,
		&m.RefreshTokenHash,
		&m.RefreshTokenExpiresAt,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d := toDomainAccount(m)
	return &d, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Email,
		m.FullName,
		m.Phone,
		m.Role,
		m.NotificationPreference,
		m.PasswordHash,
		m.Balance,
		m.IsActive,
		m.RefreshTokenHash,
		m.RefreshTokenExpiresAt,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s or email %s already exists", apperrors.ErrDuplicate, m.AccountID, m.Email)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}

// FindAccountByEmail retrieves an account by its email address.
func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return account, nil
}

// UpdateAccountProfile overwrites the editable profile columns.
func (r *PgxAccountRepository) UpdateAccountProfile(ctx context.Context, accountID string, profile domain.AccountProfile, now time.Time) error {
	query := `
		UPDATE accounts
		SET full_name = $2, phone = $3, notification_preference = $4, last_updated_at = $5
		WHERE account_id = $1;
	`
	phone := sql.NullString{String: profile.Phone, Valid: profile.Phone != ""}
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, profile.FullName, phone, string(profile.NotificationPreference), now)
	if err != nil {
		return fmt.Errorf("failed to update profile for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetRefreshToken stores or clears the refresh token hash of an account.
func (r *PgxAccountRepository) SetRefreshToken(ctx context.Context, accountID string, tokenHash string, expiresAt time.Time, now time.Time) error {
	hash := sql.NullString{String: tokenHash, Valid: tokenHash != ""}
	expiry := sql.NullTime{Time: expiresAt, Valid: tokenHash != ""}

	query := `
		UPDATE accounts
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, last_updated_at = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, hash, expiry, now)
	if err != nil {
		return fmt.Errorf("failed to store refresh token for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetBalance returns the persisted cash balance of an account.
func (r *PgxAccountRepository) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE account_id = $1;`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// CompareAndSetBalance writes newBalance only when the row still holds expected.
func (r *PgxAccountRepository) CompareAndSetBalance(ctx context.Context, accountID string, expected, newBalance decimal.Decimal, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $3, last_updated_at = $4
		WHERE account_id = $1 AND balance = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, expected, newBalance, now)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched: either the account is gone or its balance moved.
	if _, err := r.GetBalance(ctx, accountID); err != nil {
		return err
	}
	return apperrors.ErrConflict
}
