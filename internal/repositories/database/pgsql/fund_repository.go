package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fundColumns = `fund_id, name, minimum_amount, category, description, is_active, created_at, last_updated_at`

type PgxFundRepository struct {
	BaseRepository
}

func newPgxFundRepository(pool *pgxpool.Pool) portsrepo.FundRepositoryFacade {
	return &PgxFundRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FundRepositoryFacade = (*PgxFundRepository)(nil)

func toDomainFund(m models.Fund) domain.Fund {
	return domain.Fund{
		FundID:        m.FundID,
		Name:          m.Name,
		MinimumAmount: m.MinimumAmount,
		Category:      domain.FundCategory(m.Category),
		Description:   m.Description,
		IsActive:      m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func scanFund(row pgx.Row) (domain.Fund, error) {
	var m models.Fund
	err := row.Scan(&m.FundID, &m.Name, &m.MinimumAmount, &m.Category, &m.Description, &m.IsActive, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		return domain.Fund{}, err
	}
	return toDomainFund(m), nil
}

// SaveFund inserts a catalog entry.
func (r *PgxFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	query := `INSERT INTO funds (` + fundColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.Pool.Exec(ctx, query,
		fund.FundID,
		fund.Name,
		fund.MinimumAmount,
		string(fund.Category),
		fund.Description,
		fund.IsActive,
		fund.CreatedAt,
		fund.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fund %d already exists", apperrors.ErrDuplicate, fund.FundID)
		}
		return fmt.Errorf("failed to save fund %d: %w", fund.FundID, err)
	}
	return nil
}

// FindFundByID retrieves a fund by its ID.
func (r *PgxFundRepository) FindFundByID(ctx context.Context, fundID int) (*domain.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM funds WHERE fund_id = $1;`
	fund, err := scanFund(r.Pool.QueryRow(ctx, query, fundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fund %d: %w", fundID, err)
	}
	return &fund, nil
}

// ListFunds returns the catalog ordered by ID.
func (r *PgxFundRepository) ListFunds(ctx context.Context, activeOnly bool) ([]domain.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM funds WHERE ($1 = FALSE OR is_active = TRUE) ORDER BY fund_id;`
	rows, err := r.Pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	funds := []domain.Fund{}
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund row: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund rows: %w", err)
	}
	return funds, nil
}
