package mongodb

import (
	"fmt"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ==================== Account models ====================

type accountModel struct {
	ID                     string          `bson:"_id"`
	Email                  string          `bson:"email"`
	FullName               string          `bson:"full_name"`
	Phone                  string          `bson:"phone,omitempty"`
	Role                   string          `bson:"role"`
	NotificationPreference string          `bson:"notification_preference"`
	PasswordHash           string          `bson:"password_hash"`
	Balance                bson.Decimal128 `bson:"balance"`
	IsActive               bool            `bson:"is_active"`
	RefreshTokenHash       string          `bson:"refresh_token_hash,omitempty"`
	RefreshTokenExpiresAt  *time.Time      `bson:"refresh_token_expires_at,omitempty"`
	CreatedAt              time.Time       `bson:"created_at"`
	LastUpdatedAt          time.Time       `bson:"last_updated_at"`
}

func toAccountModel(a domain.Account) (*accountModel, error) {
	balance, err := toDecimal128(a.Balance)
	if err != nil {
		return nil, err
	}
	return &accountModel{
		ID:                     a.AccountID,
		Email:                  a.Email,
		FullName:               a.FullName,
		Phone:                  a.Phone,
		Role:                   string(a.Role),
		NotificationPreference: string(a.NotificationPreference),
		PasswordHash:           a.PasswordHash,
		Balance:                balance,
		IsActive:               a.IsActive,
		RefreshTokenHash:       a.RefreshTokenHash,
		RefreshTokenExpiresAt:  a.RefreshTokenExpiresAt,
		CreatedAt:              a.CreatedAt,
		LastUpdatedAt:          a.LastUpdatedAt,
	}, nil
}

func fromAccountModel(m *accountModel) (*domain.Account, error) {
	balance, err := fromDecimal128(m.Balance)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		AccountID:              m.ID,
		Email:                  m.Email,
		FullName:               m.FullName,
		Phone:                  m.Phone,
		Role:                   domain.Role(m.Role),
		NotificationPreference: domain.NotificationPreference(m.NotificationPreference),
		PasswordHash:           m.PasswordHash,
		Balance:                balance,
		IsActive:               m.IsActive,
		RefreshTokenHash:       m.RefreshTokenHash,
		RefreshTokenExpiresAt:  m.RefreshTokenExpiresAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}, nil
}

// ==================== Fund models ====================

type fundModel struct {
	ID            int             `bson:"_id"`
	Name          string          `bson:"name"`
	MinimumAmount bson.Decimal128 `bson:"minimum_amount"`
	Category      string          `bson:"category"`
	Description   string          `bson:"description"`
	IsActive      bool            `bson:"is_active"`
	CreatedAt     time.Time       `bson:"created_at"`
	LastUpdatedAt time.Time       `bson:"last_updated_at"`
}

func toFundModel(f domain.Fund) (*fundModel, error) {
	minimum, err := toDecimal128(f.MinimumAmount)
	if err != nil {
		return nil, err
	}
	return &fundModel{
		ID:            f.FundID,
		Name:          f.Name,
		MinimumAmount: minimum,
		Category:      string(f.Category),
		Description:   f.Description,
		IsActive:      f.IsActive,
		CreatedAt:     f.CreatedAt,
		LastUpdatedAt: f.LastUpdatedAt,
	}, nil
}

func fromFundModel(m *fundModel) (domain.Fund, error) {
	minimum, err := fromDecimal128(m.MinimumAmount)
	if err != nil {
		return domain.Fund{}, err
	}
	return domain.Fund{
		FundID:        m.ID,
		Name:          m.Name,
		MinimumAmount: minimum,
		Category:      domain.FundCategory(m.Category),
		Description:   m.Description,
		IsActive:      m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}, nil
}

// ==================== Subscription models ====================

type subscriptionModel struct {
	ID           string          `bson:"_id"`
	AccountID    string          `bson:"account_id"`
	FundID       int             `bson:"fund_id"`
	Amount       bson.Decimal128 `bson:"amount"`
	IsActive     bool            `bson:"is_active"`
	SubscribedAt time.Time       `bson:"subscribed_at"`
	CancelledAt  *time.Time      `bson:"cancelled_at,omitempty"`
}

func toSubscriptionModel(s domain.Subscription) (*subscriptionModel, error) {
	amount, err := toDecimal128(s.Amount)
	if err != nil {
		return nil, err
	}
	return &subscriptionModel{
		ID:           s.SubscriptionID,
		AccountID:    s.AccountID,
		FundID:       s.FundID,
		Amount:       amount,
		IsActive:     s.IsActive,
		SubscribedAt: s.SubscribedAt,
		CancelledAt:  s.CancelledAt,
	}, nil
}

func fromSubscriptionModel(m *subscriptionModel) (domain.Subscription, error) {
	amount, err := fromDecimal128(m.Amount)
	if err != nil {
		return domain.Subscription{}, err
	}
	return domain.Subscription{
		SubscriptionID: m.ID,
		AccountID:      m.AccountID,
		FundID:         m.FundID,
		Amount:         amount,
		IsActive:       m.IsActive,
		SubscribedAt:   m.SubscribedAt,
		CancelledAt:    m.CancelledAt,
	}, nil
}

// ==================== Transaction models ====================

type transactionModel struct {
	ID          string          `bson:"_id"`
	AccountID   string          `bson:"account_id"`
	FundID      int             `bson:"fund_id"`
	Kind        string          `bson:"kind"`
	Amount      bson.Decimal128 `bson:"amount"`
	Status      string          `bson:"status"`
	Description string          `bson:"description"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
	CompletedAt *time.Time      `bson:"completed_at,omitempty"`
}

func toTransactionModel(t domain.Transaction) (*transactionModel, error) {
	amount, err := toDecimal128(t.Amount)
	if err != nil {
		return nil, err
	}
	return &transactionModel{
		ID:          t.TransactionID,
		AccountID:   t.AccountID,
		FundID:      t.FundID,
		Kind:        string(t.Kind),
		Amount:      amount,
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}, nil
}

func fromTransactionModel(m *transactionModel) (domain.Transaction, error) {
	amount, err := fromDecimal128(m.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		TransactionID: m.ID,
		AccountID:     m.AccountID,
		FundID:        m.FundID,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        amount,
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CompletedAt:   m.CompletedAt,
	}, nil
}

// ==================== Decimal helpers ====================

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("funds/mongo: encode decimal %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("funds/mongo: decode decimal %s: %w", v.String(), err)
	}
	return d, nil
}
