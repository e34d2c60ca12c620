package mongodb

import (
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDecimal128KeepsExactAmounts(t *testing.T) {
	for _, raw := range []string{"0", "500000", "75000.50", "0.01", "123456789012.34"} {
		d := decimal.RequireFromString(raw)
		v, err := toDecimal128(d)
		require.NoError(t, err)
		back, err := fromDecimal128(v)
		require.NoError(t, err)
		assert.True(t, d.Equal(back), "%s came back as %s", raw, back)
	}
}

func TestTransactionModel_CompletedAtOnlyWhenSet(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m, err := toTransactionModel(domain.Transaction{
		TransactionID: "TXN_20250102_ABCDEF01",
		Kind:          domain.KindSubscription,
		Status:        domain.StatusPending,
		Amount:        decimal.NewFromInt(75000),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	assert.Nil(t, m.CompletedAt)

	raw, err := bson.Marshal(m)
	require.NoError(t, err)
	_, lookupErr := bson.Raw(raw).LookupErr("completed_at")
	assert.Error(t, lookupErr, "pending entries carry no completed_at field")
}

func TestMigrationIndexes_OneActiveSubscription(t *testing.T) {
	indexes := migrationIndexes()
	require.Contains(t, indexes, colSubscriptions)

	first := indexes[colSubscriptions][0]
	assert.Equal(t, bson.D{{Key: "account_id", Value: 1}, {Key: "fund_id", Value: 1}}, first.Keys)
	require.NotNil(t, first.Options)
}

func TestAccountModel_RefreshTokenRoundTrip(t *testing.T) {
	expires := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	m, err := toAccountModel(domain.Account{
		AccountID:             "acc-1",
		Balance:               decimal.NewFromInt(500000),
		RefreshTokenHash:      "abc123",
		RefreshTokenExpiresAt: &expires,
	})
	require.NoError(t, err)

	back, err := fromAccountModel(m)
	require.NoError(t, err)
	assert.Equal(t, "abc123", back.RefreshTokenHash)
	require.NotNil(t, back.RefreshTokenExpiresAt)
	assert.Equal(t, expires, *back.RefreshTokenExpiresAt)

	plain, err := toAccountModel(domain.Account{AccountID: "acc-2", Balance: decimal.Zero})
	require.NoError(t, err)
	raw, err := bson.Marshal(plain)
	require.NoError(t, err)
	_, lookupErr := bson.Raw(raw).LookupErr("refresh_token_hash")
	assert.Error(t, lookupErr, "accounts without a refresh token store no hash field")
}
