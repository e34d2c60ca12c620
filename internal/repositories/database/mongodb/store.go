// Package mongodb stores accounts, funds, subscriptions and the ledger in MongoDB.
// Single-document updates are atomic, which is all the balance CAS and the
// subscription uniqueness index need; no multi-document transactions are used.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection name constants.
const (
	colAccounts      = "accounts"
	colFunds         = "funds"
	colSubscriptions = "subscriptions"
	colTransactions  = "transactions"
)

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.FundRepositoryFacade         = (*Store)(nil)
	_ portsrepo.SubscriptionRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade       = (*Store)(nil)
)

// Store implements every repository port on one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New creates a store over the named database.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// NewRepositoryProvider wires the store into every repository slot.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      s,
		FundRepo:         s,
		SubscriptionRepo: s,
		LedgerRepo:       s,
		Close:            s.Close,
	}
}

// Migrate creates indexes for all collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("funds/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ==================== Account Store ====================

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	account.Email = strings.ToLower(account.Email)
	m, err := toAccountModel(account)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colAccounts).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: account %s or email %s already exists", apperrors.ErrDuplicate, account.AccountID, account.Email)
		}
		return fmt.Errorf("funds/mongo: save account: %w", err)
	}
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.findAccount(ctx, bson.M{"_id": accountID})
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.findAccount(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) findAccount(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var m accountModel
	if err := s.db.Collection(colAccounts).FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("funds/mongo: find account: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) UpdateAccountProfile(ctx context.Context, accountID string, profile domain.AccountProfile, now time.Time) error {
	set := bson.M{
		"full_name":               profile.FullName,
		"notification_preference": string(profile.NotificationPreference),
		"last_updated_at":         now,
	}
	update := bson.M{"$set": set}
	if profile.Phone != "" {
		set["phone"] = profile.Phone
	} else {
		update["$unset"] = bson.M{"phone": ""}
	}
	return s.updateAccount(ctx, accountID, update)
}

func (s *Store) SetRefreshToken(ctx context.Context, accountID string, tokenHash string, expiresAt time.Time, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"refresh_token_hash":       tokenHash,
		"refresh_token_expires_at": expiresAt,
		"last_updated_at":          now,
	}}
	if tokenHash == "" {
		update = bson.M{
			"$set":   bson.M{"last_updated_at": now},
			"$unset": bson.M{"refresh_token_hash": "", "refresh_token_expires_at": ""},
		}
	}
	return s.updateAccount(ctx, accountID, update)
}

func (s *Store) updateAccount(ctx context.Context, accountID string, update bson.M) error {
	res, err := s.db.Collection(colAccounts).UpdateOne(ctx, bson.M{"_id": accountID}, update)
	if err != nil {
		return fmt.Errorf("funds/mongo: update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// CompareAndSetBalance matches on the expected balance inside the update filter,
// so the write applies only if no one changed the document in between.
func (s *Store) CompareAndSetBalance(ctx context.Context, accountID string, expected, newBalance decimal.Decimal, now time.Time) error {
	exp, err := toDecimal128(expected)
	if err != nil {
		return err
	}
	next, err := toDecimal128(newBalance)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(colAccounts).UpdateOne(ctx,
		bson.M{"_id": accountID, "balance": exp},
		bson.M{"$set": bson.M{"balance": next, "last_updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("funds/mongo: update balance: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if _, err := s.FindAccountByID(ctx, accountID); err != nil {
		return err
	}
	return apperrors.ErrConflict
}

// ==================== Fund Store ====================

func (s *Store) SaveFund(ctx context.Context, fund domain.Fund) error {
	m, err := toFundModel(fund)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colFunds).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: fund %d already exists", apperrors.ErrDuplicate, fund.FundID)
		}
		return fmt.Errorf("funds/mongo: save fund: %w", err)
	}
	return nil
}

func (s *Store) FindFundByID(ctx context.Context, fundID int) (*domain.Fund, error) {
	var m fundModel
	if err := s.db.Collection(colFunds).FindOne(ctx, bson.M{"_id": fundID}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("funds/mongo: find fund: %w", err)
	}
	fund, err := fromFundModel(&m)
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

func (s *Store) ListFunds(ctx context.Context, activeOnly bool) ([]domain.Fund, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	cursor, err := s.db.Collection(colFunds).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("funds/mongo: list funds: %w", err)
	}
	var models []fundModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("funds/mongo: decode funds: %w", err)
	}

	funds := make([]domain.Fund, 0, len(models))
	for i := range models {
		f, err := fromFundModel(&models[i])
		if err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, nil
}

// ==================== Subscription Store ====================

func (s *Store) CreateActiveSubscription(ctx context.Context, sub domain.Subscription) error {
	sub.IsActive = true
	sub.CancelledAt = nil
	m, err := toSubscriptionModel(sub)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colSubscriptions).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: active subscription for account %s and fund %d", apperrors.ErrDuplicate, sub.AccountID, sub.FundID)
		}
		return fmt.Errorf("funds/mongo: create subscription: %w", err)
	}
	return nil
}

func (s *Store) DeactivateSubscription(ctx context.Context, accountID string, fundID int, cancelledAt time.Time) error {
	res, err := s.db.Collection(colSubscriptions).UpdateOne(ctx,
		bson.M{"account_id": accountID, "fund_id": fundID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "cancelled_at": cancelledAt}},
	)
	if err != nil {
		return fmt.Errorf("funds/mongo: deactivate subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *Store) FindActiveSubscription(ctx context.Context, accountID string, fundID int) (*domain.Subscription, error) {
	var m subscriptionModel
	err := s.db.Collection(colSubscriptions).
		FindOne(ctx, bson.M{"account_id": accountID, "fund_id": fundID, "is_active": true}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("funds/mongo: find subscription: %w", err)
	}
	sub, err := fromSubscriptionModel(&m)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) ListActiveSubscriptions(ctx context.Context, accountID string) ([]domain.Subscription, error) {
	cursor, err := s.db.Collection(colSubscriptions).Find(ctx,
		bson.M{"account_id": accountID, "is_active": true},
		options.Find().SetSort(bson.D{{Key: "subscribed_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("funds/mongo: list subscriptions: %w", err)
	}
	var models []subscriptionModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("funds/mongo: decode subscriptions: %w", err)
	}

	subs := make([]domain.Subscription, 0, len(models))
	for i := range models {
		sub, err := fromSubscriptionModel(&models[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// ==================== Ledger Store ====================

func (s *Store) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	m, err := toTransactionModel(txn)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colTransactions).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return fmt.Errorf("funds/mongo: create transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus only matches pending documents, so a terminal entry is never rewritten.
func (s *Store) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, at time.Time) error {
	if !domain.StatusPending.CanTransitionTo(status) {
		return fmt.Errorf("%w: pending -> %s", apperrors.ErrInvalidStatusTransition, status)
	}

	set := bson.M{"status": string(status), "updated_at": at}
	if status == domain.StatusCompleted {
		set["completed_at"] = at
	}
	res, err := s.db.Collection(colTransactions).UpdateOne(ctx,
		bson.M{"_id": transactionID, "status": string(domain.StatusPending)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("funds/mongo: update transaction status: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	current, err := s.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusTransition, current.Status, status)
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var m transactionModel
	if err := s.db.Collection(colTransactions).FindOne(ctx, bson.M{"_id": transactionID}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("funds/mongo: find transaction: %w", err)
	}
	txn, err := fromTransactionModel(&m)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Store) QueryTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: offset %d limit %d", apperrors.ErrValidation, offset, limit)
	}
	query := bson.M{"account_id": accountID}
	if filter.Kind != nil {
		query["kind"] = string(*filter.Kind)
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	col := s.db.Collection(colTransactions)
	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("funds/mongo: count transactions: %w", err)
	}
	if total == 0 || int64(offset) >= total {
		return []domain.Transaction{}, int(total), nil
	}

	txns, err := s.findTransactions(ctx, query, int64(limit), int64(offset))
	if err != nil {
		return nil, 0, err
	}
	return txns, int(total), nil
}

func (s *Store) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.findTransactions(ctx, bson.M{}, int64(limit), 0)
}

func (s *Store) findTransactions(ctx context.Context, filter bson.M, limit, skip int64) ([]domain.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	if skip > 0 {
		opts = opts.SetSkip(skip)
	}

	cursor, err := s.db.Collection(colTransactions).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("funds/mongo: query transactions: %w", err)
	}
	var models []transactionModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("funds/mongo: decode transactions: %w", err)
	}

	txns := make([]domain.Transaction, 0, len(models))
	for i := range models {
		txn, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// ==================== Helpers ====================

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colSubscriptions: {
			{
				// at most one active subscription per (account, fund)
				Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "fund_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("one_active_subscription").
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "subscribed_at", Value: 1}}},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		},
	}
}
