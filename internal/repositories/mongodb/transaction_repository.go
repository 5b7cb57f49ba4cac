package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/services"
	"ukbus/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type transactionRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewTransactionRepository(db *mongo.Database, cache services.CacheService) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
		cache:      cache,
	}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()
	if transaction.Status == "" {
		transaction.Status = models.TransactionStatusPending
	}

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Transaction, error) {
	if tx := r.getFromCache(ctx, identifier); tx != nil {
		return tx, nil
	}

	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"identifier": identifier}).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if transaction.IsTerminal() {
		r.cacheTransaction(ctx, &transaction)
	}

	return &transaction, nil
}

// FindByLookup resolves a transaction from whichever reference a provider
// notification carried. The identifier is checked alone first so it always
// wins over provider-assigned ids.
func (r *transactionRepository) FindByLookup(ctx context.Context, lookup interfaces.TransactionLookup) (*models.Transaction, error) {
	if lookup.Identifier != "" {
		tx, err := r.GetByIdentifier(ctx, lookup.Identifier)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			return nil, err
		}
	}

	var or []bson.M
	if lookup.ProviderTxID != "" {
		or = append(or, bson.M{"provider_tx_id": lookup.ProviderTxID})
	}
	if lookup.MerchantReference != "" {
		or = append(or, bson.M{"merchant_reference": lookup.MerchantReference})
	}
	if len(or) == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"$or": or}).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return &transaction, nil
}

func (r *transactionRepository) AttachProviderRefs(ctx context.Context, id primitive.ObjectID, providerTxID, reference string) error {
	updates := bson.M{"updated_at": time.Now()}
	if providerTxID != "" {
		updates["provider_tx_id"] = providerTxID
	}
	if reference != "" {
		updates["provider_reference"] = reference
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to attach provider refs: %w", err)
	}

	return nil
}

// MarkStatusIfPending is the ledger's compare-and-set. The pending guard in
// the filter makes the transition atomic: once a terminal status lands, every
// later attempt misses the filter and the existing document is returned
// untouched.
func (r *transactionRepository) MarkStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, bool, error) {
	after := options.After
	var transaction models.Transaction
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":    id,
			"status": models.TransactionStatusPending,
		},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&transaction)

	if err == nil {
		r.invalidateCache(ctx, transaction.Identifier)
		if transaction.IsTerminal() {
			r.cacheTransaction(ctx, &transaction)
		}
		return &transaction, true, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to mark transaction status: %w", err)
	}

	// Guard missed: the transaction is already terminal (or gone).
	var current models.Transaction
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, apperrors.ErrTransactionNotFound
		}
		return nil, false, fmt.Errorf("failed to reload transaction: %w", err)
	}

	return &current, false, nil
}

func (r *transactionRepository) SetMetadata(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	updates := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		updates["metadata."+k] = v
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to set transaction metadata: %w", err)
	}

	return nil
}

func (r *transactionRepository) SumSuccessful(ctx context.Context) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.TransactionStatusSuccess}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode aggregation: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].Total, results[0].Count, nil
}

func (r *transactionRepository) cacheTransaction(ctx context.Context, tx *models.Transaction) {
	if r.cache == nil {
		return
	}
	key := fmt.Sprintf("transaction_%s", tx.Identifier)
	_ = r.cache.Set(ctx, key, tx, utils.TransactionCacheTTL)
}

func (r *transactionRepository) getFromCache(ctx context.Context, identifier string) *models.Transaction {
	if r.cache == nil {
		return nil
	}
	var tx models.Transaction
	if err := r.cache.Get(ctx, fmt.Sprintf("transaction_%s", identifier), &tx); err != nil {
		return nil
	}
	return &tx
}

func (r *transactionRepository) invalidateCache(ctx context.Context, identifier string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("transaction_%s", identifier))
}
