package interfaces

import (
	"context"

	"ukbus/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionLookup carries every reference a provider notification might
// name. Identifier wins when several match.
type TransactionLookup struct {
	Identifier        string
	ProviderTxID      string
	MerchantReference string
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByIdentifier(ctx context.Context, identifier string) (*models.Transaction, error)
	FindByLookup(ctx context.Context, lookup TransactionLookup) (*models.Transaction, error)

	// AttachProviderRefs records provider-assigned ids on a transaction
	// without touching its status.
	AttachProviderRefs(ctx context.Context, id primitive.ObjectID, providerTxID, reference string) error

	// MarkStatusIfPending performs the atomic transition-if-pending update.
	// The returned bool is true only for the request that actually moved the
	// transaction out of pending; redeliveries see false plus the current
	// document.
	MarkStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, bool, error)

	SetMetadata(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error

	// SumSuccessful aggregates total amount and count of successful
	// transactions for the admin dashboard.
	SumSuccessful(ctx context.Context) (total int64, count int64, err error)
}
