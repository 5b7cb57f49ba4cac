package interfaces

import (
	"context"

	"ukbus/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	GetByPhone(ctx context.Context, phone string) (*models.Student, error)
	Count(ctx context.Context) (int64, error)

	// CreditBalance adds amount to the student's balance. Called only by the
	// ledger on a verified pending -> success transition; appends no history.
	CreditBalance(ctx context.Context, id primitive.ObjectID, amount int64) (*models.Student, error)

	// DebitForPurchase atomically checks balance >= total, debits it,
	// adds quantity tickets and appends the purchase history entry. Returns
	// apperrors.ErrInsufficientBalance when the balance guard fails.
	DebitForPurchase(ctx context.Context, id primitive.ObjectID, total, quantity int64, entry models.HistoryEntry) (*models.Student, error)

	// ConsumeTicket atomically decrements tickets if at least one remains
	// and appends the validation history entry. Returns
	// apperrors.ErrNoTicketAvailable when the ticket guard fails.
	ConsumeTicket(ctx context.Context, id primitive.ObjectID, entry models.HistoryEntry) (*models.Student, error)
}
