package interfaces

import (
	"context"

	"ukbus/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	GetByPhone(ctx context.Context, phone string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}
