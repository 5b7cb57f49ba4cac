package interfaces

import (
	"context"
	"time"

	"ukbus/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ValidationRepository interface {
	Create(ctx context.Context, validation *models.Validation) error
	ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Validation, error)
	ListByDriverBetween(ctx context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Validation, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*models.Validation, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
