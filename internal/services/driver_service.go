package services

import (
	"context"
	"time"

	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverService reads the driver-facing views: profile and validation logs.
type DriverService interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)
	HistoryForDay(ctx context.Context, id primitive.ObjectID, day time.Time) ([]*models.Validation, error)
	HistoryAll(ctx context.Context, id primitive.ObjectID) ([]*models.Validation, error)
}

type driverService struct {
	driverRepo     interfaces.DriverRepository
	validationRepo interfaces.ValidationRepository
}

func NewDriverService(driverRepo interfaces.DriverRepository, validationRepo interfaces.ValidationRepository) DriverService {
	return &driverService{
		driverRepo:     driverRepo,
		validationRepo: validationRepo,
	}
}

func (s *driverService) Profile(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	return s.driverRepo.GetByID(ctx, id)
}

// HistoryForDay lists the driver's validations within the local calendar
// day containing the given instant.
func (s *driverService) HistoryForDay(ctx context.Context, id primitive.ObjectID, day time.Time) ([]*models.Validation, error) {
	start := startOfDay(day)
	end := start.Add(24*time.Hour - time.Nanosecond)

	return s.validationRepo.ListByDriverBetween(ctx, id, start, end)
}

// startOfDay returns midnight of the calendar day containing t, in t's
// location. Truncate would give UTC midnight instead.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (s *driverService) HistoryAll(ctx context.Context, id primitive.ObjectID) ([]*models.Validation, error) {
	return s.validationRepo.ListByDriver(ctx, id)
}
