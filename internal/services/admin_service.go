package services

import (
	"context"
	"time"

	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminService serves the back-office surface: global stats and driver
// management.
type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListDrivers(ctx context.Context) ([]*models.Driver, error)
	DeleteDriver(ctx context.Context, id primitive.ObjectID) error
}

type DashboardStats struct {
	Students          int64 `json:"students"`
	Drivers           int64 `json:"drivers"`
	Admins            int64 `json:"admins"`
	TotalSales        int64 `json:"total_sales"`
	TotalTransactions int64 `json:"total_transactions"`
	ValidationsToday  int64 `json:"validations_today"`
}

type adminService struct {
	studentRepo     interfaces.StudentRepository
	driverRepo      interfaces.DriverRepository
	adminRepo       interfaces.AdminRepository
	transactionRepo interfaces.TransactionRepository
	validationRepo  interfaces.ValidationRepository
	logger          *logger.Logger
}

func NewAdminService(
	studentRepo interfaces.StudentRepository,
	driverRepo interfaces.DriverRepository,
	adminRepo interfaces.AdminRepository,
	transactionRepo interfaces.TransactionRepository,
	validationRepo interfaces.ValidationRepository,
	log *logger.Logger,
) AdminService {
	return &adminService{
		studentRepo:     studentRepo,
		driverRepo:      driverRepo,
		adminRepo:       adminRepo,
		transactionRepo: transactionRepo,
		validationRepo:  validationRepo,
		logger:          log,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := s.driverRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.adminRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	total, count, err := s.transactionRepo.SumSuccessful(ctx)
	if err != nil {
		return nil, err
	}

	validationsToday, err := s.validationRepo.CountSince(ctx, startOfDay(time.Now()))
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Students:          students,
		Drivers:           drivers,
		Admins:            admins,
		TotalSales:        total,
		TotalTransactions: count,
		ValidationsToday:  validationsToday,
	}, nil
}

func (s *adminService) ListDrivers(ctx context.Context) ([]*models.Driver, error) {
	return s.driverRepo.List(ctx)
}

func (s *adminService) DeleteDriver(ctx context.Context, id primitive.ObjectID) error {
	if err := s.driverRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("driver_id", id.Hex()).Info("driver deleted")
	return nil
}
