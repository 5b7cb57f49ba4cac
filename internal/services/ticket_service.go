package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ukbus/internal/apperrors"
	"ukbus/internal/config"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/utils"
	"ukbus/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketService sells tickets against the prepaid balance and redeems them
// on QR scan. Both mutations ride the repository's conditional updates, so
// a purchase can never overdraw the balance and two concurrent scans can
// never both consume the last ticket.
type TicketService interface {
	BuyTickets(ctx context.Context, studentID primitive.ObjectID, quantity int64) (*PurchaseResult, error)
	RedeemTicket(ctx context.Context, driverID primitive.ObjectID, rawPayload string) (*RedemptionResult, error)
}

type PurchaseResult struct {
	QRPayload  *models.QRPayload `json:"qr_payload"`
	Balance    int64             `json:"balance"`
	Tickets    int64             `json:"tickets"`
	LowBalance bool              `json:"low_balance"`
}

type RedemptionResult struct {
	IsValid bool  `json:"is_valid"`
	Tickets int64 `json:"tickets"`
	Balance int64 `json:"balance"`
}

type ticketService struct {
	studentRepo    interfaces.StudentRepository
	validationRepo interfaces.ValidationRepository
	driverRepo     interfaces.DriverRepository
	config         *config.PaymentConfig
	logger         *logger.Logger
}

func NewTicketService(
	studentRepo interfaces.StudentRepository,
	validationRepo interfaces.ValidationRepository,
	driverRepo interfaces.DriverRepository,
	cfg *config.PaymentConfig,
	log *logger.Logger,
) TicketService {
	return &ticketService{
		studentRepo:    studentRepo,
		validationRepo: validationRepo,
		driverRepo:     driverRepo,
		config:         cfg,
		logger:         log,
	}
}

// BuyTickets debits quantity*price from the balance and adds the tickets in
// one conditional update. The returned QR payload snapshots the new counts;
// only its id is trusted again at redemption time.
func (s *ticketService) BuyTickets(ctx context.Context, studentID primitive.ObjectID, quantity int64) (*PurchaseResult, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperrors.ErrValidation)
	}
	// The cap also keeps quantity*price far away from int64 overflow; an
	// overflowed total would turn the debit guard into a credit.
	if quantity > utils.MaxTicketsPerPurchase {
		return nil, fmt.Errorf("%w: at most %d tickets per purchase", apperrors.ErrValidation, utils.MaxTicketsPerPurchase)
	}

	total := s.config.TicketPrice * quantity
	entry := models.HistoryEntry{
		Type:   models.HistoryTypePurchase,
		Amount: total,
		Date:   time.Now(),
	}

	student, err := s.studentRepo.DebitForPurchase(ctx, studentID, total, quantity, entry)
	if err != nil {
		return nil, err
	}

	s.logger.WithStudentID(studentID).
		Infof("%d ticket(s) purchased for %d FCFA", quantity, total)

	return &PurchaseResult{
		QRPayload: &models.QRPayload{
			ID:      student.ID.Hex(),
			Balance: student.Balance,
			Tickets: student.Tickets,
			TS:      time.Now().UnixMilli(),
		},
		Balance:    student.Balance,
		Tickets:    student.Tickets,
		LowBalance: student.Balance < s.config.LowBalanceMinimum,
	}, nil
}

// RedeemTicket runs one redemption attempt to its terminal state. The QR
// payload only names the student; the authoritative ticket count is re-read
// by the conditional decrement. Rejected attempts are durably recorded too.
func (s *ticketService) RedeemTicket(ctx context.Context, driverID primitive.ObjectID, rawPayload string) (*RedemptionResult, error) {
	var payload models.QRPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid QR payload", apperrors.ErrValidation)
	}

	studentID, err := primitive.ObjectIDFromHex(payload.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid student id in QR payload", apperrors.ErrValidation)
	}

	entry := models.HistoryEntry{
		Type:   models.HistoryTypeValidation,
		Amount: s.config.TicketPrice,
		Date:   time.Now(),
	}

	student, err := s.studentRepo.ConsumeTicket(ctx, studentID, entry)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoTicketAvailable) {
			rejected := &models.Validation{
				StudentID: studentID,
				DriverID:  driverID,
				Amount:    0,
				Date:      time.Now(),
				IsValid:   false,
			}
			if createErr := s.validationRepo.Create(ctx, rejected); createErr != nil {
				s.logger.WithStudentID(studentID).WithError(createErr).
					Error("failed to record rejected validation")
			}

			current, getErr := s.studentRepo.GetByID(ctx, studentID)
			if getErr != nil {
				return nil, getErr
			}

			s.logger.WithStudentID(studentID).Info("redemption rejected, no ticket available")
			return &RedemptionResult{
				IsValid: false,
				Tickets: current.Tickets,
				Balance: current.Balance,
			}, nil
		}
		return nil, err
	}

	validation := &models.Validation{
		StudentID: studentID,
		DriverID:  driverID,
		Amount:    s.config.TicketPrice,
		Date:      time.Now(),
		IsValid:   true,
	}
	if err := s.validationRepo.Create(ctx, validation); err != nil {
		s.logger.WithStudentID(studentID).WithError(err).
			Error("ticket consumed but validation record failed")
	}

	s.logger.WithStudentID(studentID).
		WithField("driver_id", driverID.Hex()).
		Info("ticket validated")

	return &RedemptionResult{
		IsValid: true,
		Tickets: student.Tickets,
		Balance: student.Balance,
	}, nil
}
