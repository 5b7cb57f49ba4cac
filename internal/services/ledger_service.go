package services

import (
	"context"
	"errors"
	"fmt"

	"ukbus/internal/apperrors"
	"ukbus/internal/config"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/utils"
	"ukbus/pkg/logger"
	"ukbus/pkg/payment"

	"github.com/google/uuid"
)

// LedgerService is the authoritative record of money movement. It owns the
// transaction state machine: every status change funnels through
// ApplyProviderStatus, and a balance credit happens on exactly one
// pending -> success transition per transaction.
type LedgerService interface {
	OpenRecharge(ctx context.Context, request *RechargeRequest) (*models.Transaction, error)
	ApplyProviderStatus(ctx context.Context, lookup interfaces.TransactionLookup, providerStatus string) (*models.Transaction, error)
	GetStatus(ctx context.Context, identifier string) (*models.Transaction, error)
	AttachProviderReferences(ctx context.Context, lookup interfaces.TransactionLookup, providerTxID, reference string) error
	StampMetadata(ctx context.Context, lookup interfaces.TransactionLookup, fields map[string]interface{}) error
}

type RechargeRequest struct {
	Phone   string                `json:"phone" validate:"required"`
	Amount  int64                 `json:"amount" validate:"required,gt=0"`
	Network models.PaymentNetwork `json:"network"`
}

type ledgerService struct {
	transactionRepo interfaces.TransactionRepository
	studentRepo     interfaces.StudentRepository
	providers       []payment.Provider // initiation order: primary first
	providersByName map[string]payment.Provider
	config          *config.PaymentConfig
	logger          *logger.Logger
}

func NewLedgerService(
	transactionRepo interfaces.TransactionRepository,
	studentRepo interfaces.StudentRepository,
	providers []payment.Provider,
	cfg *config.PaymentConfig,
	log *logger.Logger,
) LedgerService {
	byName := make(map[string]payment.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &ledgerService{
		transactionRepo: transactionRepo,
		studentRepo:     studentRepo,
		providers:       providers,
		providersByName: byName,
		config:          cfg,
		logger:          log,
	}
}

// OpenRecharge validates the request, then walks the provider list with the
// same identifier until one accepts the initiation. Only the accepting
// provider's references are persisted, so one client intent never produces
// two competing transactions.
func (s *ledgerService) OpenRecharge(ctx context.Context, request *RechargeRequest) (*models.Transaction, error) {
	if request.Amount < s.config.MinimumRecharge {
		return nil, fmt.Errorf("%w: minimum is %d FCFA", apperrors.ErrAmountBelowMinimum, s.config.MinimumRecharge)
	}

	phone, err := utils.NormalizeTogolesePhone(request.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	student, err := s.studentRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	identifier := uuid.NewString()
	network := request.Network
	if network == "" {
		network = models.NetworkAuto
	}

	initReq := &payment.InitiateRequest{
		PhoneNumber: phone,
		Amount:      request.Amount,
		Network:     string(network),
		Description: fmt.Sprintf("Recharge UkBus - %s %s", student.FirstName, student.LastName),
		Identifier:  identifier,
		StudentID:   student.ID.Hex(),
	}

	var initErrs []error
	for _, provider := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
		response, err := provider.Initiate(callCtx, initReq)
		cancel()
		if err != nil {
			s.logger.WithTransaction(identifier).WithError(err).
				Warnf("provider %s failed to initiate, trying next", provider.Name())
			initErrs = append(initErrs, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		transaction := &models.Transaction{
			StudentID:         student.ID,
			Type:              models.TransactionTypeRecharge,
			Amount:            request.Amount,
			Status:            models.TransactionStatusPending,
			Identifier:        identifier,
			Provider:          models.PaymentProvider(provider.Name()),
			ProviderTxID:      response.ProviderTxID,
			ProviderReference: response.Reference,
			MerchantReference: response.MerchantReference,
			Network:           network,
			Metadata: map[string]interface{}{
				"student_id":   student.ID.Hex(),
				"service":      "ukbus_recharge",
				"phone_number": phone,
			},
		}

		if err := s.transactionRepo.Create(ctx, transaction); err != nil {
			return nil, err
		}

		s.logger.WithTransaction(identifier).
			WithStudentID(student.ID).
			Infof("recharge of %d FCFA initiated via %s", request.Amount, provider.Name())

		return transaction, nil
	}

	return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentInitiation, errors.Join(initErrs...))
}

// ApplyProviderStatus is the single funnel for asynchronous status news,
// whether it arrived by webhook or by polling. Terminal transactions are
// returned unchanged; the conditional update in the repository makes a
// redelivered terminal status a no-op, which is what prevents
// double-crediting.
func (s *ledgerService) ApplyProviderStatus(ctx context.Context, lookup interfaces.TransactionLookup, providerStatus string) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.FindByLookup(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if transaction.IsTerminal() {
		return transaction, nil
	}

	status := s.mapStatus(transaction, providerStatus)
	if status == models.TransactionStatusPending {
		return transaction, nil
	}

	updated, transitioned, err := s.transactionRepo.MarkStatusIfPending(ctx, transaction.ID, status)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return updated, nil
	}

	if status == models.TransactionStatusSuccess && updated.Type == models.TransactionTypeRecharge {
		student, err := s.studentRepo.CreditBalance(ctx, updated.StudentID, updated.Amount)
		if err != nil {
			// The transaction is marked success but the credit failed; this
			// needs an operator. Log loudly rather than unwinding the status.
			s.logger.WithTransaction(updated.Identifier).WithError(err).
				Error("balance credit failed after success transition")
			return updated, err
		}
		s.logger.WithTransaction(updated.Identifier).
			WithStudentID(student.ID).
			Infof("balance credited with %d FCFA", updated.Amount)
	}

	if status == models.TransactionStatusFailed {
		s.logger.WithTransaction(updated.Identifier).Info("transaction marked failed")
	}

	return updated, nil
}

// GetStatus serves client polling. While the local record is still pending
// it opportunistically asks the provider for fresher news and applies it
// through the same funnel as webhooks.
func (s *ledgerService) GetStatus(ctx context.Context, identifier string) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if transaction.IsTerminal() {
		return transaction, nil
	}

	provider, ok := s.providersByName[string(transaction.Provider)]
	if !ok {
		return transaction, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	status, err := provider.CheckStatus(callCtx, &payment.StatusRequest{
		ProviderTxID:      transaction.ProviderTxID,
		Identifier:        transaction.Identifier,
		MerchantReference: transaction.MerchantReference,
	})
	if err != nil {
		// Polling is best effort; the webhook path still settles the record.
		s.logger.WithTransaction(identifier).WithError(err).Warn("provider status check failed")
		return transaction, nil
	}

	return s.ApplyProviderStatus(ctx, interfaces.TransactionLookup{Identifier: identifier}, status.Status)
}

func (s *ledgerService) AttachProviderReferences(ctx context.Context, lookup interfaces.TransactionLookup, providerTxID, reference string) error {
	transaction, err := s.transactionRepo.FindByLookup(ctx, lookup)
	if err != nil {
		return err
	}

	return s.transactionRepo.AttachProviderRefs(ctx, transaction.ID, providerTxID, reference)
}

func (s *ledgerService) StampMetadata(ctx context.Context, lookup interfaces.TransactionLookup, fields map[string]interface{}) error {
	transaction, err := s.transactionRepo.FindByLookup(ctx, lookup)
	if err != nil {
		return err
	}

	return s.transactionRepo.SetMetadata(ctx, transaction.ID, fields)
}

func (s *ledgerService) mapStatus(transaction *models.Transaction, providerStatus string) models.TransactionStatus {
	provider, ok := s.providersByName[string(transaction.Provider)]
	if !ok {
		// Unknown provider on record: stay pending, never guess terminal.
		return models.TransactionStatusPending
	}
	return models.TransactionStatus(provider.MapStatus(providerStatus))
}
