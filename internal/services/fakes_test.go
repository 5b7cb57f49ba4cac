package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/pkg/logger"
	"ukbus/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeStudentRepo mirrors the conditional-update semantics of the Mongo
// implementation: guarded mutations run under one lock and fail the same
// way the filter guards do.
type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[primitive.ObjectID]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[primitive.ObjectID]*models.Student)}
}

func (r *fakeStudentRepo) add(student *models.Student) *models.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	r.students[student.ID] = student
	return student
}

func (r *fakeStudentRepo) snapshot(student *models.Student) *models.Student {
	copied := *student
	copied.History = append([]models.HistoryEntry(nil), student.History...)
	return &copied
}

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	r.mu.Lock()
	for _, existing := range r.students {
		if existing.Phone == student.Phone {
			r.mu.Unlock()
			return apperrors.ErrPhoneAlreadyUsed
		}
	}
	r.mu.Unlock()
	r.add(student)
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.snapshot(student), nil
}

func (r *fakeStudentRepo) GetByPhone(_ context.Context, phone string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, student := range r.students {
		if student.Phone == phone {
			return r.snapshot(student), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *fakeStudentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.students)), nil
}

func (r *fakeStudentRepo) CreditBalance(_ context.Context, id primitive.ObjectID, amount int64) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	student.Balance += amount
	return r.snapshot(student), nil
}

func (r *fakeStudentRepo) DebitForPurchase(_ context.Context, id primitive.ObjectID, total, quantity int64, entry models.HistoryEntry) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	if student.Balance < total {
		return nil, apperrors.ErrInsufficientBalance
	}
	student.Balance -= total
	student.Tickets += quantity
	student.History = append(student.History, entry)
	return r.snapshot(student), nil
}

func (r *fakeStudentRepo) ConsumeTicket(_ context.Context, id primitive.ObjectID, entry models.HistoryEntry) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	if student.Tickets < 1 {
		return nil, apperrors.ErrNoTicketAvailable
	}
	student.Tickets--
	student.History = append(student.History, entry)
	return r.snapshot(student), nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[primitive.ObjectID]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[primitive.ObjectID]*models.Transaction)}
}

func (r *fakeTransactionRepo) add(transaction *models.Transaction) *models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	r.transactions[transaction.ID] = transaction
	return transaction
}

func (r *fakeTransactionRepo) Create(_ context.Context, transaction *models.Transaction) error {
	r.add(transaction)
	return nil
}

func (r *fakeTransactionRepo) GetByIdentifier(_ context.Context, identifier string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, transaction := range r.transactions {
		if transaction.Identifier == identifier {
			copied := *transaction
			return &copied, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByLookup(_ context.Context, lookup interfaces.TransactionLookup) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, transaction := range r.transactions {
		switch {
		case lookup.Identifier != "" && transaction.Identifier == lookup.Identifier,
			lookup.ProviderTxID != "" && transaction.ProviderTxID == lookup.ProviderTxID,
			lookup.MerchantReference != "" && transaction.MerchantReference == lookup.MerchantReference:
			copied := *transaction
			return &copied, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) AttachProviderRefs(_ context.Context, id primitive.ObjectID, providerTxID, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	transaction, ok := r.transactions[id]
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	if providerTxID != "" {
		transaction.ProviderTxID = providerTxID
	}
	if reference != "" {
		transaction.ProviderReference = reference
	}
	return nil
}

func (r *fakeTransactionRepo) MarkStatusIfPending(_ context.Context, id primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	transaction, ok := r.transactions[id]
	if !ok {
		return nil, false, apperrors.ErrTransactionNotFound
	}
	if transaction.Status != models.TransactionStatusPending {
		copied := *transaction
		return &copied, false, nil
	}
	transaction.Status = status
	transaction.UpdatedAt = time.Now()
	copied := *transaction
	return &copied, true, nil
}

func (r *fakeTransactionRepo) SetMetadata(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	transaction, ok := r.transactions[id]
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	if transaction.Metadata == nil {
		transaction.Metadata = make(map[string]interface{})
	}
	for key, value := range fields {
		transaction.Metadata[key] = value
	}
	return nil
}

func (r *fakeTransactionRepo) SumSuccessful(_ context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, count int64
	for _, transaction := range r.transactions {
		if transaction.Status == models.TransactionStatusSuccess {
			total += transaction.Amount
			count++
		}
	}
	return total, count, nil
}

type fakeValidationRepo struct {
	mu          sync.Mutex
	validations []*models.Validation
}

func (r *fakeValidationRepo) Create(_ context.Context, validation *models.Validation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if validation.ID.IsZero() {
		validation.ID = primitive.NewObjectID()
	}
	r.validations = append(r.validations, validation)
	return nil
}

func (r *fakeValidationRepo) ListByDriver(_ context.Context, driverID primitive.ObjectID) ([]*models.Validation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Validation
	for _, v := range r.validations {
		if v.DriverID == driverID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) ListByDriverBetween(_ context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Validation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Validation
	for _, v := range r.validations {
		if v.DriverID == driverID && !v.Date.Before(from) && v.Date.Before(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]*models.Validation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Validation
	for _, v := range r.validations {
		if v.StudentID == studentID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, v := range r.validations {
		if !v.Date.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[primitive.ObjectID]*models.Driver)}
}

func (r *fakeDriverRepo) Create(_ context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.drivers {
		if existing.Phone == driver.Phone {
			return apperrors.ErrPhoneAlreadyUsed
		}
	}
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	r.drivers[driver.ID] = driver
	return nil
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, apperrors.ErrDriverNotFound
	}
	return driver, nil
}

func (r *fakeDriverRepo) GetByPhone(_ context.Context, phone string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, driver := range r.drivers {
		if driver.Phone == phone {
			return driver, nil
		}
	}
	return nil, apperrors.ErrDriverNotFound
}

func (r *fakeDriverRepo) List(_ context.Context) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Driver, 0, len(r.drivers))
	for _, driver := range r.drivers {
		out = append(out, driver)
	}
	return out, nil
}

func (r *fakeDriverRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[id]; !ok {
		return apperrors.ErrDriverNotFound
	}
	delete(r.drivers, id)
	return nil
}

func (r *fakeDriverRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.drivers)), nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[primitive.ObjectID]*models.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[primitive.ObjectID]*models.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Phone == admin.Phone {
			return apperrors.ErrPhoneAlreadyUsed
		}
	}
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	return admin, nil
}

func (r *fakeAdminRepo) GetByPhone(_ context.Context, phone string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Phone == phone {
			return admin, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

func (r *fakeAdminRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.admins)), nil
}

// fakeProvider scripts one mobile-money gateway. Its MapStatus mirrors the
// FedaPay mapping, which is enough for exercising the ledger funnel.
type fakeProvider struct {
	name          string
	initiateErr   error
	statusErr     error
	currentStatus string

	mu            sync.Mutex
	initiateCalls int
	statusCalls   int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Initiate(_ context.Context, request *payment.InitiateRequest) (*payment.InitiateResponse, error) {
	p.mu.Lock()
	p.initiateCalls++
	p.mu.Unlock()
	if p.initiateErr != nil {
		return nil, p.initiateErr
	}
	return &payment.InitiateResponse{
		ProviderTxID:      p.name + "-tx-1",
		Reference:         p.name + "-ref-1",
		MerchantReference: "MERCH-" + request.Identifier,
		Status:            "pending",
	}, nil
}

func (p *fakeProvider) CheckStatus(_ context.Context, _ *payment.StatusRequest) (*payment.StatusResponse, error) {
	p.mu.Lock()
	p.statusCalls++
	p.mu.Unlock()
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	return &payment.StatusResponse{Status: p.currentStatus}, nil
}

func (p *fakeProvider) MapStatus(providerStatus string) string {
	switch providerStatus {
	case "approved", "transferred":
		return payment.StatusSuccess
	case "canceled", "declined", "expired":
		return payment.StatusFailed
	default:
		return payment.StatusPending
	}
}
