package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ticketFixture struct {
	students    *fakeStudentRepo
	validations *fakeValidationRepo
	drivers     *fakeDriverRepo
	tickets     TicketService
	student     *models.Student
	driverID    primitive.ObjectID
}

func newTicketFixture(t *testing.T, balance, ticketCount int64) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		students:    newFakeStudentRepo(),
		validations: &fakeValidationRepo{},
		drivers:     newFakeDriverRepo(),
		driverID:    primitive.NewObjectID(),
	}
	f.student = f.students.add(&models.Student{
		FirstName: "Ama",
		LastName:  "Kossi",
		Phone:     "90123456",
		Balance:   balance,
		Tickets:   ticketCount,
	})
	f.tickets = NewTicketService(f.students, f.validations, f.drivers, testPaymentConfig(), newTestLogger(t))
	return f
}

func (f *ticketFixture) qrPayload(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(models.QRPayload{ID: f.student.ID.Hex()})
	require.NoError(t, err)
	return string(payload)
}

func TestBuyTicketsDebitsAndIssues(t *testing.T) {
	f := newTicketFixture(t, 1000, 0)

	result, err := f.tickets.BuyTickets(context.Background(), f.student.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(700), result.Balance)
	assert.Equal(t, int64(2), result.Tickets)
	assert.False(t, result.LowBalance)
	require.NotNil(t, result.QRPayload)
	assert.Equal(t, f.student.ID.Hex(), result.QRPayload.ID)
	assert.Equal(t, int64(700), result.QRPayload.Balance)

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	require.Len(t, student.History, 1)
	assert.Equal(t, models.HistoryTypePurchase, student.History[0].Type)
	assert.Equal(t, int64(300), student.History[0].Amount)
}

func TestBuyTicketsInsufficientBalance(t *testing.T) {
	f := newTicketFixture(t, 500, 0)

	// 4 tickets cost 600 against a balance of 500.
	_, err := f.tickets.BuyTickets(context.Background(), f.student.ID, 4)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	assert.Equal(t, int64(500), student.Balance)
	assert.Zero(t, student.Tickets)
	assert.Empty(t, student.History)
}

func TestBuyTicketsExactBalance(t *testing.T) {
	f := newTicketFixture(t, 300, 0)

	result, err := f.tickets.BuyTickets(context.Background(), f.student.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, result.Balance)
	assert.Equal(t, int64(2), result.Tickets)
	assert.True(t, result.LowBalance)
}

func TestBuyTicketsLowBalanceWarning(t *testing.T) {
	f := newTicketFixture(t, 400, 0)

	result, err := f.tickets.BuyTickets(context.Background(), f.student.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), result.Balance)
	assert.True(t, result.LowBalance)
}

func TestBuyTicketsRejectsOversizedQuantity(t *testing.T) {
	f := newTicketFixture(t, 1000, 0)

	// Quantities past the cap are refused outright; without the cap a
	// quantity near math.MaxInt64/150 overflows the total into a negative
	// number, which would slip through the balance guard and credit the
	// account instead of debiting it.
	for _, quantity := range []int64{101, 1 << 40, 92233720368547759} {
		_, err := f.tickets.BuyTickets(context.Background(), f.student.ID, quantity)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "quantity %d", quantity)
	}

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	assert.Equal(t, int64(1000), student.Balance)
	assert.Zero(t, student.Tickets)
	assert.Empty(t, student.History)
}

func TestBuyTicketsTotalNeverNegative(t *testing.T) {
	f := newTicketFixture(t, 1000, 0)

	result, err := f.tickets.BuyTickets(context.Background(), f.student.ID, utils.MaxTicketsPerPurchase)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
	assert.Nil(t, result)

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	assert.Equal(t, int64(1000), student.Balance, "a failed purchase must not move the balance")
}

func TestBuyTicketsRejectsZeroQuantity(t *testing.T) {
	f := newTicketFixture(t, 1000, 0)

	_, err := f.tickets.BuyTickets(context.Background(), f.student.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRedeemTicketConsumesOne(t *testing.T) {
	f := newTicketFixture(t, 100, 3)

	result, err := f.tickets.RedeemTicket(context.Background(), f.driverID, f.qrPayload(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, int64(2), result.Tickets)

	require.Len(t, f.validations.validations, 1)
	record := f.validations.validations[0]
	assert.True(t, record.IsValid)
	assert.Equal(t, int64(150), record.Amount)
	assert.Equal(t, f.student.ID, record.StudentID)
	assert.Equal(t, f.driverID, record.DriverID)

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	require.Len(t, student.History, 1)
	assert.Equal(t, models.HistoryTypeValidation, student.History[0].Type)
}

func TestRedeemTicketWithoutTickets(t *testing.T) {
	f := newTicketFixture(t, 100, 0)

	result, err := f.tickets.RedeemTicket(context.Background(), f.driverID, f.qrPayload(t))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Zero(t, result.Tickets)

	// The rejection itself is recorded.
	require.Len(t, f.validations.validations, 1)
	record := f.validations.validations[0]
	assert.False(t, record.IsValid)
	assert.Zero(t, record.Amount)

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	assert.Empty(t, student.History)
}

func TestRedeemTicketIgnoresStaleCounts(t *testing.T) {
	f := newTicketFixture(t, 100, 0)

	// A QR code claiming tickets exist is still refused; only the id in the
	// payload is trusted, the count is re-read from the store.
	payload, err := json.Marshal(models.QRPayload{ID: f.student.ID.Hex(), Tickets: 5, Balance: 9000})
	require.NoError(t, err)

	result, err := f.tickets.RedeemTicket(context.Background(), f.driverID, string(payload))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestRedeemTicketMalformedPayload(t *testing.T) {
	f := newTicketFixture(t, 100, 1)

	for _, raw := range []string{"not json", `{"id":"nothex"}`, `{}`} {
		_, err := f.tickets.RedeemTicket(context.Background(), f.driverID, raw)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Empty(t, f.validations.validations)
}

func TestRedeemTicketUnknownStudent(t *testing.T) {
	f := newTicketFixture(t, 100, 1)

	payload, err := json.Marshal(models.QRPayload{ID: primitive.NewObjectID().Hex()})
	require.NoError(t, err)

	_, err = f.tickets.RedeemTicket(context.Background(), f.driverID, string(payload))
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestRedeemLastTicketConcurrently(t *testing.T) {
	f := newTicketFixture(t, 100, 1)
	payload := f.qrPayload(t)

	const scanners = 8
	results := make([]*RedemptionResult, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.tickets.RedeemTicket(context.Background(), primitive.NewObjectID(), payload)
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	var valid int
	for _, result := range results {
		if result.IsValid {
			valid++
		}
	}
	assert.Equal(t, 1, valid, "exactly one scan may consume the last ticket")

	student, _ := f.students.GetByID(context.Background(), f.student.ID)
	assert.Zero(t, student.Tickets)
	assert.Len(t, f.validations.validations, scanners)
}
