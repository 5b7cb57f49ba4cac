package apperrors

import (
	"errors"
)

var (
	ErrValidation     = errors.New("invalid input")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("access denied")

	ErrStudentNotFound     = errors.New("student not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrPhoneAlreadyUsed = errors.New("phone number already registered")

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoTicketAvailable   = errors.New("no ticket available")
	ErrAmountBelowMinimum  = errors.New("amount below minimum recharge")

	ErrPaymentInitiation = errors.New("payment initiation failed on all providers")

	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleWebhook     = errors.New("webhook timestamp outside tolerance")
)
