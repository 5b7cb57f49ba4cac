package utils

import "time"

// Application Constants
const (
	AppName    = "UkBus"
	AppVersion = "1.0.0"

	DefaultCurrency = "XOF"
	CountryPrefix   = "228"

	// Authentication
	JWTAccessTokenTTL  = 15 * time.Minute
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 6
	BcryptCost         = 10

	// Payment Constants (amounts in CFA francs)
	TicketPrice           int64 = 150
	MaxTicketsPerPurchase int64 = 100
	MinimumRecharge       int64 = 100
	LowBalanceThreshold   int64 = 300
	ProviderCallTimeout         = 15 * time.Second
	WebhookToleranceSecs  int64 = 300

	// Cache TTLs
	TransactionCacheTTL = 30 * time.Minute
	StudentCacheTTL     = 5 * time.Minute
)

// API status strings
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
)
