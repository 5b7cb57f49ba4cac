package payment

import (
	"context"
)

// Internal status vocabulary every provider maps into.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Provider abstracts a mobile-money gateway. The ledger only ever talks to
// providers through this interface; provider-specific reference fields live
// in the request/response structs so callers never branch on identity.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, request *InitiateRequest) (*InitiateResponse, error)
	CheckStatus(ctx context.Context, request *StatusRequest) (*StatusResponse, error)
	MapStatus(providerStatus string) string
}

type InitiateRequest struct {
	PhoneNumber string                 `json:"phone_number"` // canonical 8-digit form
	Amount      int64                  `json:"amount"`       // CFA francs
	Network     string                 `json:"network"`      // FLOOZ, TMONEY or AUTO
	Description string                 `json:"description"`
	Identifier  string                 `json:"identifier"` // our unique reference
	StudentID   string                 `json:"student_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type InitiateResponse struct {
	ProviderTxID      string `json:"provider_tx_id"`
	Reference         string `json:"reference"`
	MerchantReference string `json:"merchant_reference"`
	Status            string `json:"status"` // provider vocabulary
}

// StatusRequest carries every reference a provider might key on; each
// implementation reads the field it assigned at initiation.
type StatusRequest struct {
	ProviderTxID      string `json:"provider_tx_id"`
	Identifier        string `json:"identifier"`
	MerchantReference string `json:"merchant_reference"`
}

type StatusResponse struct {
	ProviderTxID string `json:"provider_tx_id"`
	Reference    string `json:"reference"`
	Status       string `json:"status"` // provider vocabulary
	Amount       int64  `json:"amount"`
}
