package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fedaPaySandboxURL = "https://sandbox-api.fedapay.com/v1"
	fedaPayLiveURL    = "https://api.fedapay.com/v1"
)

// FedaPayProvider drives the FedaPay transactions API. A created transaction
// is immediately pushed to the payer's phone; the push step failing does not
// fail the initiation, the payer can still be reached through a later retry
// or the hosted payment page.
type FedaPayProvider struct {
	apiKey      string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

func NewFedaPayProvider(apiKey, environment, callbackURL string, timeout time.Duration) *FedaPayProvider {
	baseURL := fedaPaySandboxURL
	if environment == "live" {
		baseURL = fedaPayLiveURL
	}

	return &FedaPayProvider{
		apiKey:      apiKey,
		baseURL:     baseURL,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (p *FedaPayProvider) Name() string {
	return "fedapay"
}

type fedaPayTransaction struct {
	ID                int64                  `json:"id"`
	Reference         string                 `json:"reference"`
	Amount            int64                  `json:"amount"`
	Status            string                 `json:"status"`
	MerchantReference string                 `json:"merchant_reference"`
	CustomMetadata    map[string]interface{} `json:"custom_metadata"`
}

type fedaPayEnvelope struct {
	Transaction fedaPayTransaction `json:"v1/transaction"`
}

func (p *FedaPayProvider) Initiate(ctx context.Context, request *InitiateRequest) (*InitiateResponse, error) {
	merchantReference := fmt.Sprintf("UKBUS-%d-%s", time.Now().UnixMilli(), request.StudentID)

	metadata := map[string]interface{}{
		"student_id": request.StudentID,
		"service":    "ukbus_recharge",
		"network":    request.Network,
	}
	for k, v := range request.Metadata {
		metadata[k] = v
	}

	body := map[string]interface{}{
		"description":        request.Description,
		"amount":             request.Amount,
		"currency":           map[string]string{"iso": "XOF"},
		"callback_url":       p.callbackURL,
		"merchant_reference": merchantReference,
		"customer": map[string]interface{}{
			"phone_number": map[string]string{
				"number":  request.PhoneNumber,
				"country": "TG",
			},
		},
		"custom_metadata": metadata,
	}

	var envelope fedaPayEnvelope
	if err := p.post(ctx, "/transactions", body, &envelope); err != nil {
		return nil, fmt.Errorf("fedapay transaction create: %w", err)
	}

	tx := envelope.Transaction
	providerTxID := fmt.Sprintf("%d", tx.ID)

	if err := p.sendMobilePayment(ctx, tx.ID, request.PhoneNumber, request.Network); err != nil {
		// Non-fatal: the webhook or a status poll resolves the outcome.
		return &InitiateResponse{
			ProviderTxID:      providerTxID,
			Reference:         tx.Reference,
			MerchantReference: merchantReference,
			Status:            tx.Status,
		}, nil
	}

	return &InitiateResponse{
		ProviderTxID:      providerTxID,
		Reference:         tx.Reference,
		MerchantReference: merchantReference,
		Status:            tx.Status,
	}, nil
}

// sendMobilePayment generates a payment token and triggers the USSD push on
// the payer's phone. mtn_open works for every Togolese operator; a network
// hint selects the operator-specific method.
func (p *FedaPayProvider) sendMobilePayment(ctx context.Context, transactionID int64, phoneNumber, network string) error {
	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := p.post(ctx, fmt.Sprintf("/transactions/%d/token", transactionID), map[string]interface{}{}, &tokenResp); err != nil {
		return fmt.Errorf("fedapay token: %w", err)
	}

	paymentMethod := "mtn_open"
	switch network {
	case "FLOOZ":
		paymentMethod = "moov_togo"
	case "TMONEY":
		paymentMethod = "togocom"
	}

	body := map[string]interface{}{
		"token": tokenResp.Token,
		"phone_number": map[string]string{
			"number":  phoneNumber,
			"country": "TG",
		},
	}

	var ignored json.RawMessage
	if err := p.post(ctx, "/"+paymentMethod, body, &ignored); err != nil {
		return fmt.Errorf("fedapay mobile payment: %w", err)
	}

	return nil
}

func (p *FedaPayProvider) CheckStatus(ctx context.Context, request *StatusRequest) (*StatusResponse, error) {
	var envelope fedaPayEnvelope
	if err := p.get(ctx, "/transactions/"+request.ProviderTxID, &envelope); err != nil {
		return nil, fmt.Errorf("fedapay status check: %w", err)
	}

	tx := envelope.Transaction
	return &StatusResponse{
		ProviderTxID: fmt.Sprintf("%d", tx.ID),
		Reference:    tx.Reference,
		Status:       tx.Status,
		Amount:       tx.Amount,
	}, nil
}

// MapStatus translates FedaPay's vocabulary into ours. Anything unknown is
// treated as still pending so a later event can settle it.
func (p *FedaPayProvider) MapStatus(providerStatus string) string {
	switch providerStatus {
	case "approved", "transferred":
		return StatusSuccess
	case "canceled", "declined", "expired":
		return StatusFailed
	default:
		return StatusPending
	}
}

func (p *FedaPayProvider) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	return p.do(req, out)
}

func (p *FedaPayProvider) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}

	return p.do(req, out)
}

func (p *FedaPayProvider) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fedapay API error: status %d: %s", resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}
