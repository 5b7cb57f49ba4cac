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
	payGatePayURL    = "https://paygateglobal.com/api/v1/pay"
	payGateStatusURL = "https://paygateglobal.com/api/v2/status"
)

// PayGateProvider drives the PayGateGlobal direct-pay API. It keys
// transactions by our own identifier and answers status checks with
// numeric codes.
type PayGateProvider struct {
	apiKey     string
	payURL     string
	statusURL  string
	httpClient *http.Client
}

func NewPayGateProvider(apiKey string, timeout time.Duration) *PayGateProvider {
	return &PayGateProvider{
		apiKey:     apiKey,
		payURL:     payGatePayURL,
		statusURL:  payGateStatusURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *PayGateProvider) Name() string {
	return "paygate"
}

func (p *PayGateProvider) Initiate(ctx context.Context, request *InitiateRequest) (*InitiateResponse, error) {
	network := request.Network
	if network == "" || network == "AUTO" {
		network = "FLOOZ"
	}

	body := map[string]interface{}{
		"auth_token":   p.apiKey,
		"phone_number": request.PhoneNumber,
		"amount":       request.Amount,
		"network":      network,
		"description":  request.Description,
		"identifier":   request.Identifier,
	}

	var result struct {
		TxReference      json.Number `json:"tx_reference"`
		Status           json.Number `json:"status"`
		PaymentReference string      `json:"payment_reference"`
	}
	if err := p.post(ctx, p.payURL, body, &result); err != nil {
		return nil, fmt.Errorf("paygate pay: %w", err)
	}

	return &InitiateResponse{
		ProviderTxID:      result.TxReference.String(),
		Reference:         result.PaymentReference,
		MerchantReference: request.Identifier,
		Status:            result.Status.String(),
	}, nil
}

func (p *PayGateProvider) CheckStatus(ctx context.Context, request *StatusRequest) (*StatusResponse, error) {
	body := map[string]interface{}{
		"auth_token": p.apiKey,
		"identifier": request.Identifier,
	}

	var result struct {
		TxReference      json.Number `json:"tx_reference"`
		Status           json.Number `json:"status"`
		Amount           int64       `json:"amount"`
		PaymentReference string      `json:"payment_reference"`
	}
	if err := p.post(ctx, p.statusURL, body, &result); err != nil {
		return nil, fmt.Errorf("paygate status check: %w", err)
	}

	return &StatusResponse{
		ProviderTxID: result.TxReference.String(),
		Reference:    result.PaymentReference,
		Status:       result.Status.String(),
		Amount:       result.Amount,
	}, nil
}

// MapStatus translates PayGate's numeric codes: 0 paid, 2 in progress,
// 4 expired, 6 canceled. Unknown codes stay pending.
func (p *PayGateProvider) MapStatus(providerStatus string) string {
	switch providerStatus {
	case "0":
		return StatusSuccess
	case "4", "6":
		return StatusFailed
	default:
		return StatusPending
	}
}

func (p *PayGateProvider) post(ctx context.Context, url string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
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
		return fmt.Errorf("paygate API error: status %d: %s", resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}
