package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/services"
	"ukbus/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWebhookService struct {
	verifyErr error
	ingested  []string
}

func (s *stubWebhookService) VerifySignature(_ []byte, _ string) error {
	return s.verifyErr
}

func (s *stubWebhookService) Ingest(_ context.Context, eventType string, _ *services.WebhookEntity) error {
	s.ingested = append(s.ingested, eventType)
	return nil
}

type stubLedgerService struct {
	applied  []interfaces.TransactionLookup
	statuses []string
	applyErr error
}

func (s *stubLedgerService) OpenRecharge(_ context.Context, _ *services.RechargeRequest) (*models.Transaction, error) {
	return nil, nil
}

func (s *stubLedgerService) ApplyProviderStatus(_ context.Context, lookup interfaces.TransactionLookup, providerStatus string) (*models.Transaction, error) {
	s.applied = append(s.applied, lookup)
	s.statuses = append(s.statuses, providerStatus)
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	return &models.Transaction{Status: models.TransactionStatusSuccess}, nil
}

func (s *stubLedgerService) GetStatus(_ context.Context, _ string) (*models.Transaction, error) {
	return nil, nil
}

func (s *stubLedgerService) AttachProviderReferences(_ context.Context, _ interfaces.TransactionLookup, _, _ string) error {
	return nil
}

func (s *stubLedgerService) StampMetadata(_ context.Context, _ interfaces.TransactionLookup, _ map[string]interface{}) error {
	return nil
}

func newWebhookRouter(t *testing.T, webhooks *stubWebhookService, ledger *stubLedgerService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stdout"})
	require.NoError(t, err)

	handler := NewWebhookHandler(webhooks, ledger, log)
	router := gin.New()
	router.POST("/webhooks/fedapay", handler.FedaPay)
	router.POST("/webhooks/paygate", handler.PayGate)
	return router
}

func TestFedaPayWebhookAcksValidEvent(t *testing.T) {
	webhooks := &stubWebhookService{}
	router := newWebhookRouter(t, webhooks, &stubLedgerService{})

	body := []byte(`{"name":"transaction.approved","entity":{"id":42,"status":"approved"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/fedapay", bytes.NewReader(body))
	req.Header.Set("X-Fedapay-Signature", "t=1,v1=abc")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"event_type":"transaction.approved"`)
	assert.Equal(t, []string{"transaction.approved"}, webhooks.ingested)
}

func TestFedaPayWebhookRejectsBadSignature(t *testing.T) {
	webhooks := &stubWebhookService{verifyErr: apperrors.ErrInvalidSignature}
	router := newWebhookRouter(t, webhooks, &stubLedgerService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fedapay", bytes.NewReader([]byte(`{}`)))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, webhooks.ingested)
}

func TestFedaPayWebhookAcksMalformedBody(t *testing.T) {
	webhooks := &stubWebhookService{}
	router := newWebhookRouter(t, webhooks, &stubLedgerService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fedapay", bytes.NewReader([]byte(`not json`)))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	// Signature passed, so the provider still gets its 200.
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, webhooks.ingested)
}

func TestPayGateCallbackAppliesStatus(t *testing.T) {
	ledger := &stubLedgerService{}
	router := newWebhookRouter(t, &stubWebhookService{}, ledger)

	body := []byte(`{"identifier":"id-123","status":0,"amount":500}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paygate", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, ledger.applied, 1)
	assert.Equal(t, "id-123", ledger.applied[0].Identifier)
	assert.Equal(t, []string{"0"}, ledger.statuses)
}

func TestPayGateCallbackAcceptsTxStatusAlias(t *testing.T) {
	ledger := &stubLedgerService{}
	router := newWebhookRouter(t, &stubWebhookService{}, ledger)

	body := []byte(`{"identifier":"id-456","tx_status":4,"amount":500}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paygate", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, ledger.applied, 1)
	assert.Equal(t, "id-456", ledger.applied[0].Identifier)
	assert.Equal(t, []string{"4"}, ledger.statuses)
}

func TestPayGateCallbackAcksUnknownTransaction(t *testing.T) {
	ledger := &stubLedgerService{applyErr: apperrors.ErrTransactionNotFound}
	router := newWebhookRouter(t, &stubWebhookService{}, ledger)

	body := []byte(`{"identifier":"id-nope","tx_status":"0"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paygate", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestPayGateCallbackRequiresIdentifier(t *testing.T) {
	ledger := &stubLedgerService{}
	router := newWebhookRouter(t, &stubWebhookService{}, ledger)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/paygate", bytes.NewReader([]byte(`{"tx_status":0}`)))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, ledger.applied)
}
