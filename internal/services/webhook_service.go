package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ukbus/internal/apperrors"
	"ukbus/internal/repositories/interfaces"
	"ukbus/pkg/logger"
)

// WebhookService authenticates inbound provider notifications and maps
// their event vocabulary onto the ledger. Business failures during ingestion
// are logged and swallowed: the HTTP endpoint acknowledges everything whose
// signature checks out, and duplicate deliveries are absorbed by the
// ledger's idempotent transitions.
type WebhookService interface {
	VerifySignature(rawBody []byte, signatureHeader string) error
	Ingest(ctx context.Context, eventType string, entity *WebhookEntity) error
}

// WebhookEntity is the transaction snapshot a provider embeds in its events.
type WebhookEntity struct {
	ID                json.Number `json:"id"`
	Reference         string      `json:"reference"`
	Status            string      `json:"status"`
	Amount            int64       `json:"amount"`
	MerchantReference string      `json:"merchant_reference"`
}

type webhookService struct {
	ledger    LedgerService
	secret    string
	tolerance time.Duration
	cache     CacheService
	logger    *logger.Logger
	now       func() time.Time
}

func NewWebhookService(ledger LedgerService, secret string, tolerance time.Duration, cache CacheService, log *logger.Logger) WebhookService {
	return &webhookService{
		ledger:    ledger,
		secret:    secret,
		tolerance: tolerance,
		cache:     cache,
		logger:    log,
		now:       time.Now,
	}
}

// VerifySignature checks the `t=<unix>,v1=<hex hmac-sha256>` header. The
// signed message is "<t>.<rawBody>"; timestamps older than the tolerance
// window are rejected to blunt replays, and the digest comparison is
// constant-time.
func (s *webhookService) VerifySignature(rawBody []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return fmt.Errorf("%w: missing signature header", apperrors.ErrInvalidSignature)
	}

	var timestamp, signature string
	for _, element := range strings.Split(signatureHeader, ",") {
		key, value, found := strings.Cut(element, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}

	if timestamp == "" || signature == "" {
		return fmt.Errorf("%w: malformed signature header", apperrors.ErrInvalidSignature)
	}

	webhookTime, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", apperrors.ErrInvalidSignature)
	}
	if s.now().Unix()-webhookTime > int64(s.tolerance.Seconds()) {
		return apperrors.ErrStaleWebhook
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: bad digest encoding", apperrors.ErrInvalidSignature)
	}

	if !hmac.Equal(expected, supplied) {
		return apperrors.ErrInvalidSignature
	}

	return nil
}

// Ingest routes one event into the ledger. Unknown event types and unknown
// transactions are logged and acknowledged; returning an error here would
// only trigger a redelivery storm for something a retry cannot fix.
func (s *webhookService) Ingest(ctx context.Context, eventType string, entity *WebhookEntity) error {
	log := s.logger.WithFields(map[string]interface{}{
		"event_type":  eventType,
		"provider_id": entity.ID.String(),
	})
	log.Info("webhook event received")

	s.countEvent(ctx, eventType)

	lookup := interfaces.TransactionLookup{
		ProviderTxID:      entity.ID.String(),
		MerchantReference: entity.MerchantReference,
	}

	var err error
	switch eventType {
	case "transaction.created":
		// Attach provider ids to our pending record; no status change.
		err = s.ledger.AttachProviderReferences(ctx, lookup, entity.ID.String(), entity.Reference)

	case "transaction.approved":
		_, err = s.ledger.ApplyProviderStatus(ctx, lookup, "approved")

	case "transaction.transferred":
		if _, err = s.ledger.ApplyProviderStatus(ctx, lookup, "transferred"); err == nil {
			err = s.ledger.StampMetadata(ctx, lookup, map[string]interface{}{
				"transferred_at":  s.now(),
				"transfer_status": "completed",
			})
		}

	case "transaction.canceled", "transaction.declined", "transaction.expired":
		status := strings.TrimPrefix(eventType, "transaction.")
		_, err = s.ledger.ApplyProviderStatus(ctx, lookup, status)

	case "transaction.updated":
		// Re-derive from the entity's own status field.
		_, err = s.ledger.ApplyProviderStatus(ctx, lookup, entity.Status)

	default:
		log.Warn("unhandled webhook event type")
		return nil
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			log.Warn("webhook references unknown transaction")
			return nil
		}
		log.WithError(err).Error("webhook ingestion failed")
		return nil
	}

	return nil
}

// countEvent keeps a per-event-type counter in the cache for observability;
// failures are ignored.
func (s *webhookService) countEvent(ctx context.Context, eventType string) {
	if s.cache == nil {
		return
	}
	_, _ = s.cache.Increment(ctx, "webhook_events_"+eventType)
}
