package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string
type PaymentNetwork string
type PaymentProvider string

const (
	TransactionTypeRecharge TransactionType = "recharge"
	TransactionTypePurchase TransactionType = "purchase"

	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"

	NetworkFlooz  PaymentNetwork = "FLOOZ"
	NetworkTMoney PaymentNetwork = "TMONEY"
	NetworkAuto   PaymentNetwork = "AUTO"

	ProviderFedaPay PaymentProvider = "fedapay"
	ProviderPayGate PaymentProvider = "paygate"
)

// Transaction is the ledger record for one payment intent. Identifier is
// client-generated, immutable and unique; amount never changes after
// creation; status only moves pending -> success or pending -> failed.
type Transaction struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID primitive.ObjectID `json:"student_id" bson:"student_id" validate:"required"`
	Type      TransactionType    `json:"type" bson:"type" validate:"required"`
	Amount    int64              `json:"amount" bson:"amount" validate:"required,gt=0"`
	Status    TransactionStatus  `json:"status" bson:"status" default:"pending"`

	// Identifier is our own unique reference, generated at creation.
	Identifier string `json:"identifier" bson:"identifier" validate:"required"`

	// Provider-assigned references, attached once the provider answers.
	Provider          PaymentProvider `json:"provider" bson:"provider"`
	ProviderTxID      string          `json:"provider_tx_id" bson:"provider_tx_id,omitempty"`
	ProviderReference string          `json:"provider_reference" bson:"provider_reference,omitempty"`
	MerchantReference string          `json:"merchant_reference" bson:"merchant_reference,omitempty"`

	Network  PaymentNetwork         `json:"network" bson:"network"`
	Metadata map[string]interface{} `json:"metadata" bson:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the status may no longer change.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
