package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HistoryType string

const (
	HistoryTypePurchase   HistoryType = "purchase"
	HistoryTypeValidation HistoryType = "validation"
)

// HistoryEntry is one line of a student's append-only balance history.
// Entries are written on ticket purchase and ticket validation; recharge
// credits do not append history.
type HistoryEntry struct {
	Type      HistoryType `json:"type" bson:"type"`
	Amount    int64       `json:"amount" bson:"amount"`
	Date      time.Time   `json:"date" bson:"date"`
	Reference string      `json:"reference,omitempty" bson:"reference,omitempty"`
}

type Student struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName string             `json:"first_name" bson:"first_name" validate:"required"`
	LastName  string             `json:"last_name" bson:"last_name" validate:"required"`
	Phone     string             `json:"phone" bson:"phone" validate:"required"`
	Password  string             `json:"-" bson:"password" validate:"required"`

	// Balance and Tickets are in CFA francs / whole tickets and are only
	// ever mutated through the conditional repository operations.
	Balance int64          `json:"balance" bson:"balance"`
	Tickets int64          `json:"tickets" bson:"tickets"`
	History []HistoryEntry `json:"history" bson:"history"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
