package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation records one ticket redemption attempt, including rejected
// attempts (IsValid=false, Amount=0). Immutable once created.
type Validation struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID primitive.ObjectID `json:"student_id" bson:"student" validate:"required"`
	DriverID  primitive.ObjectID `json:"driver_id" bson:"driver" validate:"required"`
	Amount    int64              `json:"amount" bson:"amount"`
	Date      time.Time          `json:"date" bson:"date"`
	IsValid   bool               `json:"is_valid" bson:"isValid"`
}

// QRPayload is what the student app encodes into the QR code at purchase
// time. Only ID is authoritative at redemption: balance and ticket counts
// are stale snapshots shown to the driver, never trusted for spending.
type QRPayload struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
	Tickets int64  `json:"tickets"`
	TS      int64  `json:"ts"`
}
