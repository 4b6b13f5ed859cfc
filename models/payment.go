package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records the single payment attached to an order. COD payments
// complete only via explicit staff confirmation; online payments only via a
// signature-verified callback or webhook.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Order           Order           `gorm:"foreignKey:OrderID" json:"order"`
	Method          string          `gorm:"type:varchar(10);not null" json:"method"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status          string          `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	RazorpayOrderID string          `gorm:"type:varchar(64);index" json:"razorpay_order_id,omitempty"`
	TransactionID   string          `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	VerifiedBy      *uint           `json:"verified_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
