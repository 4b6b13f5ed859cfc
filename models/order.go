package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// OrderStatuses lists every valid status in workflow order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Order is the immutable financial record created at checkout. Once created,
// every monetary column is fixed for the life of the order; only Status
// changes afterwards.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	BranchID        uint            `gorm:"not null" json:"branch_id"`
	Branch          Branch          `gorm:"foreignKey:BranchID" json:"branch"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	FoodSubtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"food_subtotal"`
	DeliveryFeeBase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"delivery_fee_base"`
	PlatformFee     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"platform_fee"`
	Discount        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsTerminal reports whether no further status transition is allowed.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// CanTransitionTo validates a status change against the workflow:
// pending -> confirmed -> preparing -> out_for_delivery -> delivered, with
// cancelled reachable from any non-terminal state.
func (o *Order) CanTransitionTo(next string) bool {
	if o.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	forward := map[string]string{
		OrderStatusPending:        OrderStatusConfirmed,
		OrderStatusConfirmed:      OrderStatusPreparing,
		OrderStatusPreparing:      OrderStatusOutForDelivery,
		OrderStatusOutForDelivery: OrderStatusDelivered,
	}
	return forward[o.Status] == next
}
