// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Order is a placed purchase. It keeps a one-line summary of what was
// bought and the amount charged, not the individual lines.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          *uint           `gorm:"index" json:"user_id,omitempty"`
	SessionToken    *string         `gorm:"size:64;index" json:"-"`
	ItemName        string          `gorm:"not null;size:255" json:"item_name"`
	BuyerName       string          `gorm:"not null;size:100" json:"buyer_name"`
	Email           string          `gorm:"not null;size:254;index" json:"email"`
	Phone           string          `gorm:"not null;size:20" json:"phone"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	PaymentMethod   payment.Method  `gorm:"not null;size:10" json:"payment_method"`
	UserUPIID       *string         `gorm:"column:user_upi_id;size:100" json:"user_upi_id,omitempty"`
	PaymentStatus   payment.Status  `gorm:"not null;size:20;default:'pending';index" json:"payment_status"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Reference is the human-facing order reference, also used as the UPI
// transaction reference
func (o *Order) Reference() string {
	return fmt.Sprintf("ORDER%d", o.ID)
}

// IsUPI reports whether the buyer chose to pay through a UPI app
func (o *Order) IsUPI() bool {
	return o.PaymentMethod == payment.MethodUPI
}

// String renders the order the way it appears in admin listings
func (o *Order) String() string {
	return fmt.Sprintf("Order #%d - %s", o.ID, o.ItemName)
}
