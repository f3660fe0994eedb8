// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/shopspring/decimal"
)

// Cart is owned either by a guest session token or by a user, never both.
// Guest carts are deleted once merged into a user's scope.
type Cart struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionToken *string   `gorm:"size:64" json:"-"`
	UserID       *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LineStatus is the lifecycle state of a cart line. Every query that
// reads the "current" cart must filter on LineActive.
type LineStatus string

const (
	LineActive  LineStatus = "active"
	LineRemoved LineStatus = "removed"
)

// CartLine is one quantity-bearing entry. Guest lines carry CartID,
// authenticated lines carry UserID directly.
type CartLine struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    *uint       `gorm:"index" json:"user_id,omitempty"`
	CartID    *uint       `gorm:"index" json:"cart_id,omitempty"`
	Item      itemref.Ref `gorm:"embedded" json:"item"`
	Quantity  int         `gorm:"not null;default:1" json:"quantity"`
	Status    LineStatus  `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Cart) TableName() string     { return "carts" }
func (CartLine) TableName() string { return "cart_lines" }

// IsActive reports whether the line still counts towards the cart
func (l *CartLine) IsActive() bool {
	return l.Status == LineActive
}

// Scope identifies whose cart a request operates on. UserID wins when set.
type Scope struct {
	SessionToken string
	UserID       *uint
}

// Authenticated reports whether the scope belongs to a signed-in user
func (s Scope) Authenticated() bool {
	return s.UserID != nil
}

// Totals are computed from live catalog prices over active lines only
type Totals struct {
	TotalQuantity int             `json:"total_qty"`
	TotalPrice    decimal.Decimal `json:"total"`
}

// LineResult is returned by every line mutation
type LineResult struct {
	LineID   uint            `json:"item_id"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Totals
}

// LineView is a cart line joined with its catalog item
type LineView struct {
	ID        uint            `json:"id"`
	Item      itemref.Ref     `json:"item"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Missing   bool            `json:"missing,omitempty"`
}

// View is the full cart as shown to the shopper
type View struct {
	CartID *uint      `json:"cart_id,omitempty"`
	Lines  []LineView `json:"lines"`
	Totals
}
