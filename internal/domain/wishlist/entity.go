// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/shopspring/decimal"
)

// WishlistEntry marks one pet or product a user wants to keep an eye on.
// (user_id, item_type, item_id) is unique.
type WishlistEntry struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	Item      itemref.Ref `gorm:"embedded" json:"item"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides the table name
func (WishlistEntry) TableName() string {
	return "wishlist_entries"
}

// ToggleResult reports the membership after a toggle and the new count
type ToggleResult struct {
	Added bool  `json:"added"`
	Count int64 `json:"count"`
}

// EntryView is a wishlist entry joined with its catalog item
type EntryView struct {
	ID      uint            `json:"id"`
	Item    itemref.Ref     `json:"item"`
	Name    string          `json:"name"`
	Image   string          `json:"image,omitempty"`
	Price   decimal.Decimal `json:"price"`
	AddedAt time.Time       `json:"added_at"`
	Missing bool            `json:"missing,omitempty"`
}
