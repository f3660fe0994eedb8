// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is a physical pet shop that stocks pets and products
type Store struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:100" json:"name"`
	Address      string    `gorm:"not null;size:255" json:"address"`
	City         string    `gorm:"not null;size:50;index" json:"city"`
	ContactPhone string    `gorm:"size:20" json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Pets     []Pet     `gorm:"foreignKey:StoreID" json:"pets,omitempty"`
	Products []Product `gorm:"foreignKey:StoreID" json:"products,omitempty"`
}

// PetCategory groups pets (Dogs, Cats, Birds, ...)
type PetCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;size:50" json:"name"`
}

// Pet is a live animal listed for sale
type Pet struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null;size:100" json:"name"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Breed         string          `gorm:"size:100" json:"breed,omitempty"`
	Age           float64         `gorm:"not null" json:"age"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Image         string          `gorm:"size:500" json:"image"`
	StoreID       uint            `gorm:"not null;index" json:"store_id"`
	Description   string          `gorm:"type:text" json:"description"`
	AverageRating float64         `gorm:"default:0" json:"average_rating"`
	ReviewCount   int64           `gorm:"default:0" json:"review_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Category *PetCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Store    *Store       `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

// ProductCategory groups products for one pet category (e.g. "Food (Dogs)")
type ProductCategory struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"not null;size:50" json:"name"`
	PetCategoryID uint   `gorm:"not null;index" json:"pet_category_id"`
	Slug          string `gorm:"uniqueIndex;size:100" json:"slug"`
	Image         string `gorm:"size:500" json:"image,omitempty"`

	PetCategory *PetCategory `gorm:"foreignKey:PetCategoryID" json:"pet_category,omitempty"`
}

// Product is a non-living item: food, accessories, medicine, cages, ...
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:100" json:"name"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Image       string          `gorm:"size:500" json:"image"`
	StoreID     uint            `gorm:"not null;index" json:"store_id"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Store    *Store           `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

func (Store) TableName() string           { return "stores" }
func (PetCategory) TableName() string     { return "pet_categories" }
func (Pet) TableName() string             { return "pets" }
func (ProductCategory) TableName() string { return "product_categories" }
func (Product) TableName() string         { return "products" }

// DisplayName returns "Name - Breed" when a breed is known
func (p *Pet) DisplayName() string {
	if p.Breed == "" {
		return p.Name
	}
	return p.Name + " - " + p.Breed
}
