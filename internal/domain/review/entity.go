// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/catalog"
)

// Review is a buyer's star rating of a pet. New reviews wait for admin
// approval and only approved ones count towards the pet's rating.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PetID     uint      `gorm:"not null;uniqueIndex:idx_pet_reviews_pet_user" json:"pet_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_pet_reviews_pet_user;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Title     string    `gorm:"size:255" json:"title"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Approved  bool      `gorm:"default:false;index" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *Author      `gorm:"-" json:"author,omitempty"`
	Pet    *catalog.Pet `gorm:"foreignKey:PetID" json:"pet,omitempty"`
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "pet_reviews"
}

// Author is the public part of the reviewing user
type Author struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Summary aggregates the approved reviews of one pet
type Summary struct {
	TotalReviews    int64            `json:"total_reviews"`
	AverageRating   float64          `json:"average_rating"`
	RatingBreakdown map[string]int64 `json:"rating_breakdown"`
}
