// internal/domain/booking/entity.go
package booking

import (
	"time"
)

// Location is where a service is performed
type Location string

const (
	LocationCenter Location = "center"
	LocationHome   Location = "home"
)

// Status is the booking lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Service is a grooming, vet or training offering shown on the services page
type Service struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"uniqueIndex;not null;size:100" json:"title"`
	Slug         string    `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	IconClass    string    `gorm:"size:50;default:'fas fa-paw'" json:"icon_class"`
	DisplayOrder int       `gorm:"default:0" json:"order"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceCenter is a physical location where center bookings take place
type ServiceCenter struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"not null;size:100" json:"name"`
	Address   string  `gorm:"type:text;not null" json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Booking is a user's appointment for a service
type Booking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	ServiceID       uint      `gorm:"not null;index" json:"service_id"`
	ServiceLocation Location  `gorm:"not null;size:10" json:"service_location"`
	ServiceCenterID *uint     `gorm:"index" json:"service_center_id,omitempty"`
	HomeAddress     string    `gorm:"type:text" json:"home_address,omitempty"`
	ContactNumber   string    `gorm:"size:20" json:"contact_number,omitempty"`
	Email           string    `gorm:"not null;size:254" json:"email"`
	PetName         string    `gorm:"not null;size:100" json:"pet_name"`
	PetType         string    `gorm:"not null;size:50" json:"pet_type"`
	BookingDate     time.Time `gorm:"not null" json:"booking_date"`
	BookingTime     string    `gorm:"not null;size:5" json:"booking_time"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	Status          Status    `gorm:"not null;size:20;default:'pending';index" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Service       *Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ServiceCenter *ServiceCenter `gorm:"foreignKey:ServiceCenterID" json:"service_center,omitempty"`
}

func (Service) TableName() string       { return "services" }
func (ServiceCenter) TableName() string { return "service_centers" }
func (Booking) TableName() string       { return "bookings" }
