// internal/domain/booking/service.go
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/pkg/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const servicesPerPage = 6

var (
	ErrInvalidBooking  = errors.New("invalid booking")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrServiceNotFound = errors.New("service not found")
	ErrCenterNotFound  = errors.New("service center not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// BookingService handles service listings and appointments
type BookingService struct {
	db         *gorm.DB
	dispatcher *notify.Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB, dispatcher *notify.Dispatcher, logger *logrus.Logger) *BookingService {
	return &BookingService{
		db:         db,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ServiceListResponse represents a page of services
type ServiceListResponse struct {
	Services   []Service          `json:"services"`
	Pagination catalog.Pagination `json:"pagination"`
}

// CreateBookingRequest represents the booking form
type CreateBookingRequest struct {
	ServiceID       uint   `json:"service_id" binding:"required"`
	ServiceLocation string `json:"service_location" binding:"required"`
	ServiceCenterID *uint  `json:"service_center_id"`
	HomeAddress     string `json:"home_address"`
	ContactNumber   string `json:"contact_number"`
	Email           string `json:"email" binding:"required,email"`
	PetName         string `json:"pet_name" binding:"required"`
	PetType         string `json:"pet_type" binding:"required"`
	BookingDate     string `json:"booking_date" binding:"required"` // YYYY-MM-DD
	BookingTime     string `json:"booking_time" binding:"required"` // HH:MM
	Notes           string `json:"notes"`
}

// ListServices returns one page of services in display order
func (s *BookingService) ListServices(page int) (*ServiceListResponse, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.Model(&Service{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count services: %w", err)
	}

	var services []Service
	err := s.db.Order("display_order ASC, title ASC").
		Offset((page - 1) * servicesPerPage).
		Limit(servicesPerPage).
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve services: %w", err)
	}

	return &ServiceListResponse{
		Services:   services,
		Pagination: catalog.NewPagination(page, servicesPerPage, total),
	}, nil
}

// GetService retrieves a service by slug
func (s *BookingService) GetService(slugValue string) (*Service, error) {
	var service Service
	if err := s.db.Where("slug = ?", slugValue).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to retrieve service: %w", err)
	}
	return &service, nil
}

// CreateService adds a service, deriving its slug from the title
func (s *BookingService) CreateService(title, description, iconClass string, order int) (*Service, error) {
	service := Service{
		Title:        strings.TrimSpace(title),
		Slug:         slug.Make(title),
		Description:  description,
		IconClass:    iconClass,
		DisplayOrder: order,
	}
	if service.Title == "" || service.Slug == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidBooking)
	}
	if service.IconClass == "" {
		service.IconClass = "fas fa-paw"
	}

	if err := s.db.Create(&service).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return &service, nil
}

// ListCenters returns every service center
func (s *BookingService) ListCenters() ([]ServiceCenter, error) {
	var centers []ServiceCenter
	if err := s.db.Order("name ASC").Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve service centers: %w", err)
	}
	return centers, nil
}

// CreateBooking validates the form and books the appointment
func (s *BookingService) CreateBooking(userID uint, req *CreateBookingRequest) (*Booking, error) {
	var service Service
	if err := s.db.First(&service, req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to retrieve service: %w", err)
	}

	b := &Booking{
		UserID:          userID,
		ServiceID:       service.ID,
		ServiceLocation: Location(strings.ToLower(strings.TrimSpace(req.ServiceLocation))),
		Email:           strings.TrimSpace(req.Email),
		PetName:         strings.TrimSpace(req.PetName),
		PetType:         strings.TrimSpace(req.PetType),
		BookingTime:     strings.TrimSpace(req.BookingTime),
		Notes:           req.Notes,
		Status:          StatusPending,
	}

	switch b.ServiceLocation {
	case LocationCenter:
		if req.ServiceCenterID == nil {
			return nil, fmt.Errorf("%w: please select a service center", ErrInvalidBooking)
		}
		var center ServiceCenter
		if err := s.db.First(&center, *req.ServiceCenterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCenterNotFound
			}
			return nil, fmt.Errorf("failed to retrieve service center: %w", err)
		}
		b.ServiceCenterID = &center.ID
		b.ServiceCenter = &center

	case LocationHome:
		b.HomeAddress = strings.TrimSpace(req.HomeAddress)
		b.ContactNumber = strings.TrimSpace(req.ContactNumber)
		if b.HomeAddress == "" || b.ContactNumber == "" {
			return nil, fmt.Errorf("%w: home address and contact number are required for home service", ErrInvalidBooking)
		}

	default:
		return nil, fmt.Errorf("%w: service location must be center or home", ErrInvalidBooking)
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.BookingDate))
	if err != nil {
		return nil, fmt.Errorf("%w: booking date must be YYYY-MM-DD", ErrInvalidBooking)
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, fmt.Errorf("%w: booking date is in the past", ErrInvalidBooking)
	}
	if _, err := time.Parse("15:04", b.BookingTime); err != nil {
		return nil, fmt.Errorf("%w: booking time must be HH:MM", ErrInvalidBooking)
	}
	b.BookingDate = date

	if err := s.db.Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	b.Service = &service

	s.logger.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"user_id":    userID,
		"service":    service.Slug,
	}).Info("booking created")

	return b, nil
}

// ListUserBookings returns a user's bookings, most recent first
func (s *BookingService) ListUserBookings(userID uint) ([]Booking, error) {
	var bookings []Booking
	err := s.db.Preload("Service").Preload("ServiceCenter").
		Where("user_id = ?", userID).
		Order("booking_date DESC, booking_time DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus changes a booking's status and notifies the booking contact.
// Setting the current status again sends nothing.
func (s *BookingService) UpdateStatus(bookingID uint, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var b Booking
	if err := s.db.Preload("Service").First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}

	if b.Status == status {
		return &b, nil
	}

	if err := s.db.Model(&b).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	b.Status = status

	serviceName := ""
	if b.Service != nil {
		serviceName = b.Service.Title
	}
	s.dispatcher.BookingStatusChanged(notify.BookingEvent{
		BookingID:   b.ID,
		Email:       b.Email,
		PetName:     b.PetName,
		ServiceName: serviceName,
		Date:        b.BookingDate.Format("2006-01-02"),
		Time:        b.BookingTime,
		Status:      string(status),
	})

	return &b, nil
}
