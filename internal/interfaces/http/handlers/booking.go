// internal/interfaces/http/handlers/booking.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/booking"
)

// BookingHandler handles pet care services and bookings
type BookingHandler struct {
	bookingService *booking.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *booking.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// GetServices handles GET /services
func (h *BookingHandler) GetServices(c *gin.Context) {
	services, err := h.bookingService.ListServices(queryInt(c, "page", 1))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": services})
}

// GetService handles GET /services/:slug
func (h *BookingHandler) GetService(c *gin.Context) {
	service, err := h.bookingService.GetService(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": service})
}

// GetCenters handles GET /service-centers
func (h *BookingHandler) GetCenters(c *gin.Context) {
	centers, err := h.bookingService.ListCenters()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": centers})
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	b, err := h.bookingService.CreateBooking(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Your booking has been received",
		"data":    b,
	})
}

// GetUserBookings handles GET /bookings
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListUserBookings(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bookings})
}

// CreateServiceRequest is the admin form for a new service
type CreateServiceRequest struct {
	Title        string `json:"title" binding:"required,max=100"`
	Description  string `json:"description" binding:"required"`
	IconClass    string `json:"icon_class"`
	DisplayOrder int    `json:"order"`
}

// CreateService handles POST /admin/services
func (h *BookingHandler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	service, err := h.bookingService.CreateService(req.Title, req.Description, req.IconClass, req.DisplayOrder)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": service})
}

// UpdateStatusRequest is the admin booking status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /admin/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	b, err := h.bookingService.UpdateStatus(bookingID, booking.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": b})
}
