// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/booking"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/checkout"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/pawverse/petstore-backend/internal/domain/review"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/pawverse/petstore-backend/internal/domain/wishlist"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/middleware"
	"github.com/pawverse/petstore-backend/internal/pkg/auth"
	"github.com/shopspring/decimal"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{itemref.ErrUnknownKind, http.StatusBadRequest},
	{checkout.ErrMissingFields, http.StatusBadRequest},
	{payment.ErrInvalidMethod, http.StatusBadRequest},
	{booking.ErrInvalidBooking, http.StatusBadRequest},
	{booking.ErrInvalidStatus, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},
	{user.ErrPasswordMismatch, http.StatusBadRequest},
	{cart.ErrNoSession, http.StatusBadRequest},
	{cart.ErrNoCart, http.StatusBadRequest},
	{cart.ErrEmptyCart, http.StatusBadRequest},
	{order.ErrNotUPIOrder, http.StatusBadRequest},
	{review.ErrInvalidReview, http.StatusBadRequest},

	{itemref.ErrItemNotFound, http.StatusNotFound},
	{cart.ErrLineNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{wishlist.ErrEntryNotFound, http.StatusNotFound},
	{catalog.ErrPetNotFound, http.StatusNotFound},
	{catalog.ErrProductNotFound, http.StatusNotFound},
	{catalog.ErrStoreNotFound, http.StatusNotFound},
	{catalog.ErrCategoryNotFound, http.StatusNotFound},
	{booking.ErrServiceNotFound, http.StatusNotFound},
	{booking.ErrCenterNotFound, http.StatusNotFound},
	{booking.ErrBookingNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},
	{review.ErrReviewNotFound, http.StatusNotFound},

	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrEmailTaken, http.StatusConflict},
	{order.ErrPaymentFinalized, http.StatusConflict},
	{review.ErrAlreadyReviewed, http.StatusConflict},
}

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError converts err into a {success:false, error} body. Unmapped
// errors are attached to the context for the request logger and hidden
// from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "Internal server error"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func respondBadRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// requestScope builds the cart scope from the session cookie and the
// optional authenticated user
func requestScope(c *gin.Context) cart.Scope {
	scope := cart.Scope{SessionToken: middleware.GetSessionToken(c)}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		scope.UserID = &userID
	}
	return scope
}

// mustUserID is used on routes already guarded by AuthMiddleware
func mustUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "User not authenticated",
		})
	}
	return userID, ok
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
