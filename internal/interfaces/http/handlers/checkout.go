// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/checkout"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PreviewQuery selects a single-item checkout. Both empty means the cart.
type PreviewQuery struct {
	Model  string `form:"model"`
	ItemID uint   `form:"item_id"`
}

// Preview handles GET /checkout
func (h *CheckoutHandler) Preview(c *gin.Context) {
	var q PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "Invalid query parameters", err)
		return
	}

	preview, err := h.checkoutService.Preview(requestScope(c), q.Model, q.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      preview,
		"total":     money(preview.Total),
		"total_qty": preview.TotalQuantity,
	})
}

// ProcessOrder handles POST /checkout/process-order. UPI orders answer
// with the payment deep link instead of the plain confirmation.
func (h *CheckoutHandler) ProcessOrder(c *gin.Context) {
	var req checkout.PlaceOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	result, err := h.checkoutService.PlaceOrder(requestScope(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.UPIURI != "" {
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"order_id": result.Order.ID,
			"upi_uri":  result.UPIURI,
			"amount":   money(result.Order.Amount),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"order_id": result.Order.ID,
		"message":  "Your order has been placed successfully",
		"amount":   money(result.Order.Amount),
	})
}
