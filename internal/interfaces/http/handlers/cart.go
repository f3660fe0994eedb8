// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// AddToCartRequest is the add-to-cart form
type AddToCartRequest struct {
	Model    string `json:"model" form:"model" binding:"required"`
	ObjectID uint   `json:"object_id" form:"object_id" binding:"required"`
}

// AddToCart handles POST /cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Missing model or object_id", err)
		return
	}

	result, err := h.cartService.AddItem(requestScope(c), req.Model, req.ObjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lineResultBody(result, "Item added to cart"))
}

// RemoveFromCart handles POST /cart/remove/:item_id, taking one unit off
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	lineID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	result, err := h.cartService.DecrementLine(requestScope(c), lineID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Item quantity updated"
	if result.Quantity == 0 {
		message = "Item removed from cart"
	}
	c.JSON(http.StatusOK, lineResultBody(result, message))
}

// DeleteFromCart handles POST /cart/delete/:item_id
func (h *CartHandler) DeleteFromCart(c *gin.Context) {
	lineID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	result, err := h.cartService.DeleteLine(requestScope(c), lineID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lineResultBody(result, "Item removed from cart"))
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.Count(requestScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.View(requestScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      view,
		"total":     money(view.TotalPrice),
		"total_qty": view.TotalQuantity,
	})
}

// MergeCart handles POST /cart/merge. Login merges automatically, this
// endpoint lets clients retry it.
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.cartService.Merge(userID, middleware.GetSessionToken(c)); err != nil {
		respondError(c, err)
		return
	}

	count, err := h.cartService.Count(requestScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart merged",
		"count":   count,
	})
}

func lineResultBody(result *cart.LineResult, message string) gin.H {
	return gin.H{
		"success":   true,
		"message":   message,
		"item_id":   result.LineID,
		"quantity":  result.Quantity,
		"subtotal":  money(result.Subtotal),
		"total":     money(result.TotalPrice),
		"total_qty": result.TotalQuantity,
		"count":     result.TotalQuantity,
	}
}
