// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/wishlist"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// ToggleRequest names the pet or product to add or remove
type ToggleRequest struct {
	Model    string `json:"model" form:"model" binding:"required"`
	ObjectID uint   `json:"object_id" form:"object_id" binding:"required"`
}

// Toggle handles POST /wishlist/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Missing model or object_id", err)
		return
	}

	result, err := h.wishlistService.Toggle(userID, req.Model, req.ObjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"added":   result.Added,
		"count":   result.Count,
	})
}

// GetCount handles GET /wishlist/count. Anonymous callers have an empty wishlist.
func (h *WishlistHandler) GetCount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "count": 0})
		return
	}

	count, err := h.wishlistService.Count(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	entries, err := h.wishlistService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// MoveToCart handles POST /wishlist/:id/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	entryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.wishlistService.MoveToCart(userID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lineResultBody(result, "Item moved to cart"))
}
