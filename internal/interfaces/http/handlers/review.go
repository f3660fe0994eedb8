// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/review"
)

// ReviewHandler handles pet review endpoints
type ReviewHandler struct {
	reviewService *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetPetReviews handles GET /pets/:id/reviews
func (h *ReviewHandler) GetPetReviews(c *gin.Context) {
	petID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListPetReviews(petID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

// CreateReview handles POST /pets/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	petID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Please fill in all fields", err)
		return
	}

	r, err := h.reviewService.CreateReview(userID, petID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Thanks! Your review will appear once approved",
		"data":    r,
	})
}

// DeleteReview handles DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(reviewID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted"})
}

// GetPendingReviews handles GET /admin/reviews/pending
func (h *ReviewHandler) GetPendingReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListPending(queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

// ModerateRequest approves or rejects a review
type ModerateRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// ModerateReview handles PUT /admin/reviews/:id/moderate
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Action must be approve or reject", err)
		return
	}

	r, err := h.reviewService.Moderate(reviewID, req.Action == "approve")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}
