// internal/domain/review/service.go
package review

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidReview   = errors.New("invalid review")
	ErrAlreadyReviewed = errors.New("you have already reviewed this pet")
	ErrReviewNotFound  = errors.New("review not found")
)

// Service handles pet reviews and the ratings derived from them
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new review service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// CreateReviewRequest represents the review form
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"required,max=255"`
	Comment string `json:"comment" binding:"required,max=2000"`
}

// ListResponse represents a page of reviews
type ListResponse struct {
	Reviews    []Review           `json:"reviews"`
	Summary    *Summary           `json:"summary,omitempty"`
	Pagination catalog.Pagination `json:"pagination"`
}

// CreateReview records a review pending moderation. Each user reviews a
// pet at most once.
func (s *Service) CreateReview(userID, petID uint, req *CreateReviewRequest) (*Review, error) {
	title := strings.TrimSpace(req.Title)
	comment := strings.TrimSpace(req.Comment)
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}
	if title == "" || comment == "" {
		return nil, fmt.Errorf("%w: please fill in all fields", ErrInvalidReview)
	}

	var pet catalog.Pet
	if err := s.db.Select("id").First(&pet, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrPetNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pet: %w", err)
	}

	var existing int64
	if err := s.db.Model(&Review{}).Where("pet_id = ? AND user_id = ?", petID, userID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyReviewed
	}

	review := Review{
		PetID:   petID,
		UserID:  userID,
		Rating:  req.Rating,
		Title:   title,
		Comment: comment,
	}
	if err := s.db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"pet_id": petID, "user_id": userID}).Info("📝 Review submitted for moderation")
	return &review, nil
}

// ListPetReviews returns approved reviews of a pet, newest first, with the
// rating summary
func (s *Service) ListPetReviews(petID uint, page, limit int) (*ListResponse, error) {
	query := s.db.Model(&Review{}).Where("pet_id = ? AND approved = ?", petID, true)
	resp, err := s.list(query, page, limit)
	if err != nil {
		return nil, err
	}

	summary, err := s.summary(petID)
	if err != nil {
		return nil, err
	}
	resp.Summary = summary

	return resp, nil
}

// ListPending returns reviews waiting for moderation
func (s *Service) ListPending(page, limit int) (*ListResponse, error) {
	query := s.db.Model(&Review{}).Where("approved = ?", false).Preload("Pet")
	return s.list(query, page, limit)
}

// Moderate approves or withdraws a review and refreshes the pet's rating
func (s *Service) Moderate(reviewID uint, approve bool) (*Review, error) {
	var review Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to retrieve review: %w", err)
		}

		if err := tx.Model(&review).Update("approved", approve).Error; err != nil {
			return fmt.Errorf("failed to update review status: %w", err)
		}

		return refreshPetRating(tx, review.PetID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"review_id": review.ID, "approved": approve}).Info("Review moderated")
	return &review, nil
}

// DeleteReview removes the user's own review
func (s *Service) DeleteReview(reviewID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var review Review
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to retrieve review: %w", err)
		}

		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		if !review.Approved {
			return nil
		}
		return refreshPetRating(tx, review.PetID)
	})
}

// refreshPetRating stores the approved-review average and count on the pet
func refreshPetRating(tx *gorm.DB, petID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("pet_id = ? AND approved = ?", petID, true).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	err = tx.Model(&catalog.Pet{}).Where("id = ?", petID).Updates(map[string]interface{}{
		"average_rating": math.Round(agg.Avg*100) / 100,
		"review_count":   agg.Count,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update pet rating: %w", err)
	}
	return nil
}

func (s *Service) summary(petID uint) (*Summary, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := s.db.Model(&Review{}).
		Select("rating, COUNT(*) AS count").
		Where("pet_id = ? AND approved = ?", petID, true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	summary := &Summary{RatingBreakdown: make(map[string]int64, 5)}
	for i := 1; i <= 5; i++ {
		summary.RatingBreakdown[strconv.Itoa(i)] = 0
	}

	var weighted int64
	for _, row := range rows {
		summary.RatingBreakdown[strconv.Itoa(row.Rating)] = row.Count
		summary.TotalReviews += row.Count
		weighted += int64(row.Rating) * row.Count
	}
	if summary.TotalReviews > 0 {
		avg := float64(weighted) / float64(summary.TotalReviews)
		summary.AverageRating = math.Round(avg*100) / 100
	}

	return summary, nil
}

func (s *Service) list(query *gorm.DB, page, limit int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []Review
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	if err := s.attachAuthors(reviews); err != nil {
		return nil, err
	}

	return &ListResponse{
		Reviews:    reviews,
		Pagination: catalog.NewPagination(page, limit, total),
	}, nil
}

func (s *Service) attachAuthors(reviews []Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}

	var users []user.User
	if err := s.db.Select("id, first_name, last_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load review authors: %w", err)
	}

	byID := make(map[uint]*Author, len(users))
	for i := range users {
		byID[users[i].ID] = &Author{ID: users[i].ID, Name: users[i].FullName()}
	}
	for i := range reviews {
		reviews[i].Author = byID[reviews[i].UserID]
	}
	return nil
}
