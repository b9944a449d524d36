package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/entities"
)

// ReviewsStore defines review operations used by the controller.
type ReviewsStore interface {
	CreateReview(ctx context.Context, userID, bookID uint, rating int, text string) (*entities.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uint, rating int, text string) (*entities.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uint) error
	GetReviewByID(ctx context.Context, reviewID uint) (*entities.Review, error)
	GetReviewsByBook(ctx context.Context, bookID uint) ([]entities.Review, error)
}

type ReviewsController struct {
	store   ReviewsStore
	auditor DeleteAuditor
}

func NewReviewsController(store ReviewsStore) *ReviewsController {
	return &ReviewsController{store: store}
}

// SetAuditor enables audit logging of review deletions (optional).
func (rc *ReviewsController) SetAuditor(auditor DeleteAuditor) {
	rc.auditor = auditor
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// CreateReview posts the caller's review of a book. One review per book
// per user.
// POST /api/books/:id/reviews
func (rc *ReviewsController) CreateReview(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := rc.store.CreateReview(c.Request.Context(), userID, bookID, req.Rating, req.Text)
	if err != nil {
		respondDomainError(c, err, "create review")
		return
	}

	respondCreated(c, review)
}

// ListReviews returns all reviews of a book, newest first.
// GET /api/books/:id/reviews
func (rc *ReviewsController) ListReviews(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := rc.store.GetReviewsByBook(c.Request.Context(), bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": len(reviews)})
}

// UpdateReview edits the caller's own review.
// PUT /api/reviews/:id
func (rc *ReviewsController) UpdateReview(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := rc.store.UpdateReview(c.Request.Context(), userID, reviewID, req.Rating, req.Text)
	if err != nil {
		respondDomainError(c, err, "update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview removes the caller's own review.
// DELETE /api/reviews/:id
func (rc *ReviewsController) DeleteReview(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var label string
	if rc.auditor != nil {
		if review, err := rc.store.GetReviewByID(c.Request.Context(), reviewID); err == nil {
			label = auditName(review.Text)
		}
	}

	if err := rc.store.DeleteReview(c.Request.Context(), userID, reviewID); err != nil {
		respondDomainError(c, err, "delete review")
		return
	}

	if rc.auditor != nil {
		rc.auditor.LogDelete(userID, "review", reviewID, label)
	}

	respondSuccess(c, "review deleted")
}
