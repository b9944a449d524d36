// Package reviews implements book reviews and the book rating aggregate.
//
// A user may hold at most one live review per book. Every review mutation
// recomputes the book's rating average and count by re-reading all live
// reviews for that book; concurrent edits are last-writer-wins, with the
// periodic reconciliation task repairing any drift.
package reviews

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// Service handles review lifecycle and aggregate maintenance.
type Service struct {
	db *gorm.DB
}

// NewService creates a new reviews service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateReview adds the caller's review of a book. A second review of the
// same book by the same user is a conflict.
func (s *Service) CreateReview(ctx context.Context, userID, bookID uint, rating int, text string) (*entities.Review, error) {
	if rating < 0 || rating > 5 {
		return nil, domain.ErrRatingOutOfRange
	}

	var book entities.Book
	if err := s.db.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	var existing entities.Review
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&existing).Error
	if err == nil {
		return nil, domain.ErrDuplicateReview
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := entities.Review{UserID: userID, BookID: bookID, Rating: rating, Text: text}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return recomputeRating(tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview changes the rating or text of the caller's own review.
func (s *Service) UpdateReview(ctx context.Context, userID, reviewID uint, rating int, text string) (*entities.Review, error) {
	if rating < 0 || rating > 5 {
		return nil, domain.ErrRatingOutOfRange
	}

	review, err := s.getOwnedReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = rating
	review.Text = text
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		return recomputeRating(tx, review.BookID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the caller's own review and recomputes the book's
// aggregate.
func (s *Service) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	review, err := s.getOwnedReview(ctx, userID, reviewID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return recomputeRating(tx, review.BookID)
	})
}

// GetReviewsByBook returns all live reviews of a book, newest first.
func (s *Service) GetReviewsByBook(ctx context.Context, bookID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := s.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// GetReviewByID returns a review.
func (s *Service) GetReviewByID(ctx context.Context, reviewID uint) (*entities.Review, error) {
	var review entities.Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// RecountBookRatings recomputes the rating aggregate of every book. Used
// by the reconciliation task to repair drift from concurrent edits.
func (s *Service) RecountBookRatings(ctx context.Context) (int, error) {
	var bookIDs []uint
	err := s.db.WithContext(ctx).Model(&entities.Book{}).Pluck("id", &bookIDs).Error
	if err != nil {
		return 0, err
	}
	for _, id := range bookIDs {
		if err := recomputeRating(s.db.WithContext(ctx), id); err != nil {
			return 0, fmt.Errorf("failed to recount ratings for book %d: %w", id, err)
		}
	}
	return len(bookIDs), nil
}

func (s *Service) getOwnedReview(ctx context.Context, userID, reviewID uint) (*entities.Review, error) {
	review, err := s.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, domain.ErrReviewNotOwned
	}
	return review, nil
}

// recomputeRating overwrites the book's aggregate from all live reviews.
func recomputeRating(tx *gorm.DB, bookID uint) error {
	type agg struct {
		Average float64
		Count   int64
	}
	var result agg
	err := tx.Model(&entities.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&result).Error
	if err != nil {
		return err
	}
	return tx.Model(&entities.Book{}).Where("id = ?", bookID).
		Updates(map[string]any{
			"rating_average": result.Average,
			"rating_count":   result.Count,
		}).Error
}
