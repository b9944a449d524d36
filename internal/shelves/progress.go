package shelves

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// UpdateProgress upserts the user's reading position in a book, clamped to
// [0, pageCount]. Reaching the final page moves the book to the Read shelf
// automatically; repeating the update once finished changes nothing.
func (s *Service) UpdateProgress(ctx context.Context, userID, bookID uint, currentPage int) (*entities.ReadingProgress, error) {
	var book entities.Book
	if err := s.db.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	if currentPage < 0 {
		currentPage = 0
	}
	if book.PageCount > 0 && currentPage > book.PageCount {
		currentPage = book.PageCount
	}

	var progress entities.ReadingProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&progress).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = entities.ReadingProgress{UserID: userID, BookID: bookID, CurrentPage: currentPage}
		if err := s.db.WithContext(ctx).Create(&progress).Error; err != nil {
			return nil, fmt.Errorf("failed to create progress: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		progress.CurrentPage = currentPage
		if err := s.db.WithContext(ctx).Save(&progress).Error; err != nil {
			return nil, fmt.Errorf("failed to update progress: %w", err)
		}
	}

	if book.PageCount > 0 && currentPage == book.PageCount {
		if err := s.finishBook(ctx, userID, bookID); err != nil {
			return nil, err
		}
	}

	return &progress, nil
}

// finishBook moves a completed book onto the Read shelf unless it is
// already there.
func (s *Service) finishBook(ctx context.Context, userID, bookID uint) error {
	status, err := s.GetBookStatus(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if status == entities.ShelfRead {
		return nil
	}
	return s.SetBookStatus(ctx, userID, bookID, entities.ShelfRead)
}

// GetProgress returns the user's reading position in a book, or nil if
// none has been recorded.
func (s *Service) GetProgress(ctx context.Context, userID, bookID uint) (*entities.ReadingProgress, error) {
	var progress entities.ReadingProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
