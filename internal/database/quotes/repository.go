// Package quotes provides database operations for quotes and quote likes.
package quotes

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// Repository handles all quote database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new quotes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuote validates and persists a new quote for the given user.
func (r *Repository) CreateQuote(quote *entities.Quote) error {
	quote.Text = strings.TrimSpace(quote.Text)
	if quote.Text == "" {
		return domain.ErrQuoteEmptyText
	}
	if quote.BookID != nil {
		var book entities.Book
		if err := r.db.First(&book, *quote.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return err
		}
	}
	if err := r.db.Create(quote).Error; err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// GetQuoteByID retrieves a quote with its optional book.
func (r *Repository) GetQuoteByID(id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.db.Preload("Book").First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetQuotesByUser retrieves all quotes authored by a user, newest first.
func (r *Repository) GetQuotesByUser(userID uint) ([]entities.Quote, error) {
	var quotes []entities.Quote
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

// GetQuotesByBook retrieves all quotes attached to a book, newest first.
func (r *Repository) GetQuotesByBook(bookID uint) ([]entities.Quote, error) {
	var quotes []entities.Quote
	err := r.db.
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

// DeleteQuote soft-deletes a quote owned by the given user.
func (r *Repository) DeleteQuote(userID, quoteID uint) error {
	quote, err := r.GetQuoteByID(quoteID)
	if err != nil {
		return err
	}
	if quote.UserID != userID {
		return domain.ErrQuoteNotOwned
	}
	return r.db.Delete(quote).Error
}

// LikeQuote records a like. Liking twice is a no-op.
func (r *Repository) LikeQuote(userID, quoteID uint) error {
	if _, err := r.GetQuoteByID(quoteID); err != nil {
		return err
	}

	var existing entities.QuoteLike
	err := r.db.Where("quote_id = ? AND user_id = ?", quoteID, userID).First(&existing).Error
	if err == nil {
		return nil // already liked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entities.QuoteLike{QuoteID: quoteID, UserID: userID}).Error; err != nil {
			return err
		}
		return r.refreshLikeCount(tx, quoteID)
	})
}

// UnlikeQuote removes a like if present.
func (r *Repository) UnlikeQuote(userID, quoteID uint) error {
	if _, err := r.GetQuoteByID(quoteID); err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("quote_id = ? AND user_id = ?", quoteID, userID).
			Delete(&entities.QuoteLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return r.refreshLikeCount(tx, quoteID)
	})
}

func (r *Repository) refreshLikeCount(tx *gorm.DB, quoteID uint) error {
	var count int64
	if err := tx.Model(&entities.QuoteLike{}).Where("quote_id = ?", quoteID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&entities.Quote{}).Where("id = ?", quoteID).
		Update("like_count", count).Error
}
