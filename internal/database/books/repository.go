// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
	"github.com/bookverse/bookverse/internal/metadata"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook validates and persists a new book.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.Title == "" {
		return domain.Validation("Books.TitleRequired", "book title is required")
	}
	if book.PageCount < 0 {
		return domain.Validation("Books.InvalidPageCount", "page count cannot be negative")
	}
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves all books ordered by title.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// SearchBooks searches books by title or author (case-insensitive partial match).
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	var books []entities.Book
	searchPattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", searchPattern, searchPattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// UpdateBookMetadata applies enrichment updates to a book. Only non-nil
// fields are written.
func (r *Repository) UpdateBookMetadata(id uint, fields metadata.BookUpdateFields) error {
	updates := map[string]any{}
	if fields.ISBN != nil {
		updates["isbn"] = *fields.ISBN
	}
	if fields.CoverURL != nil {
		updates["cover_url"] = *fields.CoverURL
	}
	if fields.PageCount != nil {
		updates["page_count"] = *fields.PageCount
	}
	if fields.PublicationYear != nil {
		updates["publication_year"] = *fields.PublicationYear
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error
}

// GetBooksMissingMetadata returns books with no cover, page count, or
// publication year, candidates for enrichment.
func (r *Repository) GetBooksMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("cover_url = '' OR page_count = 0 OR publication_year = 0").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// DeleteBook soft-deletes a book. Only the user who added it may delete it.
func (r *Repository) DeleteBook(userID, bookID uint) error {
	book, err := r.GetBookByID(bookID)
	if err != nil {
		return err
	}
	if book.CreatedByID != userID {
		return domain.Forbidden("Books.NotOwner", "book was added by another user")
	}
	return r.db.Delete(book).Error
}
