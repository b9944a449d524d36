package metadata

import (
	"context"
	"fmt"

	"github.com/bookverse/bookverse/internal/entities"
)

// MetadataProvider defines the interface for fetching book metadata.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookUpdater defines the interface for reading and updating catalog books.
type BookUpdater interface {
	GetBookByID(id uint) (*entities.Book, error)
	UpdateBookMetadata(id uint, metadata BookUpdateFields) error
	GetBooksMissingMetadata() ([]entities.Book, error)
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// BookUpdateFields contains the fields that can be updated via enrichment.
type BookUpdateFields struct {
	ISBN            *string
	CoverURL        *string
	PageCount       *int
	PublicationYear *int
	Description     *string
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// Enricher fills in missing catalog fields from external sources.
type Enricher struct {
	provider         MetadataProvider
	db               BookUpdater
	coverInvalidator CoverInvalidator
}

// NewEnricher creates a new Enricher with the given metadata provider and database.
func NewEnricher(provider MetadataProvider, db BookUpdater) *Enricher {
	return &Enricher{
		provider: provider,
		db:       db,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// EnrichBook fetches metadata for a book and updates it in the database.
// It tries ISBN first (if available), then falls back to title+author search.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var metadata *BookMetadata
	var searchMethod string

	if book.ISBN != "" {
		metadata, err = e.provider.SearchByISBN(ctx, book.ISBN)
		if err == nil {
			searchMethod = "isbn"
		}
	}

	if metadata == nil {
		metadata, err = e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
		searchMethod = "title"
	}

	updates, fieldsUpdated := e.buildUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		// A new cover URL makes any cached image stale
		if updates.CoverURL != nil && e.coverInvalidator != nil {
			_ = e.coverInvalidator.InvalidateCover(bookID)
		}

		if err := e.db.UpdateBookMetadata(bookID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		book, err = e.db.GetBookByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
		SearchMethod:  searchMethod,
	}, nil
}

// BulkEnrichmentResult contains the summary of a bulk enrichment operation.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// EnrichAllMissing enriches all books that are missing metadata
// (cover, page count, or publication year).
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	books, err := e.db.GetBooksMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("get books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{
		TotalBooks: len(books),
	}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates compares existing book data with fetched metadata and returns
// only the fields that should be filled in. Existing user-entered values are
// never overwritten, except a cover URL which follows the freshest source.
func (e *Enricher) buildUpdates(book *entities.Book, metadata *BookMetadata) (BookUpdateFields, []string) {
	var updates BookUpdateFields
	var fieldsUpdated []string

	if book.ISBN == "" && metadata.ISBN != "" {
		updates.ISBN = &metadata.ISBN
		fieldsUpdated = append(fieldsUpdated, "isbn")
	}

	if metadata.CoverURL != "" && book.CoverURL != metadata.CoverURL {
		updates.CoverURL = &metadata.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_url")
	}

	if book.PageCount == 0 && metadata.PageCount > 0 {
		updates.PageCount = &metadata.PageCount
		fieldsUpdated = append(fieldsUpdated, "page_count")
	}

	if book.PublicationYear == 0 && metadata.PublicationYear > 0 {
		updates.PublicationYear = &metadata.PublicationYear
		fieldsUpdated = append(fieldsUpdated, "publication_year")
	}

	if book.Description == "" && metadata.Description != "" {
		updates.Description = &metadata.Description
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	return updates, fieldsUpdated
}
