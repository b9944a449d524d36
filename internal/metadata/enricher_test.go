package metadata

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookverse/bookverse/internal/entities"
)

type fakeProvider struct {
	byISBN   *BookMetadata
	byTitle  *BookMetadata
	isbnErr  error
	titleErr error
}

func (f *fakeProvider) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	if f.isbnErr != nil {
		return nil, f.isbnErr
	}
	return f.byISBN, nil
}

func (f *fakeProvider) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if f.titleErr != nil {
		return nil, f.titleErr
	}
	return f.byTitle, nil
}

type fakeUpdater struct {
	books        map[uint]*entities.Book
	lastUpdateID uint
	lastUpdate   BookUpdateFields
	updateCount  int
}

func newFakeUpdater(books ...*entities.Book) *fakeUpdater {
	m := make(map[uint]*entities.Book)
	for _, b := range books {
		m[b.ID] = b
	}
	return &fakeUpdater{books: m}
}

func (f *fakeUpdater) GetBookByID(id uint) (*entities.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, fmt.Errorf("book %d not found", id)
	}
	return book, nil
}

func (f *fakeUpdater) UpdateBookMetadata(id uint, fields BookUpdateFields) error {
	f.lastUpdateID = id
	f.lastUpdate = fields
	f.updateCount++

	book := f.books[id]
	if fields.ISBN != nil {
		book.ISBN = *fields.ISBN
	}
	if fields.CoverURL != nil {
		book.CoverURL = *fields.CoverURL
	}
	if fields.PageCount != nil {
		book.PageCount = *fields.PageCount
	}
	if fields.PublicationYear != nil {
		book.PublicationYear = *fields.PublicationYear
	}
	if fields.Description != nil {
		book.Description = *fields.Description
	}
	return nil
}

func (f *fakeUpdater) GetBooksMissingMetadata() ([]entities.Book, error) {
	var out []entities.Book
	for _, b := range f.books {
		if b.CoverURL == "" || b.PageCount == 0 || b.PublicationYear == 0 {
			out = append(out, *b)
		}
	}
	return out, nil
}

func TestEnrichBook_WithISBN(t *testing.T) {
	updater := newFakeUpdater(&entities.Book{
		ID:     1,
		Title:  "Effective Java",
		Author: "Joshua Bloch",
		ISBN:   "9780134685991",
	})
	provider := &fakeProvider{
		byISBN: &BookMetadata{
			Title:           "Effective Java",
			CoverURL:        "https://covers.openlibrary.org/b/isbn/9780134685991-L.jpg",
			PageCount:       416,
			PublicationYear: 2018,
		},
	}

	enricher := NewEnricher(provider, updater)

	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if result.SearchMethod != "isbn" {
		t.Errorf("SearchMethod = %q, expected isbn", result.SearchMethod)
	}
	if len(result.FieldsUpdated) != 3 {
		t.Errorf("FieldsUpdated = %v, expected cover_url, page_count, publication_year", result.FieldsUpdated)
	}
	if result.Book.PageCount != 416 {
		t.Errorf("PageCount = %d after enrichment", result.Book.PageCount)
	}
}

func TestEnrichBook_FallbackToTitle(t *testing.T) {
	updater := newFakeUpdater(&entities.Book{
		ID:     1,
		Title:  "The Go Programming Language",
		Author: "Alan Donovan",
	})
	provider := &fakeProvider{
		isbnErr: fmt.Errorf("no ISBN"),
		byTitle: &BookMetadata{
			Title:           "The Go Programming Language",
			ISBN:            "9780134190440",
			PublicationYear: 2015,
		},
	}

	enricher := NewEnricher(provider, updater)

	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if result.SearchMethod != "title" {
		t.Errorf("SearchMethod = %q, expected title", result.SearchMethod)
	}
	if result.Book.ISBN != "9780134190440" {
		t.Errorf("ISBN = %q after enrichment", result.Book.ISBN)
	}
}

func TestEnrichBook_BookNotFound(t *testing.T) {
	enricher := NewEnricher(&fakeProvider{}, newFakeUpdater())

	_, err := enricher.EnrichBook(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error for unknown book")
	}
}

func TestEnrichBook_SearchFailed(t *testing.T) {
	updater := newFakeUpdater(&entities.Book{ID: 1, Title: "Obscure Book"})
	provider := &fakeProvider{
		isbnErr:  fmt.Errorf("no ISBN"),
		titleErr: fmt.Errorf("no results"),
	}

	enricher := NewEnricher(provider, updater)

	_, err := enricher.EnrichBook(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error when both searches fail")
	}
}

type fakeInvalidator struct {
	invalidated []uint
}

func (f *fakeInvalidator) InvalidateCover(bookID uint) error {
	f.invalidated = append(f.invalidated, bookID)
	return nil
}

func TestEnrichBook_InvalidatesCoverOnChange(t *testing.T) {
	updater := newFakeUpdater(&entities.Book{
		ID:       1,
		Title:    "Effective Java",
		ISBN:     "9780134685991",
		CoverURL: "https://example.com/old-cover.jpg",
	})
	provider := &fakeProvider{
		byISBN: &BookMetadata{
			CoverURL: "https://covers.openlibrary.org/b/isbn/9780134685991-L.jpg",
		},
	}

	invalidator := &fakeInvalidator{}
	enricher := NewEnricher(provider, updater)
	enricher.SetCoverInvalidator(invalidator)

	if _, err := enricher.EnrichBook(context.Background(), 1); err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if len(invalidator.invalidated) != 1 || invalidator.invalidated[0] != 1 {
		t.Errorf("invalidated = %v, expected [1]", invalidator.invalidated)
	}
}

func TestBuildUpdates_OnlyEmptyFields(t *testing.T) {
	enricher := NewEnricher(&fakeProvider{}, newFakeUpdater())

	book := &entities.Book{
		ID:              1,
		ISBN:            "existing-isbn",
		PageCount:       300,
		PublicationYear: 2001,
		Description:     "already described",
	}
	meta := &BookMetadata{
		ISBN:            "new-isbn",
		PageCount:       500,
		PublicationYear: 2020,
		Description:     "fetched description",
	}

	updates, fields := enricher.buildUpdates(book, meta)

	if updates.ISBN != nil || updates.PageCount != nil || updates.PublicationYear != nil || updates.Description != nil {
		t.Errorf("existing fields must not be overwritten, got updates for %v", fields)
	}
}

func TestEnrichAllMissing(t *testing.T) {
	updater := newFakeUpdater(
		&entities.Book{ID: 1, Title: "Needs Cover"},
		&entities.Book{ID: 2, Title: "Complete", CoverURL: "x", PageCount: 100, PublicationYear: 2000},
	)
	provider := &fakeProvider{
		isbnErr: fmt.Errorf("no ISBN"),
		byTitle: &BookMetadata{CoverURL: "https://covers.openlibrary.org/b/id/1-L.jpg"},
	}

	enricher := NewEnricher(provider, updater)

	result, err := enricher.EnrichAllMissing(context.Background())
	if err != nil {
		t.Fatalf("EnrichAllMissing failed: %v", err)
	}

	if result.TotalBooks != 1 {
		t.Errorf("TotalBooks = %d, expected only the incomplete book", result.TotalBooks)
	}
	if result.Enriched != 1 {
		t.Errorf("Enriched = %d, expected 1", result.Enriched)
	}
}
