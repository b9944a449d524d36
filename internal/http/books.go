package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/bookverse/bookverse/internal/entities"
	"github.com/bookverse/bookverse/internal/tasks"
)

// BooksStore defines database operations for the book catalog.
type BooksStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	SearchBooks(query string) ([]entities.Book, error)
	DeleteBook(userID, bookID uint) error
}

// CoverCache serves locally cached cover images.
type CoverCache interface {
	GetCover(ctx context.Context, bookID uint, coverURL string) (string, error)
}

// TaskEnqueuer submits background tasks.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

type BooksController struct {
	store    BooksStore
	covers   CoverCache
	enqueuer TaskEnqueuer
	auditor  DeleteAuditor
}

func NewBooksController(store BooksStore) *BooksController {
	return &BooksController{store: store}
}

// SetCoverCache enables serving cached covers (optional).
func (bc *BooksController) SetCoverCache(cache CoverCache) {
	bc.covers = cache
}

// SetTaskEnqueuer enables background metadata enrichment for new books (optional).
func (bc *BooksController) SetTaskEnqueuer(enqueuer TaskEnqueuer) {
	bc.enqueuer = enqueuer
}

// SetAuditor enables audit logging of book deletions (optional).
func (bc *BooksController) SetAuditor(auditor DeleteAuditor) {
	bc.auditor = auditor
}

type createBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	ISBN            string `json:"isbn"`
	CoverURL        string `json:"cover_url"`
	PageCount       int    `json:"page_count"`
	PublicationYear int    `json:"publication_year"`
}

// CreateBook adds a book to the catalog.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	book := entities.Book{
		CreatedByID:     userID,
		Title:           req.Title,
		Author:          req.Author,
		Description:     req.Description,
		ISBN:            req.ISBN,
		CoverURL:        req.CoverURL,
		PageCount:       req.PageCount,
		PublicationYear: req.PublicationYear,
	}
	if err := bc.store.CreateBook(&book); err != nil {
		respondDomainError(c, err, "create book")
		return
	}

	// Fill in missing catalog fields in the background
	if bc.enqueuer != nil {
		if _, err := bc.enqueuer.Add(tasks.EnrichBookTask{BookID: book.ID}).Save(); err != nil {
			log.Printf("Failed to enqueue enrichment for book %d: %v", book.ID, err)
		}
	}

	respondCreated(c, book)
}

// GetBookCover serves the book's cover image from the local cache,
// fetching it from the source URL on first request.
// GET /api/books/:id/cover
func (bc *BooksController) GetBookCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}

	if bc.covers == nil || book.CoverURL == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "book has no cover", Code: "Books.NoCover"})
		return
	}

	path, err := bc.covers.GetCover(c.Request.Context(), book.ID, book.CoverURL)
	if err != nil || path == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "cover unavailable", Code: "Books.NoCover"})
		return
	}

	c.File(path)
}

// GetBook returns a single book with its rating aggregate.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// ListBooks returns the catalog, optionally filtered by ?q= search.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	query := c.Query("q")

	var (
		books []entities.Book
		err   error
	)
	if query != "" {
		books, err = bc.store.SearchBooks(query)
	} else {
		books, err = bc.store.GetAllBooks()
	}
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// DeleteBook soft-deletes a book added by the caller.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Capture the title before the soft delete hides the row.
	var title string
	if bc.auditor != nil {
		if book, err := bc.store.GetBookByID(id); err == nil {
			title = book.Title
		}
	}

	if err := bc.store.DeleteBook(userID, id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}

	if bc.auditor != nil {
		bc.auditor.LogDelete(userID, "book", id, title)
	}

	respondSuccess(c, "book deleted")
}
