package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/entities"
)

// ShelvesStore defines the shelf status engine operations used by the
// controller.
type ShelvesStore interface {
	SetBookStatus(ctx context.Context, userID, bookID uint, targetShelfName string) error
	GetBookStatus(ctx context.Context, userID, bookID uint) (string, error)
	GetShelvesForUser(ctx context.Context, userID uint) ([]entities.Shelf, error)
	CreateShelf(ctx context.Context, userID uint, name string) (*entities.Shelf, error)
	RenameShelf(ctx context.Context, userID, shelfID uint, newName string) (*entities.Shelf, error)
	DeleteShelf(ctx context.Context, userID, shelfID uint) error
	AddBookToCustomShelf(ctx context.Context, userID, shelfID, bookID uint) error
	RemoveBookFromShelf(ctx context.Context, userID, shelfID, bookID uint) error
	UpdateProgress(ctx context.Context, userID, bookID uint, currentPage int) (*entities.ReadingProgress, error)
}

type ShelvesController struct {
	store   ShelvesStore
	auditor DeleteAuditor
}

func NewShelvesController(store ShelvesStore) *ShelvesController {
	return &ShelvesController{store: store}
}

// SetAuditor enables audit logging of shelf deletions (optional).
func (sc *ShelvesController) SetAuditor(auditor DeleteAuditor) {
	sc.auditor = auditor
}

type setStatusRequest struct {
	ShelfName string `json:"shelf_name"` // empty removes the book from all default shelves
}

// SetBookStatus moves a book between the caller's default shelves.
// POST /api/books/:id/status
func (sc *ShelvesController) SetBookStatus(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := sc.store.SetBookStatus(c.Request.Context(), userID, bookID, req.ShelfName); err != nil {
		respondDomainError(c, err, "set book status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book_id": bookID, "shelf_name": req.ShelfName})
}

// GetBookStatus returns the default shelf currently holding the book.
// GET /api/books/:id/status
func (sc *ShelvesController) GetBookStatus(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := sc.store.GetBookStatus(c.Request.Context(), userID, bookID)
	if err != nil {
		respondDomainError(c, err, "get book status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book_id": bookID, "shelf_name": status})
}

// ListShelves returns the caller's shelves with their books.
// GET /api/shelves
func (sc *ShelvesController) ListShelves(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	shelves, err := sc.store.GetShelvesForUser(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "list shelves")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shelves": shelves})
}

type shelfNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateShelf creates a custom shelf.
// POST /api/shelves
func (sc *ShelvesController) CreateShelf(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	var req shelfNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	shelf, err := sc.store.CreateShelf(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondDomainError(c, err, "create shelf")
		return
	}

	respondCreated(c, shelf)
}

// RenameShelf renames a custom shelf.
// PUT /api/shelves/:id
func (sc *ShelvesController) RenameShelf(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req shelfNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	shelf, err := sc.store.RenameShelf(c.Request.Context(), userID, shelfID, req.Name)
	if err != nil {
		respondDomainError(c, err, "rename shelf")
		return
	}

	c.JSON(http.StatusOK, shelf)
}

// DeleteShelf deletes a custom shelf and its memberships.
// DELETE /api/shelves/:id
func (sc *ShelvesController) DeleteShelf(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Capture the name before the shelf and its memberships go away.
	var name string
	if sc.auditor != nil {
		if shelves, err := sc.store.GetShelvesForUser(c.Request.Context(), userID); err == nil {
			for _, shelf := range shelves {
				if shelf.ID == shelfID {
					name = shelf.Name
					break
				}
			}
		}
	}

	if err := sc.store.DeleteShelf(c.Request.Context(), userID, shelfID); err != nil {
		respondDomainError(c, err, "delete shelf")
		return
	}

	if sc.auditor != nil {
		sc.auditor.LogDelete(userID, "shelf", shelfID, name)
	}

	respondSuccess(c, "shelf deleted")
}

type addBookRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// AddBook puts a book on a custom shelf.
// POST /api/shelves/:id/books
func (sc *ShelvesController) AddBook(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	if err := sc.store.AddBookToCustomShelf(c.Request.Context(), userID, shelfID, req.BookID); err != nil {
		respondDomainError(c, err, "add book to shelf")
		return
	}

	respondCreated(c, gin.H{"shelf_id": shelfID, "book_id": req.BookID})
}

// RemoveBook takes a book off a shelf.
// DELETE /api/shelves/:id/books/:bookId
func (sc *ShelvesController) RemoveBook(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := sc.store.RemoveBookFromShelf(c.Request.Context(), userID, shelfID, bookID); err != nil {
		respondDomainError(c, err, "remove book from shelf")
		return
	}

	respondSuccess(c, "book removed from shelf")
}

type progressRequest struct {
	CurrentPage int `json:"current_page"`
}

// UpdateProgress records the caller's reading position in a book.
// Reaching the last page moves the book to the Read shelf.
// PUT /api/books/:id/progress
func (sc *ShelvesController) UpdateProgress(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "current_page is required")
		return
	}

	progress, err := sc.store.UpdateProgress(c.Request.Context(), userID, bookID, req.CurrentPage)
	if err != nil {
		respondDomainError(c, err, "update progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}
