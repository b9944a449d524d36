package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/entities"
)

// QuotesStore defines database operations for quote management.
type QuotesStore interface {
	CreateQuote(quote *entities.Quote) error
	GetQuoteByID(id uint) (*entities.Quote, error)
	GetQuotesByUser(userID uint) ([]entities.Quote, error)
	GetQuotesByBook(bookID uint) ([]entities.Quote, error)
	DeleteQuote(userID, quoteID uint) error
	LikeQuote(userID, quoteID uint) error
	UnlikeQuote(userID, quoteID uint) error
}

type QuotesController struct {
	store   QuotesStore
	auditor DeleteAuditor
}

func NewQuotesController(store QuotesStore) *QuotesController {
	return &QuotesController{store: store}
}

// SetAuditor enables audit logging of quote deletions (optional).
func (qc *QuotesController) SetAuditor(auditor DeleteAuditor) {
	qc.auditor = auditor
}

type createQuoteRequest struct {
	Text   string `json:"text" binding:"required"`
	BookID *uint  `json:"book_id"`
	Tags   string `json:"tags"`
}

// CreateQuote posts a new quote, optionally attached to a book.
// POST /api/quotes
func (qc *QuotesController) CreateQuote(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	quote := entities.Quote{
		UserID: userID,
		BookID: req.BookID,
		Text:   req.Text,
		Tags:   req.Tags,
	}
	if err := qc.store.CreateQuote(&quote); err != nil {
		respondDomainError(c, err, "create quote")
		return
	}

	respondCreated(c, quote)
}

// ListQuotes returns quotes by user (?user_id=) or by book (?book_id=),
// defaulting to the caller's own quotes.
// GET /api/quotes
func (qc *QuotesController) ListQuotes(c *gin.Context) {
	callerID := GetUserID(c)
	if callerID == 0 {
		respondUnauthorized(c)
		return
	}

	if bookID := parseQueryInt(c, "book_id", 0); bookID > 0 {
		quotes, err := qc.store.GetQuotesByBook(uint(bookID))
		if err != nil {
			respondInternalError(c, err, "list quotes by book")
			return
		}
		c.JSON(http.StatusOK, gin.H{"quotes": quotes, "total": len(quotes)})
		return
	}

	userID := callerID
	if requested := parseQueryInt(c, "user_id", 0); requested > 0 {
		userID = uint(requested)
	}

	quotes, err := qc.store.GetQuotesByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list quotes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "total": len(quotes)})
}

// DeleteQuote deletes the caller's own quote.
// DELETE /api/quotes/:id
func (qc *QuotesController) DeleteQuote(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var label string
	if qc.auditor != nil {
		if quote, err := qc.store.GetQuoteByID(id); err == nil {
			label = auditName(quote.Text)
		}
	}

	if err := qc.store.DeleteQuote(userID, id); err != nil {
		respondDomainError(c, err, "delete quote")
		return
	}

	if qc.auditor != nil {
		qc.auditor.LogDelete(userID, "quote", id, label)
	}

	respondSuccess(c, "quote deleted")
}

// LikeQuote likes a quote. Repeating is harmless.
// POST /api/quotes/:id/like
func (qc *QuotesController) LikeQuote(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := qc.store.LikeQuote(userID, id); err != nil {
		respondDomainError(c, err, "like quote")
		return
	}

	quote, err := qc.store.GetQuoteByID(id)
	if err != nil {
		respondSuccess(c, "quote liked")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// UnlikeQuote removes the caller's like from a quote.
// DELETE /api/quotes/:id/like
func (qc *QuotesController) UnlikeQuote(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := qc.store.UnlikeQuote(userID, id); err != nil {
		respondDomainError(c, err, "unlike quote")
		return
	}

	quote, err := qc.store.GetQuoteByID(id)
	if err != nil {
		respondSuccess(c, "quote unliked")
		return
	}
	c.JSON(http.StatusOK, quote)
}
