package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/feed"
)

// FeedStore defines the feed aggregation operation used by the controller.
type FeedStore interface {
	GetFeed(ctx context.Context, userID uint, pageNumber, pageSize int) (*feed.Page, error)
}

type FeedController struct {
	store FeedStore
}

func NewFeedController(store FeedStore) *FeedController {
	return &FeedController{store: store}
}

// GetFeed returns one page of activity from the users the caller follows.
// GET /api/feed?page=&page_size=
func (fc *FeedController) GetFeed(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	pageNumber := parseQueryInt(c, "page", 1)
	pageSize := parseQueryInt(c, "page_size", 0)

	page, err := fc.store.GetFeed(c.Request.Context(), userID, pageNumber, pageSize)
	if err != nil {
		respondInternalError(c, err, "get feed")
		return
	}

	c.JSON(http.StatusOK, page)
}
