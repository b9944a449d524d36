package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/entities"
)

// SocialStore defines follow-directory operations used by the controller.
type SocialStore interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	GetFollowers(ctx context.Context, userID uint) ([]entities.UserSummary, error)
	GetFollowing(ctx context.Context, userID uint) ([]entities.UserSummary, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
}

// UsersDirectory resolves public profiles.
type UsersDirectory interface {
	FindUserByID(id uint) (*entities.UserSummary, error)
}

type UsersController struct {
	social    SocialStore
	directory UsersDirectory
}

func NewUsersController(social SocialStore, directory UsersDirectory) *UsersController {
	return &UsersController{social: social, directory: directory}
}

// GetUser returns a user's public profile, with a following flag for the
// caller.
// GET /api/users/:id
func (uc *UsersController) GetUser(c *gin.Context) {
	callerID := GetUserID(c)
	if callerID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := uc.directory.FindUserByID(id)
	if err != nil {
		respondDomainError(c, err, "get user")
		return
	}

	following, err := uc.social.IsFollowing(c.Request.Context(), callerID, id)
	if err != nil {
		respondInternalError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": summary, "following": following})
}

// Follow makes the caller follow the target user. Re-following is a no-op.
// POST /api/users/:id/follow
func (uc *UsersController) Follow(c *gin.Context) {
	callerID := GetUserID(c)
	if callerID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := uc.social.Follow(c.Request.Context(), callerID, id); err != nil {
		respondDomainError(c, err, "follow user")
		return
	}

	respondSuccess(c, "following")
}

// Unfollow removes the caller's follow of the target user.
// DELETE /api/users/:id/follow
func (uc *UsersController) Unfollow(c *gin.Context) {
	callerID := GetUserID(c)
	if callerID == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := uc.social.Unfollow(c.Request.Context(), callerID, id); err != nil {
		respondDomainError(c, err, "unfollow user")
		return
	}

	respondSuccess(c, "unfollowed")
}

// ListFollowers returns the users following the target user.
// GET /api/users/:id/followers
func (uc *UsersController) ListFollowers(c *gin.Context) {
	if GetUserID(c) == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	followers, err := uc.social.GetFollowers(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list followers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": followers, "total": len(followers)})
}

// ListFollowing returns the users the target user follows.
// GET /api/users/:id/following
func (uc *UsersController) ListFollowing(c *gin.Context) {
	if GetUserID(c) == 0 {
		respondUnauthorized(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	following, err := uc.social.GetFollowing(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list following")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": following, "total": len(following)})
}
