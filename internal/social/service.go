// Package social implements the follow directory: directed follow edges
// between users and public profile lookups.
package social

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// Service manages follow relationships.
type Service struct {
	db *gorm.DB
}

// NewService creates a new social service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Follow creates a follow edge from follower to followee. Re-following is
// a no-op; self-follows are rejected.
func (s *Service) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}

	var followee entities.User
	if err := s.db.WithContext(ctx).First(&followee, followeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	var existing entities.Follow
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&existing).Error
	if err == nil {
		return nil // already following
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	follow := entities.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Unfollow removes the follow edge if present.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&entities.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

// GetFollowingIDs returns the IDs of every user the given user follows.
func (s *Service) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// GetFollowing returns the public profiles of users the given user follows.
func (s *Service) GetFollowing(ctx context.Context, userID uint) ([]entities.UserSummary, error) {
	var users []entities.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

// GetFollowers returns the public profiles of users following the given user.
func (s *Service) GetFollowers(ctx context.Context, userID uint) ([]entities.UserSummary, error) {
	var users []entities.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

// IsFollowing reports whether follower follows followee.
func (s *Service) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func summaries(users []entities.User) []entities.UserSummary {
	out := make([]entities.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
