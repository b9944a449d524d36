// Package users provides database operations for user lookup and the
// public profile directory.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByID(123)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTokenHash retrieves a user by their hashed API token.
func (r *Repository) GetUserByTokenHash(tokenHash string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("token_hash = ?", tokenHash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByID resolves a user's public profile summary.
func (r *Repository) FindUserByID(id uint) (*entities.UserSummary, error) {
	user, err := r.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// GetSummaries resolves the public profiles of the given users in one query.
// The result is keyed by user ID; missing (deleted) users are absent.
func (r *Repository) GetSummaries(ids []uint) (map[uint]entities.UserSummary, error) {
	summaries := make(map[uint]entities.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var users []entities.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		summaries[u.ID] = u.Summary()
	}
	return summaries, nil
}
