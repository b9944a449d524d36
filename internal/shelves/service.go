// Package shelves implements shelf management and the book status engine.
//
// Every user has three system-managed default shelves (Want to Read,
// Currently Reading, Read) that are mutually exclusive per book, plus any
// number of custom shelves with independent membership. Default shelves are
// only ever mutated through SetBookStatus; they cannot be deleted, renamed,
// or added to directly.
package shelves

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

// Service is the shelf status engine. All mutating operations are
// ownership-checked and take the caller's user ID explicitly.
type Service struct {
	db *gorm.DB
}

// NewService creates a new shelves service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EnsureDefaultShelves creates any missing default shelves for the user.
// Safe to call repeatedly; normally a no-op because registration creates
// them eagerly.
func (s *Service) EnsureDefaultShelves(ctx context.Context, userID uint) error {
	return ensureDefaultShelves(s.db.WithContext(ctx), userID)
}

func ensureDefaultShelves(tx *gorm.DB, userID uint) error {
	var existing []entities.Shelf
	err := tx.Where("user_id = ? AND is_default = ?", userID, true).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to load default shelves: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, shelf := range existing {
		present[shelf.Name] = true
	}

	for _, name := range entities.DefaultShelfNames {
		if present[name] {
			continue
		}
		shelf := entities.Shelf{UserID: userID, Name: name, IsDefault: true}
		if err := tx.Create(&shelf).Error; err != nil {
			return fmt.Errorf("failed to create default shelf %q: %w", name, err)
		}
	}
	return nil
}

// SetBookStatus places the book on exactly the named default shelf,
// removing it from the other default shelves first. An empty target name
// removes the book from all default shelves. Custom shelves are untouched.
// The clear and the insert commit together; a failure leaves prior state
// intact.
func (s *Service) SetBookStatus(ctx context.Context, userID, bookID uint, targetShelfName string) error {
	targetShelfName = strings.TrimSpace(targetShelfName)
	if targetShelfName != "" && !entities.IsDefaultShelfName(targetShelfName) {
		return domain.NotFound("Shelves.UnknownDefaultShelf", "no default shelf named %q", targetShelfName)
	}

	// Validate the book before touching any shelf state.
	var book entities.Book
	if err := s.db.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("failed to load book: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDefaultShelves(tx, userID); err != nil {
			return err
		}

		var defaults []entities.Shelf
		err := tx.Where("user_id = ? AND is_default = ?", userID, true).Find(&defaults).Error
		if err != nil {
			return fmt.Errorf("failed to load default shelves: %w", err)
		}

		shelfIDs := make([]uint, 0, len(defaults))
		for _, shelf := range defaults {
			shelfIDs = append(shelfIDs, shelf.ID)
		}

		// Clear prior state unconditionally; the invariant is "at most one
		// default shelf holds the book".
		err = tx.Where("shelf_id IN ? AND book_id = ?", shelfIDs, bookID).
			Delete(&entities.ShelfMembership{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear default shelf memberships: %w", err)
		}

		if targetShelfName == "" {
			return nil // explicit un-shelve
		}

		var target *entities.Shelf
		for i := range defaults {
			if defaults[i].Name == targetShelfName {
				target = &defaults[i]
				break
			}
		}
		if target == nil {
			return domain.NotFound("Shelves.UnknownDefaultShelf", "no default shelf named %q", targetShelfName)
		}

		membership := entities.ShelfMembership{
			ShelfID: target.ID,
			BookID:  bookID,
			AddedAt: time.Now(),
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to add book to %q: %w", targetShelfName, err)
		}
		return nil
	})
}

// GetBookStatus returns the name of the default shelf currently holding the
// book for the user, or "" if it is un-shelved.
func (s *Service) GetBookStatus(ctx context.Context, userID, bookID uint) (string, error) {
	var shelf entities.Shelf
	err := s.db.WithContext(ctx).
		Joins("JOIN shelf_memberships ON shelf_memberships.shelf_id = shelves.id").
		Where("shelves.user_id = ? AND shelves.is_default = ? AND shelf_memberships.book_id = ?", userID, true, bookID).
		First(&shelf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return shelf.Name, nil
}

// CreateShelf creates a custom shelf for the user. Canonical default-shelf
// names are reserved.
func (s *Service) CreateShelf(ctx context.Context, userID uint, name string) (*entities.Shelf, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("Shelves.NameRequired", "shelf name is required")
	}
	if entities.IsDefaultShelfName(name) {
		return nil, domain.Validation("Shelves.ReservedName", "%q is a reserved shelf name", name)
	}

	shelf := entities.Shelf{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(&shelf).Error; err != nil {
		return nil, fmt.Errorf("failed to create shelf: %w", err)
	}
	return &shelf, nil
}

// GetShelvesForUser returns all of the user's shelves with memberships and
// their books.
func (s *Service) GetShelvesForUser(ctx context.Context, userID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	err := s.db.WithContext(ctx).
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at DESC")
		}).
		Preload("Memberships.Book").
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&shelves).Error
	return shelves, err
}

// AddBookToCustomShelf appends a book to one of the caller's custom
// shelves. Default shelves are rejected; membership is unique per shelf.
func (s *Service) AddBookToCustomShelf(ctx context.Context, userID, shelfID, bookID uint) error {
	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return err
	}
	if shelf.IsDefault {
		return domain.ErrDefaultShelfManualAdd
	}

	var book entities.Book
	if err := s.db.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("failed to load book: %w", err)
	}

	var existing entities.ShelfMembership
	err = s.db.WithContext(ctx).
		Where("shelf_id = ? AND book_id = ?", shelfID, bookID).
		First(&existing).Error
	if err == nil {
		return domain.ErrDuplicateShelfMembership
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	membership := entities.ShelfMembership{ShelfID: shelfID, BookID: bookID, AddedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		return fmt.Errorf("failed to add book to shelf: %w", err)
	}
	return nil
}

// RemoveBookFromShelf removes a membership from one of the caller's
// shelves. Works for default shelves too (equivalent to un-shelving from
// that shelf only).
func (s *Service) RemoveBookFromShelf(ctx context.Context, userID, shelfID, bookID uint) error {
	if _, err := s.getOwnedShelf(ctx, userID, shelfID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("shelf_id = ? AND book_id = ?", shelfID, bookID).
		Delete(&entities.ShelfMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrShelfMembershipNotFound
	}
	return nil
}

// RenameShelf renames one of the caller's custom shelves. Default shelves
// keep their canonical names.
func (s *Service) RenameShelf(ctx context.Context, userID, shelfID uint, newName string) (*entities.Shelf, error) {
	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.IsDefault {
		return nil, domain.ErrDefaultShelfRename
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.Validation("Shelves.NameRequired", "shelf name is required")
	}
	if entities.IsDefaultShelfName(newName) {
		return nil, domain.Validation("Shelves.ReservedName", "%q is a reserved shelf name", newName)
	}

	shelf.Name = newName
	if err := s.db.WithContext(ctx).Save(shelf).Error; err != nil {
		return nil, fmt.Errorf("failed to rename shelf: %w", err)
	}
	return shelf, nil
}

// DeleteShelf removes one of the caller's custom shelves along with its
// memberships. Default shelves cannot be deleted.
func (s *Service) DeleteShelf(ctx context.Context, userID, shelfID uint) error {
	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return err
	}
	if shelf.IsDefault {
		return domain.ErrDefaultShelfDelete
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shelf_id = ?", shelfID).Delete(&entities.ShelfMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(shelf).Error
	})
}

func (s *Service) getOwnedShelf(ctx context.Context, userID, shelfID uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	err := s.db.WithContext(ctx).First(&shelf, shelfID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrShelfNotFound
	}
	if err != nil {
		return nil, err
	}
	if shelf.UserID != userID {
		return nil, domain.ErrShelfNotOwned
	}
	return &shelf, nil
}
