package entities

import (
	"time"

	"gorm.io/gorm"
)

// Canonical names of the three system-managed default shelves. Every user
// has exactly one of each; a book sits on at most one of them at a time.
const (
	ShelfWantToRead       = "Want to Read"
	ShelfCurrentlyReading = "Currently Reading"
	ShelfRead             = "Read"
)

// DefaultShelfNames lists the canonical default shelves in creation order.
var DefaultShelfNames = []string{ShelfWantToRead, ShelfCurrentlyReading, ShelfRead}

// IsDefaultShelfName reports whether name is one of the canonical
// default-shelf names.
func IsDefaultShelfName(name string) bool {
	for _, n := range DefaultShelfNames {
		if n == name {
			return true
		}
	}
	return false
}

type Shelf struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index" json:"user_id"`
	Name      string `gorm:"size:100" json:"name"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`

	User        User              `gorm:"foreignKey:UserID" json:"-"`
	Memberships []ShelfMembership `gorm:"foreignKey:ShelfID" json:"memberships,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ShelfMembership records a book sitting on a shelf. Lifecycle is owned by
// the shelf: memberships are created and destroyed through shelf operations
// and removed together with the shelf.
type ShelfMembership struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	ShelfID uint      `gorm:"index:idx_shelf_book,unique" json:"shelf_id"`
	BookID  uint      `gorm:"index:idx_shelf_book,unique" json:"book_id"`
	AddedAt time.Time `gorm:"index" json:"added_at"`

	Shelf Shelf `gorm:"foreignKey:ShelfID" json:"-"`
	Book  Book  `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Shelf) TableName() string {
	return "shelves"
}

func (ShelfMembership) TableName() string {
	return "shelf_memberships"
}
