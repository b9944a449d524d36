package entities

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CreatedByID     uint   `gorm:"index" json:"created_by_id"`
	Title           string `gorm:"index;size:512" json:"title"`
	Author          string `gorm:"index;size:256" json:"author"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	ISBN            string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL        string `gorm:"size:2048" json:"cover_url,omitempty"`
	PageCount       int    `json:"page_count"`
	PublicationYear int    `json:"publication_year,omitempty"`

	// Rating aggregate, recomputed on every review mutation.
	RatingAverage float64 `gorm:"default:0" json:"rating_average"`
	RatingCount   int64   `gorm:"default:0" json:"rating_count"`

	CreatedBy User           `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Review struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index" json:"user_id"`
	BookID uint   `gorm:"index" json:"book_id"`
	Rating int    `json:"rating"` // 0-5
	Text   string `gorm:"type:text" json:"text,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type ReadingProgress struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	UserID      uint `gorm:"index:idx_progress_user_book,unique" json:"user_id"`
	BookID      uint `gorm:"index:idx_progress_user_book,unique" json:"book_id"`
	CurrentPage int  `json:"current_page"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Review) TableName() string {
	return "reviews"
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
