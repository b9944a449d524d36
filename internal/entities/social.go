package entities

import (
	"time"

	"gorm.io/gorm"
)

type Quote struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index" json:"user_id"`
	BookID *uint  `gorm:"index" json:"book_id,omitempty"`
	Text   string `gorm:"type:text" json:"text"`
	Tags   string `gorm:"size:512" json:"tags,omitempty"` // comma-separated free text

	// Derived from like rows, refreshed on like/unlike.
	LikeCount int64 `gorm:"default:0" json:"like_count"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Book  *Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Likes []QuoteLike `gorm:"foreignKey:QuoteID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type QuoteLike struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	QuoteID uint `gorm:"index:idx_quote_user_like,unique" json:"quote_id"`
	UserID  uint `gorm:"index:idx_quote_user_like,unique" json:"user_id"`

	Quote Quote `gorm:"foreignKey:QuoteID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed edge: FollowerID follows FolloweeID. Creation is
// idempotent and self-follows are rejected at the service layer.
type Follow struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FollowerID uint `gorm:"index:idx_follower_followee,unique" json:"follower_id"`
	FolloweeID uint `gorm:"index:idx_follower_followee,unique" json:"followee_id"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (Quote) TableName() string {
	return "quotes"
}

func (QuoteLike) TableName() string {
	return "quote_likes"
}

func (Follow) TableName() string {
	return "follows"
}
