// Package feed assembles the social activity feed.
//
// The feed merges quotes, reviews, and shelf additions from the users the
// caller follows into one reverse-chronological, paginated list. Assembly
// is fetch-then-merge in memory: all matching activity rows are loaded and
// sorted before the page is cut. The page-size cap bounds the response, not
// the fetch volume, so this approach has a known scalability ceiling once
// follow graphs grow large; pushing the union into the database is the
// eventual fix.
package feed

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/database/users"
	"github.com/bookverse/bookverse/internal/entities"
)

type ActivityType string

const (
	ActivityQuote     ActivityType = "Quote"
	ActivityReview    ActivityType = "Review"
	ActivityBookAdded ActivityType = "BookAdded"
)

// Item is one normalized piece of activity. Exactly one of the payload
// fields is set, matching ActivityType. Items are built on read and never
// persisted.
type Item struct {
	ID           uint                 `json:"id"`
	ActivityType ActivityType         `json:"activity_type"`
	Timestamp    time.Time            `json:"timestamp"`
	User         entities.UserSummary `json:"user"`

	Quote     *QuotePayload     `json:"quote,omitempty"`
	Review    *ReviewPayload    `json:"review,omitempty"`
	BookAdded *BookAddedPayload `json:"book_added,omitempty"`
}

type QuotePayload struct {
	Text string         `json:"text"`
	Tags string         `json:"tags,omitempty"`
	Book *entities.Book `json:"book,omitempty"`
}

type ReviewPayload struct {
	Rating int           `json:"rating"`
	Text   string        `json:"text,omitempty"`
	Book   entities.Book `json:"book"`
}

type BookAddedPayload struct {
	Book      entities.Book `json:"book"`
	ShelfName string        `json:"shelf_name"`
}

// Page is the paginated feed result.
type Page struct {
	Items    []Item `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}

// Service aggregates activity from followed users.
type Service struct {
	db    *gorm.DB
	users *users.Repository
	cfg   config.Feed
}

// NewService creates a new feed service.
func NewService(db *gorm.DB, cfg config.Feed) *Service {
	return &Service{db: db, users: users.NewRepository(db), cfg: cfg}
}

// GetFeed returns one page of the caller's activity feed. Page numbers
// start at 1; page sizes are clamped to the configured maximum. Total is
// the full merged item count before pagination.
func (s *Service) GetFeed(ctx context.Context, userID uint, pageNumber, pageSize int) (*Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	followingIDs, err := s.followingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(followingIDs) == 0 {
		return &Page{Items: []Item{}, Page: pageNumber, PageSize: pageSize, Total: 0}, nil
	}

	items, err := s.collect(ctx, followingIDs)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	total := len(items)
	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &Page{
		Items:    items[start:end],
		Page:     pageNumber,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (s *Service) followingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// collect fetches and normalizes all activity from the given users. Reads
// are sequential; volumes are small enough that fan-out is not worth the
// coordination.
func (s *Service) collect(ctx context.Context, followingIDs []uint) ([]Item, error) {
	db := s.db.WithContext(ctx)

	var quotes []entities.Quote
	err := db.Preload("Book").Where("user_id IN ?", followingIDs).Find(&quotes).Error
	if err != nil {
		return nil, err
	}

	var reviews []entities.Review
	err = db.Preload("Book").Where("user_id IN ?", followingIDs).Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	var shelvesOwned []entities.Shelf
	err = db.Where("user_id IN ?", followingIDs).Find(&shelvesOwned).Error
	if err != nil {
		return nil, err
	}

	shelfIDs := make([]uint, 0, len(shelvesOwned))
	shelfByID := make(map[uint]entities.Shelf, len(shelvesOwned))
	for _, shelf := range shelvesOwned {
		shelfIDs = append(shelfIDs, shelf.ID)
		shelfByID[shelf.ID] = shelf
	}

	var memberships []entities.ShelfMembership
	if len(shelfIDs) > 0 {
		err = db.Preload("Book").Where("shelf_id IN ?", shelfIDs).Find(&memberships).Error
		if err != nil {
			return nil, err
		}
	}

	summaries, err := s.users.GetSummaries(followingIDs)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(quotes)+len(reviews)+len(memberships))

	for _, q := range quotes {
		items = append(items, Item{
			ID:           q.ID,
			ActivityType: ActivityQuote,
			Timestamp:    q.CreatedAt,
			User:         summaries[q.UserID],
			Quote:        &QuotePayload{Text: q.Text, Tags: q.Tags, Book: q.Book},
		})
	}

	for _, r := range reviews {
		items = append(items, Item{
			ID:           r.ID,
			ActivityType: ActivityReview,
			Timestamp:    r.CreatedAt,
			User:         summaries[r.UserID],
			Review:       &ReviewPayload{Rating: r.Rating, Text: r.Text, Book: r.Book},
		})
	}

	for _, m := range memberships {
		shelf := shelfByID[m.ShelfID]
		items = append(items, Item{
			ID:           m.ID,
			ActivityType: ActivityBookAdded,
			Timestamp:    m.AddedAt,
			User:         summaries[shelf.UserID],
			BookAdded:    &BookAddedPayload{Book: m.Book, ShelfName: shelf.Name},
		})
	}

	return items, nil
}
