package feed

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	t.Helper()

	dbPath := "./test_feed_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Quote{},
		&entities.Review{},
		&entities.Shelf{},
		&entities.ShelfMembership{},
		&entities.Follow{},
	)
	require.NoError(t, err)

	cfg := config.Feed{DefaultPageSize: 20, MaxPageSize: 50}
	service := NewService(db, cfg)

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		os.Remove(dbPath)
	}

	return service, db, cleanup
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestBook(t *testing.T, db *gorm.DB, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: "Test Author"}
	require.NoError(t, db.Create(book).Error)
	return book
}

func follow(t *testing.T, db *gorm.DB, followerID, followeeID uint) {
	t.Helper()
	require.NoError(t, db.Create(&entities.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}).Error)
}

func createQuoteAt(t *testing.T, db *gorm.DB, userID uint, bookID *uint, text string, at time.Time) *entities.Quote {
	t.Helper()
	quote := &entities.Quote{UserID: userID, BookID: bookID, Text: text}
	require.NoError(t, db.Create(quote).Error)
	require.NoError(t, db.Model(quote).Update("created_at", at).Error)
	quote.CreatedAt = at
	return quote
}

func createReviewAt(t *testing.T, db *gorm.DB, userID, bookID uint, rating int, at time.Time) *entities.Review {
	t.Helper()
	review := &entities.Review{UserID: userID, BookID: bookID, Rating: rating, Text: "solid"}
	require.NoError(t, db.Create(review).Error)
	require.NoError(t, db.Model(review).Update("created_at", at).Error)
	review.CreatedAt = at
	return review
}

func createShelfAdditionAt(t *testing.T, db *gorm.DB, userID, bookID uint, shelfName string, at time.Time) *entities.ShelfMembership {
	t.Helper()
	shelf := &entities.Shelf{UserID: userID, Name: shelfName, IsDefault: entities.IsDefaultShelfName(shelfName)}
	require.NoError(t, db.Create(shelf).Error)
	membership := &entities.ShelfMembership{ShelfID: shelf.ID, BookID: bookID, AddedAt: at}
	require.NoError(t, db.Create(membership).Error)
	return membership
}

func TestGetFeed_NoFollows(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "loner")

	page, err := service.GetFeed(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestGetFeed_MergesActivityTypes(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	book := createTestBook(t, db, "Dune")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	createQuoteAt(t, db, author.ID, &book.ID, "Fear is the mind-killer.", base.Add(1*time.Hour))
	createReviewAt(t, db, author.ID, book.ID, 5, base.Add(2*time.Hour))
	createShelfAdditionAt(t, db, author.ID, book.ID, entities.ShelfRead, base.Add(3*time.Hour))

	page, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)

	// Newest first.
	assert.Equal(t, ActivityBookAdded, page.Items[0].ActivityType)
	assert.Equal(t, ActivityReview, page.Items[1].ActivityType)
	assert.Equal(t, ActivityQuote, page.Items[2].ActivityType)

	// Exactly one payload per item.
	require.NotNil(t, page.Items[0].BookAdded)
	assert.Nil(t, page.Items[0].Quote)
	assert.Nil(t, page.Items[0].Review)
	assert.Equal(t, entities.ShelfRead, page.Items[0].BookAdded.ShelfName)
	assert.Equal(t, "Dune", page.Items[0].BookAdded.Book.Title)

	require.NotNil(t, page.Items[1].Review)
	assert.Equal(t, 5, page.Items[1].Review.Rating)
	assert.Equal(t, "Dune", page.Items[1].Review.Book.Title)

	require.NotNil(t, page.Items[2].Quote)
	assert.Equal(t, "Fear is the mind-killer.", page.Items[2].Quote.Text)
	require.NotNil(t, page.Items[2].Quote.Book)
	assert.Equal(t, "Dune", page.Items[2].Quote.Book.Title)

	for _, item := range page.Items {
		assert.Equal(t, author.ID, item.User.ID)
		assert.Equal(t, "author", item.User.Username)
	}
}

func TestGetFeed_ExcludesNonFollowedUsers(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")
	follow(t, db, reader.ID, followed.ID)

	book := createTestBook(t, db, "Dune")
	now := time.Now().UTC()
	createQuoteAt(t, db, followed.ID, &book.ID, "kept", now)
	createQuoteAt(t, db, stranger.ID, &book.ID, "dropped", now)

	page, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "kept", page.Items[0].Quote.Text)
}

func TestGetFeed_ExcludesOwnActivity(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	other := createTestUser(t, db, "other")
	follow(t, db, reader.ID, other.ID)

	book := createTestBook(t, db, "Dune")
	now := time.Now().UTC()
	createQuoteAt(t, db, reader.ID, &book.ID, "mine", now)
	createQuoteAt(t, db, other.ID, &book.ID, "theirs", now)

	page, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "theirs", page.Items[0].Quote.Text)
}

func TestGetFeed_PaginationAcrossPages(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	book := createTestBook(t, db, "Dune")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		createQuoteAt(t, db, author.ID, &book.ID, fmt.Sprintf("quote-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	seen := make([]string, 0, 7)
	for pageNumber := 1; pageNumber <= 3; pageNumber++ {
		page, err := service.GetFeed(context.Background(), reader.ID, pageNumber, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, page.Total)
		assert.Equal(t, pageNumber, page.Page)
		for _, item := range page.Items {
			seen = append(seen, item.Quote.Text)
		}
	}

	// Every item appears exactly once, newest first.
	require.Len(t, seen, 7)
	for i := 0; i < 7; i++ {
		assert.Equal(t, fmt.Sprintf("quote-%d", 6-i), seen[i])
	}
}

func TestGetFeed_PageBeyondEnd(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	book := createTestBook(t, db, "Dune")
	createQuoteAt(t, db, author.ID, &book.ID, "only one", time.Now().UTC())

	page, err := service.GetFeed(context.Background(), reader.ID, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Page)
}

func TestGetFeed_PageSizeClamping(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	book := createTestBook(t, db, "Dune")
	createQuoteAt(t, db, author.ID, &book.ID, "q", time.Now().UTC())

	// Zero falls back to the default, oversized clamps to the max.
	page, err := service.GetFeed(context.Background(), reader.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)

	page, err = service.GetFeed(context.Background(), reader.ID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)

	page, err = service.GetFeed(context.Background(), reader.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestGetFeed_StableOrderForEqualTimestamps(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	book := createTestBook(t, db, "Dune")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createQuoteAt(t, db, author.ID, &book.ID, "first", at)
	createQuoteAt(t, db, author.ID, &book.ID, "second", at)
	createQuoteAt(t, db, author.ID, &book.ID, "third", at)

	first, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	second, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)

	require.Len(t, first.Items, 3)
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Quote.Text, second.Items[i].Quote.Text)
	}
}

func TestGetFeed_MultipleFollowedUsers(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	follow(t, db, reader.ID, alice.ID)
	follow(t, db, reader.ID, bob.ID)

	book := createTestBook(t, db, "Dune")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createQuoteAt(t, db, alice.ID, &book.ID, "from alice", base.Add(time.Minute))
	createReviewAt(t, db, bob.ID, book.ID, 4, base.Add(2*time.Minute))

	page, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "bob", page.Items[0].User.Username)
	assert.Equal(t, "alice", page.Items[1].User.Username)
}

func TestGetFeed_QuoteWithoutBook(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	follow(t, db, reader.ID, author.ID)

	createQuoteAt(t, db, author.ID, nil, "standalone thought", time.Now().UTC())

	page, err := service.GetFeed(context.Background(), reader.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Quote)
	assert.Nil(t, page.Items[0].Quote.Book)
}
