package reviews

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookverse/bookverse/internal/domain"
	"github.com/bookverse/bookverse/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	t.Helper()

	dbPath := "./test_reviews_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Review{},
	)
	require.NoError(t, err)

	service := NewService(db)

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

func reloadBook(t *testing.T, db *gorm.DB, bookID uint) *entities.Book {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.First(&book, bookID).Error)
	return &book
}

func TestCreateReview(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), user.ID, book.ID, 4, "liked it")
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "liked it", review.Text)

	updated := reloadBook(t, db, book.ID)
	assert.InDelta(t, 4.0, updated.RatingAverage, 0.001)
	assert.Equal(t, int64(1), updated.RatingCount)
}

func TestCreateReview_Duplicate(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Dune")

	_, err := service.CreateReview(context.Background(), user.ID, book.ID, 4, "")
	require.NoError(t, err)

	_, err = service.CreateReview(context.Background(), user.ID, book.ID, 5, "again")
	require.ErrorIs(t, err, domain.ErrDuplicateReview)

	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Reviews.Duplicate", de.Code)
	assert.Equal(t, domain.KindConflict, de.Kind)

	// Aggregate unchanged by the rejected attempt.
	updated := reloadBook(t, db, book.ID)
	assert.Equal(t, int64(1), updated.RatingCount)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Dune")

	for _, rating := range []int{-1, 6, 100} {
		_, err := service.CreateReview(context.Background(), user.ID, book.ID, rating, "")
		require.ErrorIs(t, err, domain.ErrRatingOutOfRange)
	}
}

func TestCreateReview_BookNotFound(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")

	_, err := service.CreateReview(context.Background(), user.ID, 9999, 3, "")
	require.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestCreateReview_ZeroRatingCountsTowardAggregate(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")

	_, err := service.CreateReview(context.Background(), alice.ID, book.ID, 0, "hated it")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), bob.ID, book.ID, 4, "")
	require.NoError(t, err)

	updated := reloadBook(t, db, book.ID)
	assert.InDelta(t, 2.0, updated.RatingAverage, 0.001)
	assert.Equal(t, int64(2), updated.RatingCount)
}

func TestUpdateReview_RecomputesAggregate(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), alice.ID, book.ID, 2, "")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), bob.ID, book.ID, 4, "")
	require.NoError(t, err)

	updated, err := service.UpdateReview(context.Background(), alice.ID, review.ID, 5, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "changed my mind", updated.Text)

	reloaded := reloadBook(t, db, book.ID)
	assert.InDelta(t, 4.5, reloaded.RatingAverage, 0.001)
	assert.Equal(t, int64(2), reloaded.RatingCount)
}

func TestUpdateReview_NotOwned(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), alice.ID, book.ID, 3, "")
	require.NoError(t, err)

	_, err = service.UpdateReview(context.Background(), bob.ID, review.ID, 5, "")
	require.ErrorIs(t, err, domain.ErrReviewNotOwned)
}

func TestUpdateReview_NotFound(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")

	_, err := service.UpdateReview(context.Background(), user.ID, 9999, 3, "")
	require.ErrorIs(t, err, domain.ErrReviewNotFound)
}

func TestDeleteReview_RecomputesAggregate(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), alice.ID, book.ID, 1, "")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), bob.ID, book.ID, 5, "")
	require.NoError(t, err)

	err = service.DeleteReview(context.Background(), alice.ID, review.ID)
	require.NoError(t, err)

	updated := reloadBook(t, db, book.ID)
	assert.InDelta(t, 5.0, updated.RatingAverage, 0.001)
	assert.Equal(t, int64(1), updated.RatingCount)
}

func TestDeleteReview_LastReviewResetsAggregate(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), user.ID, book.ID, 5, "")
	require.NoError(t, err)

	err = service.DeleteReview(context.Background(), user.ID, review.ID)
	require.NoError(t, err)

	updated := reloadBook(t, db, book.ID)
	assert.Equal(t, 0.0, updated.RatingAverage)
	assert.Equal(t, int64(0), updated.RatingCount)
}

func TestDeleteReview_AllowsReReview(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), user.ID, book.ID, 2, "")
	require.NoError(t, err)
	require.NoError(t, service.DeleteReview(context.Background(), user.ID, review.ID))

	// Soft-deleted review no longer blocks a fresh one.
	fresh, err := service.CreateReview(context.Background(), user.ID, book.ID, 4, "second take")
	require.NoError(t, err)
	assert.NotEqual(t, review.ID, fresh.ID)

	updated := reloadBook(t, db, book.ID)
	assert.InDelta(t, 4.0, updated.RatingAverage, 0.001)
	assert.Equal(t, int64(1), updated.RatingCount)
}

func TestDeleteReview_NotOwned(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")

	review, err := service.CreateReview(context.Background(), alice.ID, book.ID, 3, "")
	require.NoError(t, err)

	err = service.DeleteReview(context.Background(), bob.ID, review.ID)
	require.ErrorIs(t, err, domain.ErrReviewNotOwned)

	// Review and aggregate untouched.
	_, err = service.GetReviewByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloadBook(t, db, book.ID).RatingCount)
}

func TestGetReviewsByBook(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")
	other := createTestBook(t, db, "Hyperion")

	_, err := service.CreateReview(context.Background(), alice.ID, book.ID, 4, "")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), bob.ID, book.ID, 5, "")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), alice.ID, other.ID, 1, "")
	require.NoError(t, err)

	found, err := service.GetReviewsByBook(context.Background(), book.ID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, r := range found {
		assert.Equal(t, book.ID, r.BookID)
	}
}

func TestRecountBookRatings(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Dune")
	empty := createTestBook(t, db, "Hyperion")

	_, err := service.CreateReview(context.Background(), alice.ID, book.ID, 2, "")
	require.NoError(t, err)
	_, err = service.CreateReview(context.Background(), bob.ID, book.ID, 4, "")
	require.NoError(t, err)

	// Corrupt the stored aggregates to simulate drift.
	require.NoError(t, db.Model(&entities.Book{}).Where("id = ?", book.ID).
		Updates(map[string]any{"rating_average": 9.9, "rating_count": 42}).Error)
	require.NoError(t, db.Model(&entities.Book{}).Where("id = ?", empty.ID).
		Updates(map[string]any{"rating_average": 1.0, "rating_count": 7}).Error)

	count, err := service.RecountBookRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	reviewed := reloadBook(t, db, book.ID)
	assert.InDelta(t, 3.0, reviewed.RatingAverage, 0.001)
	assert.Equal(t, int64(2), reviewed.RatingCount)

	repaired := reloadBook(t, db, empty.ID)
	assert.Equal(t, 0.0, repaired.RatingAverage)
	assert.Equal(t, int64(0), repaired.RatingCount)
}
