package social

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

	dbPath := "./test_social_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Follow{},
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

func followCount(t *testing.T, db *gorm.DB, followerID, followeeID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error)
	return count
}

func TestFollow(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	err := service.Follow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followCount(t, db, alice.ID, bob.ID))

	following, err := service.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Edge is directed.
	reverse, err := service.IsFollowing(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollow_Idempotent(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, service.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, service.Follow(context.Background(), alice.ID, bob.ID))

	assert.Equal(t, int64(1), followCount(t, db, alice.ID, bob.ID))
}

func TestFollow_Self(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")

	err := service.Follow(context.Background(), alice.ID, alice.ID)
	require.ErrorIs(t, err, domain.ErrSelfFollow)
	assert.Equal(t, int64(0), followCount(t, db, alice.ID, alice.ID))
}

func TestFollow_UserNotFound(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")

	err := service.Follow(context.Background(), alice.ID, 9999)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUnfollow(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, service.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, service.Unfollow(context.Background(), alice.ID, bob.ID))

	assert.Equal(t, int64(0), followCount(t, db, alice.ID, bob.ID))

	following, err := service.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUnfollow_NotFollowing(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	err := service.Unfollow(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrNotFollowing)
}

func TestGetFollowingIDs(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, service.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, service.Follow(context.Background(), alice.ID, carol.ID))

	ids, err := service.GetFollowingIDs(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)

	ids, err = service.GetFollowingIDs(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetFollowingAndFollowers(t *testing.T) {
	service, db, cleanup := setupTestService(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, service.Follow(context.Background(), alice.ID, carol.ID))
	require.NoError(t, service.Follow(context.Background(), bob.ID, carol.ID))

	following, err := service.GetFollowing(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].Username)

	followers, err := service.GetFollowers(context.Background(), carol.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	names := []string{followers[0].Username, followers[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}
