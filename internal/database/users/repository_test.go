package users

import (
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

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	t.Helper()

	dbPath := "./test_users_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username:  username,
		Email:     username + "@example.com",
		AvatarURL: "https://example.com/" + username + ".png",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGetUserByID(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, db, "alice")

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByID(9999)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserByUsername(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "alice")

	user, err := repo.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = repo.GetUserByUsername("nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserByTokenHash(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, db, "alice")
	require.NoError(t, db.Model(created).Update("token_hash", "abc123").Error)

	user, err := repo.GetUserByTokenHash("abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetUserByTokenHash("missing")
	require.Error(t, err)
}

func TestFindUserByID(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, db, "alice")

	summary, err := repo.FindUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, summary.ID)
	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, created.AvatarURL, summary.AvatarURL)
}

func TestGetSummaries(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	summaries, err := repo.GetSummaries([]uint{alice.ID, bob.ID, 9999})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "alice", summaries[alice.ID].Username)
	assert.Equal(t, "bob", summaries[bob.ID].Username)
	_, ok := summaries[9999]
	assert.False(t, ok)
}

func TestGetSummaries_Empty(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	summaries, err := repo.GetSummaries(nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
