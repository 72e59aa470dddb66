package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// setupMockDB returns a postgres-dialect gorm DB over sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@x.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, NewUserRepository(db, nil).Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, db *gorm.DB, owner *models.User, title string, offset time.Duration) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " body", UserID: owner.ID, CreatedAt: baseTime.Add(offset)}
	require.NoError(t, NewPostRepository(db, nil).Create(context.Background(), p))
	return p
}
