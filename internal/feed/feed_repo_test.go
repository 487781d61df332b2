package feed

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestFeedRepository_UpsertPost(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts` .* ON DUPLICATE KEY UPDATE `content`=VALUES\\(`content`\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	post := &dbsql.Post{UserID: "u-1", Content: "hello", Images: []string{"/media/f1"}, Tags: []string{}}
	require.NoError(t, NewFeedRepository(db).UpsertPost(context.Background(), post))
	assert.NotEmpty(t, post.PostID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_ListPosts(t *testing.T) {
	db, mock := setupTestDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` ORDER BY created_at DESC LIMIT ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "user_id", "content", "images", "tags", "created_at"}).
			AddRow("p-2", "u-1", "newer", `["/media/f2"]`, `["maize"]`, now).
			AddRow("p-1", "u-1", "older", `[]`, `[]`, now.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).AddRow("u-1", "Amina"))

	posts, err := NewFeedRepository(db).ListPosts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []string{"/media/f2"}, posts[0].Images)
	assert.Equal(t, []string{"maize"}, posts[0].Tags)
	require.NotNil(t, posts[1].User)
	assert.Equal(t, "Amina", posts[1].User.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_GetPost_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` WHERE post_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}))

	_, err := NewFeedRepository(db).GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_DeletePost(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `posts` WHERE post_id = ?")).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewFeedRepository(db).DeletePost(context.Background(), "p-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
