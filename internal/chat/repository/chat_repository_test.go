package repository

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

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

var (
	conversationColumns = []string{"id", "user1_id", "user2_id", "created_at"}
	messageColumns      = []string{"id", "conversation_id", "sender_id", "content", "created_at"}
	userColumns         = []string{"id", "full_name", "profile_image", "location", "is_verified", "created_at", "updated_at"}
)

func TestChatRepository_FindConversation(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expectID    string
		expectedErr error
	}{
		{
			name: "pair stored in reverse order",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(conversationColumns).
					AddRow("conv-1", "bob", "alice", time.Now())
				mock.ExpectQuery(regexp.QuoteMeta(
					"SELECT * FROM `conversations` WHERE (user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)")).
					WillReturnRows(rows)
			},
			expectID: "conv-1",
		},
		{
			name: "no conversation yet",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `conversations`")).
					WillReturnRows(sqlmock.NewRows(conversationColumns))
			},
			expectedErr: common.ErrNotFound,
		},
		{
			name: "database error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `conversations`")).
					WillReturnError(assert.AnError)
			},
			expectedErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			repo := NewChatRepository(db)
			conv, err := repo.FindConversation(context.Background(), "alice", "bob")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, conv)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectID, conv.ID)
				assert.True(t, conv.HasParticipant("alice"))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_CreateConversation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `conversations`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	conv := &dbsql.Conversation{User1ID: "alice", User2ID: "bob"}
	require.NoError(t, NewChatRepository(db).CreateConversation(context.Background(), conv))
	assert.NotEmpty(t, conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_ListUserConversations(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `conversations` WHERE user1_id = ? OR user2_id = ? ORDER BY created_at DESC")).
		WithArgs("alice", "alice").
		WillReturnRows(sqlmock.NewRows(conversationColumns).
			AddRow("conv-2", "alice", "carol", now).
			AddRow("conv-1", "bob", "alice", now.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages`")).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m-1", "conv-1", "bob", "hey", now.Add(-30*time.Minute)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users`")).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("alice", "Alice", "", "", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users`")).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("carol", "Carol", "", "", false, now, now).
			AddRow("alice", "Alice", "", "", false, now, now))

	convs, err := NewChatRepository(db).ListUserConversations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "conv-2", convs[0].ID)
	assert.Len(t, convs[1].Messages, 1)
	assert.Empty(t, convs[0].Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_ListUserConversations_Error(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `conversations`")).
		WillReturnError(assert.AnError)

	convs, err := NewChatRepository(db).ListUserConversations(context.Background(), "alice")
	assert.Error(t, err)
	assert.Nil(t, convs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_FetchHistory(t *testing.T) {
	tests := []struct {
		name           string
		conversationID string
		mockSetup      func(sqlmock.Sqlmock)
		expectedCount  int
		expectError    bool
	}{
		{
			name:           "messages with senders",
			conversationID: "conv-123",
			mockSetup: func(mock sqlmock.Sqlmock) {
				base := time.Now().Add(-time.Hour)
				rows := sqlmock.NewRows(messageColumns).
					AddRow("m-1", "conv-123", "user-456", "Hello", base).
					AddRow("m-2", "conv-123", "user-456", "Anyone?", base.Add(time.Minute))

				mock.ExpectQuery(regexp.QuoteMeta(
					"SELECT * FROM `messages` WHERE conversation_id = ? ORDER BY created_at ASC")).
					WithArgs("conv-123").
					WillReturnRows(rows)
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
					WithArgs("user-456").
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("user-456", "Grace", "", "", true, base, base))
			},
			expectedCount: 2,
		},
		{
			name:           "empty conversation",
			conversationID: "conv-empty",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(
					"SELECT * FROM `messages` WHERE conversation_id = ?")).
					WithArgs("conv-empty").
					WillReturnRows(sqlmock.NewRows(messageColumns))
			},
			expectedCount: 0,
		},
		{
			name:           "database error",
			conversationID: "conv-error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages`")).
					WillReturnError(assert.AnError)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			repo := NewChatRepository(db)
			messages, err := repo.FetchHistory(context.Background(), tt.conversationID)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, messages)
			} else {
				assert.NoError(t, err)
				assert.Len(t, messages, tt.expectedCount)
				for _, m := range messages {
					require.NotNil(t, m.Sender)
					assert.Equal(t, "Grace", m.Sender.FullName)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_Save(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "successful save",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(
					"INSERT INTO `messages` (`id`,`conversation_id`,`sender_id`,`content`,`created_at`) VALUES (?,?,?,?,?)")).
					WithArgs(sqlmock.AnyArg(), "conv-123", "user-456", "Hello, world!", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "database error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			msg := &dbsql.Message{ConversationID: "conv-123", SenderID: "user-456", Content: "Hello, world!"}
			err := NewChatRepository(db).Save(context.Background(), msg)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, msg.ID)
				assert.False(t, msg.CreatedAt.IsZero())
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_Delete(t *testing.T) {
	tests := []struct {
		name        string
		affected    int64
		expectedErr error
	}{
		{"deleted", 1, nil},
		{"missing row", 0, common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `messages` WHERE id = ?")).
				WithArgs("m-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			err := NewChatRepository(db).Delete(context.Background(), "m-1")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_GetConversation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `conversations` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(conversationColumns).AddRow("conv-ab", "alice", "bob", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `conversations` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(conversationColumns))

	repo := NewChatRepository(db)
	conv, err := repo.GetConversation(context.Background(), "conv-ab")
	require.NoError(t, err)
	assert.True(t, conv.HasParticipant("bob"))
	assert.False(t, conv.HasParticipant("mallory"))

	_, err = repo.GetConversation(context.Background(), "conv-gone")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_GetMessage(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(messageColumns).AddRow("m-1", "conv-ab", "alice", "hi", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
		WillReturnError(assert.AnError)

	repo := NewChatRepository(db)
	msg, err := repo.GetMessage(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.SenderID)

	_, err = repo.GetMessage(context.Background(), "m-2")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
