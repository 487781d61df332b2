package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

//go:generate mockgen -destination=../service/mocks/mock_chat_repository.go -package=mocks plugu/internal/chat/repository ChatRepository

type ChatRepository interface {
	FindConversation(ctx context.Context, userA, userB string) (*dbsql.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*dbsql.Conversation, error)
	CreateConversation(ctx context.Context, conv *dbsql.Conversation) error
	ListUserConversations(ctx context.Context, userID string) ([]*dbsql.Conversation, error)
	FetchHistory(ctx context.Context, conversationID string) ([]*dbsql.Message, error)
	GetMessage(ctx context.Context, messageID string) (*dbsql.Message, error)
	Save(ctx context.Context, msg *dbsql.Message) error
	Delete(ctx context.Context, messageID string) error
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

// FindConversation matches the pair in either order.
func (r *chatRepo) FindConversation(ctx context.Context, userA, userB string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
		First(&conv).Error
	if err != nil {
		return nil, common.FromGorm(err)
	}
	return &conv, nil
}

func (r *chatRepo) GetConversation(ctx context.Context, conversationID string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", conversationID).First(&conv).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &conv, nil
}

func (r *chatRepo) CreateConversation(ctx context.Context, conv *dbsql.Conversation) error {
	return r.db.WithContext(ctx).Omit("User1", "User2", "Messages").Create(conv).Error
}

// ListUserConversations is ordered by creation time, newest first.
func (r *chatRepo) ListUserConversations(ctx context.Context, userID string) ([]*dbsql.Conversation, error) {
	var convs []*dbsql.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Preload("Messages").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *chatRepo) FetchHistory(ctx context.Context, conversationID string) ([]*dbsql.Message, error) {
	var messages []*dbsql.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepo) GetMessage(ctx context.Context, messageID string) (*dbsql.Message, error) {
	var msg dbsql.Message
	if err := r.db.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &msg, nil
}

func (r *chatRepo) Save(ctx context.Context, msg *dbsql.Message) error {
	return r.db.WithContext(ctx).Omit("Sender").Create(msg).Error
}

func (r *chatRepo) Delete(ctx context.Context, messageID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&dbsql.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message %s: %w", messageID, common.ErrNotFound)
	}
	return nil
}
