package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"plugu/internal/chat/repository"
	"plugu/internal/common"
	"plugu/internal/dbsql"
	"plugu/internal/realtime"
	"plugu/internal/view"
)

const messagesTable = "messages"

//go:generate mockgen -destination=../handler/mocks/mock_chat_service.go -package=mocks plugu/internal/chat/service ChatService

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	GetOrCreateConversation(ctx context.Context, currentUserID, otherUserID string) (*dbsql.Conversation, error)
	FetchUserConversations(ctx context.Context, userID string) ([]view.ConversationSummary, error)
	FetchMessages(ctx context.Context, userID, conversationID string) ([]*dbsql.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID, content string) (*dbsql.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error
	SubscribeToMessages(ctx context.Context, userID, conversationID string, onNewMessage func(*dbsql.Message)) (func(), error)
}

type chatService struct {
	repo    repository.ChatRepository
	channel realtime.Channel
	now     func() time.Time
}

// Constructor used in DI/wire
func NewChatService(r repository.ChatRepository, ch realtime.Channel) ChatService {
	return &chatService{repo: r, channel: ch, now: time.Now}
}

// GetOrCreateConversation returns the pair's conversation, creating it on
// first contact. Two concurrent first calls can both insert.
func (s *chatService) GetOrCreateConversation(ctx context.Context, currentUserID, otherUserID string) (*dbsql.Conversation, error) {
	if err := common.RequireID("current user id", currentUserID); err != nil {
		return nil, err
	}
	if err := common.RequireID("other user id", otherUserID); err != nil {
		return nil, err
	}
	if currentUserID == otherUserID {
		return nil, common.Invalidf("cannot start a conversation with yourself")
	}

	conv, err := s.repo.FindConversation(ctx, currentUserID, otherUserID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	conv = &dbsql.Conversation{User1ID: currentUserID, User2ID: otherUserID}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	log.Debug().Str("conversation_id", conv.ID).Msg("conversation created")
	return conv, nil
}

func (s *chatService) FetchUserConversations(ctx context.Context, userID string) ([]view.ConversationSummary, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}

	convs, err := s.repo.ListUserConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return view.ToConversationSummaries(convs, userID, s.now()), nil
}

// participant checks userID is one of the conversation's two members.
func (s *chatService) participant(ctx context.Context, userID, conversationID string) error {
	if err := common.RequireID("user id", userID); err != nil {
		return err
	}
	if err := common.RequireID("conversation id", conversationID); err != nil {
		return err
	}

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("fetch conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return fmt.Errorf("conversation %s: %w", conversationID, common.ErrPermissionDenied)
	}
	return nil
}

// FetchMessages returns the history oldest first. Only the two participants
// may read it.
func (s *chatService) FetchMessages(ctx context.Context, userID, conversationID string) ([]*dbsql.Message, error) {
	if err := s.participant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.repo.FetchHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	view.SortMessages(messages)
	return messages, nil
}

// SendMessage stores the message and then pushes it to subscribers. Once
// stored the send has succeeded; a failed push is only logged.
func (s *chatService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*dbsql.Message, error) {
	if err := common.RequireID("conversation id", conversationID); err != nil {
		return nil, err
	}
	if err := common.RequireID("sender id", senderID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Invalidf("message content cannot be empty")
	}
	if err := s.participant(ctx, senderID, conversationID); err != nil {
		return nil, err
	}

	// Set server-side timestamp
	msg := &dbsql.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	s.publish(ctx, msg)
	return msg, nil
}

func (s *chatService) publish(ctx context.Context, msg *dbsql.Message) {
	if s.channel == nil {
		return
	}

	topic := realtime.ConversationTopic(msg.ConversationID)
	evt, err := realtime.NewEvent(realtime.EventInsert, topic, messagesTable, msg)
	if err == nil {
		err = s.channel.Publish(ctx, topic, evt)
	}
	if err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Str("topic", topic).Msg("message stored but not pushed")
	}
}

// DeleteMessage removes a message. Only its sender may delete it.
func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	if err := common.RequireID("user id", userID); err != nil {
		return err
	}
	if err := common.RequireID("message id", messageID); err != nil {
		return err
	}

	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("fetch message: %w", err)
	}
	if msg.SenderID != userID {
		return fmt.Errorf("message %s: %w", messageID, common.ErrPermissionDenied)
	}
	if err := s.repo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SubscribeToMessages calls onNewMessage for every message inserted into the
// conversation after the subscription is established. userID must be a
// participant. The returned func
// tears it down and may be called any number of times.
func (s *chatService) SubscribeToMessages(ctx context.Context, userID, conversationID string, onNewMessage func(*dbsql.Message)) (func(), error) {
	if onNewMessage == nil {
		return nil, common.Invalidf("message callback is required")
	}
	if s.channel == nil {
		return nil, errors.New("real-time channel not configured")
	}
	if err := s.participant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	topic := realtime.ConversationTopic(conversationID)
	sub, err := s.channel.Subscribe(ctx, topic, func(evt realtime.Event) {
		if evt.Type != realtime.EventInsert || (evt.Table != "" && evt.Table != messagesTable) {
			return
		}
		var msg dbsql.Message
		if err := json.Unmarshal(evt.Record, &msg); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("undecodable message record")
			return
		}
		if msg.ConversationID != conversationID {
			return
		}
		onNewMessage(&msg)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return sub.Unsubscribe, nil
}
