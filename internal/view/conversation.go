package view

import (
	"time"

	"plugu/internal/dbsql"
)

const (
	UnknownUserName   = "Unknown User"
	PlaceholderAvatar = "https://via.placeholder.com/150"
	NoMessagesYet     = "No messages yet"
)

// ConversationSummary is one row of the inbox list.
type ConversationSummary struct {
	ID              string `json:"id"`
	OtherUserID     string `json:"other_user_id"`
	UserName        string `json:"user_name"`
	UserAvatar      string `json:"user_avatar"`
	LastMessage     string `json:"last_message"`
	LastMessageTime string `json:"last_message_time"`
	UnreadCount     int    `json:"unread_count"`
	CurrentUserID   string `json:"current_user_id"`
}

// ToConversationSummary picks the participant that is not currentUserID and
// the latest message.
//
// UnreadCount counts every message sent by the other participant: there is
// no read cursor, so it never goes down. Kept as-is until read receipts exist.
func ToConversationSummary(conv *dbsql.Conversation, currentUserID string, now time.Time) ConversationSummary {
	otherID, other := conv.User1ID, conv.User1
	if conv.User1ID == currentUserID {
		otherID, other = conv.User2ID, conv.User2
	}

	summary := ConversationSummary{
		ID:            conv.ID,
		OtherUserID:   otherID,
		UserName:      UnknownUserName,
		UserAvatar:    PlaceholderAvatar,
		LastMessage:   NoMessagesYet,
		CurrentUserID: currentUserID,
	}
	if other != nil {
		if other.ID != "" {
			summary.OtherUserID = other.ID
		}
		if other.FullName != "" {
			summary.UserName = other.FullName
		}
		if other.ProfileImage != "" {
			summary.UserAvatar = other.ProfileImage
		}
	}

	var last *dbsql.Message
	for i := range conv.Messages {
		msg := &conv.Messages[i]
		// strict comparison keeps the first of equal timestamps
		if last == nil || msg.CreatedAt.After(last.CreatedAt) {
			last = msg
		}
		if msg.SenderID != currentUserID {
			summary.UnreadCount++
		}
	}

	if last != nil {
		if last.Content != "" {
			summary.LastMessage = last.Content
		}
		summary.LastMessageTime = FormatTime(last.CreatedAt, now)
	} else {
		summary.LastMessageTime = FormatTime(conv.CreatedAt, now)
	}
	return summary
}

// ToConversationSummaries keeps the input order.
func ToConversationSummaries(convs []*dbsql.Conversation, currentUserID string, now time.Time) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, ToConversationSummary(c, currentUserID, now))
	}
	return out
}
