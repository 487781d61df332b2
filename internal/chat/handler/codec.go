package handler

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"plugu/internal/dbsql"
	"plugu/internal/view"
)

type GetOrCreateConversationRequest struct {
	OtherUserID string `json:"other_user_id"`
}

type ListConversationsResponse struct {
	Conversations []view.ConversationSummary `json:"conversations"`
}

// GetMessagesRequest windows the history; a zero Limit means everything
// after Offset.
type GetMessagesRequest struct {
	ConversationID string `json:"conversation_id"`
	Offset         int    `json:"offset"`
	Limit          int    `json:"limit"`
}

type MessagesResponse struct {
	Messages []*dbsql.Message `json:"messages"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

type DeleteMessageRequest struct {
	MessageID string `json:"message_id"`
}

type DeleteMessageResponse struct {
	Success bool `json:"success"`
}

type SubscribeMessagesRequest struct {
	ConversationID string `json:"conversation_id"`
	IncludeHistory bool   `json:"include_history"`
}

// EncodeStruct converts v to a Struct through its JSON form.
func EncodeStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// DecodeStruct fills v from s. A nil s leaves v untouched.
func DecodeStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		return nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func decodeRequest(s *structpb.Struct, v interface{}) error {
	if err := DecodeStruct(s, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encodeResponse(v interface{}) (*structpb.Struct, error) {
	out, err := EncodeStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
