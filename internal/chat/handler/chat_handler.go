// Package handler exposes the chat service over gRPC.
package handler

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"plugu/internal/chat/service"
	"plugu/internal/common"
	"plugu/internal/dbsql"
	"plugu/internal/view"
)

type ChatHandler struct {
	UnimplementedChatServiceServer
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := common.UserIDFromContext(ctx)
	if !ok || userID == "" {
		return "", status.Error(codes.Unauthenticated, "caller not authenticated")
	}
	return userID, nil
}

func (h *ChatHandler) GetOrCreateConversation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var in GetOrCreateConversationRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	conv, err := h.chatService.GetOrCreateConversation(ctx, userID, in.OtherUserID)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return encodeResponse(conv)
}

func (h *ChatHandler) ListConversations(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	convs, err := h.chatService.FetchUserConversations(ctx, userID)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return encodeResponse(ListConversationsResponse{Conversations: convs})
}

func (h *ChatHandler) GetMessages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var in GetMessagesRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if in.Offset < 0 || in.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "offset and limit must not be negative")
	}

	messages, err := h.chatService.FetchMessages(ctx, userID, in.ConversationID)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return encodeResponse(MessagesResponse{Messages: window(messages, in.Offset, in.Limit)})
}

func window(messages []*dbsql.Message, offset, limit int) []*dbsql.Message {
	if offset >= len(messages) {
		return []*dbsql.Message{}
	}
	end := len(messages)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return messages[offset:end]
}

// SendMessage uses the authenticated caller as sender.
func (h *ChatHandler) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var in SendMessageRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	msg, err := h.chatService.SendMessage(ctx, in.ConversationID, userID, in.Content)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return encodeResponse(msg)
}

// DeleteMessage only lets the caller delete their own messages.
func (h *ChatHandler) DeleteMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var in DeleteMessageRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	if err := h.chatService.DeleteMessage(ctx, userID, in.MessageID); err != nil {
		return nil, common.GRPCStatus(err)
	}
	return encodeResponse(DeleteMessageResponse{Success: true})
}

// SubscribeMessages subscribes before reading history so nothing inserted in
// between is missed; anything seen both ways is sent once.
func (h *ChatHandler) SubscribeMessages(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	var in SubscribeMessagesRequest
	if err := decodeRequest(req, &in); err != nil {
		return err
	}

	pushed := make(chan *dbsql.Message, 32)
	unsubscribe, err := h.chatService.SubscribeToMessages(ctx, userID, in.ConversationID, func(m *dbsql.Message) {
		select {
		case pushed <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return common.GRPCStatus(err)
	}
	defer unsubscribe()

	seen := view.NewMessageLog()
	if in.IncludeHistory {
		history, err := h.chatService.FetchMessages(ctx, userID, in.ConversationID)
		if err != nil {
			return common.GRPCStatus(err)
		}
		for _, m := range seen.Add(history...) {
			if err := sendMessage(stream, m); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("conversation_id", in.ConversationID).Msg("message stream closed by client")
			return nil
		case m := <-pushed:
			if len(seen.Add(m)) == 0 {
				continue
			}
			if err := sendMessage(stream, m); err != nil {
				log.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to push message")
				return err
			}
		}
	}
}

func sendMessage(stream grpc.ServerStreamingServer[structpb.Struct], m *dbsql.Message) error {
	out, err := encodeResponse(m)
	if err != nil {
		return err
	}
	return stream.Send(out)
}
