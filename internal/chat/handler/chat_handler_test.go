package handler

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"plugu/internal/chat/handler/mocks"
	"plugu/internal/common"
	"plugu/internal/dbsql"
	"plugu/internal/view"
)

const bufSize = 1024 * 1024

func setupGRPCTest(t *testing.T) (ChatServiceClient, *mocks.MockChatService) {
	lis := bufconn.Listen(bufSize)

	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockChatService(ctrl)

	auth := common.NewAuthenticator(nil, true)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(common.LoggingUnaryInterceptor, auth.AuthInterceptor()),
		grpc.ChainStreamInterceptor(common.LoggingStreamInterceptor, auth.StreamAuthInterceptor()),
	)
	RegisterChatServiceServer(s, NewChatHandler(mockService))

	go func() {
		_ = s.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
	})

	return NewChatServiceClient(conn), mockService
}

func asUser(userID string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), common.DevUserHeader, userID)
}

func mustStruct(t *testing.T, v interface{}) *structpb.Struct {
	t.Helper()
	s, err := EncodeStruct(v)
	require.NoError(t, err)
	return s
}

func TestChatHandler_GetOrCreateConversation(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	mockService.EXPECT().
		GetOrCreateConversation(gomock.Any(), "alice", "bob").
		Return(&dbsql.Conversation{ID: "conv-1", User1ID: "alice", User2ID: "bob"}, nil)

	resp, err := client.GetOrCreateConversation(asUser("alice"),
		mustStruct(t, GetOrCreateConversationRequest{OtherUserID: "bob"}))
	require.NoError(t, err)

	var conv dbsql.Conversation
	require.NoError(t, DecodeStruct(resp, &conv))
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "bob", conv.User2ID)
}

func TestChatHandler_ErrorCodes(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	tests := []struct {
		name      string
		ctx       context.Context
		mockSetup func()
		call      func(ctx context.Context) error
		wantCode  codes.Code
	}{
		{
			name:      "missing caller",
			ctx:       context.Background(),
			mockSetup: func() {},
			call: func(ctx context.Context) error {
				_, err := client.ListConversations(ctx, &structpb.Struct{})
				return err
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "invalid argument",
			ctx:  asUser("alice"),
			mockSetup: func() {
				mockService.EXPECT().
					SendMessage(gomock.Any(), "conv-1", "alice", "").
					Return(nil, common.Invalidf("message content cannot be empty"))
			},
			call: func(ctx context.Context) error {
				_, err := client.SendMessage(ctx, mustStruct(t, SendMessageRequest{ConversationID: "conv-1"}))
				return err
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "message not found",
			ctx:  asUser("alice"),
			mockSetup: func() {
				mockService.EXPECT().DeleteMessage(gomock.Any(), "alice", "m-404").Return(common.ErrNotFound)
			},
			call: func(ctx context.Context) error {
				_, err := client.DeleteMessage(ctx, mustStruct(t, DeleteMessageRequest{MessageID: "m-404"}))
				return err
			},
			wantCode: codes.NotFound,
		},
		{
			name: "outsider reads history",
			ctx:  asUser("mallory"),
			mockSetup: func() {
				mockService.EXPECT().
					FetchMessages(gomock.Any(), "mallory", "conv-ab").
					Return(nil, common.ErrPermissionDenied)
			},
			call: func(ctx context.Context) error {
				_, err := client.GetMessages(ctx, mustStruct(t, GetMessagesRequest{ConversationID: "conv-ab"}))
				return err
			},
			wantCode: codes.PermissionDenied,
		},
		{
			name: "outsider sends",
			ctx:  asUser("mallory"),
			mockSetup: func() {
				mockService.EXPECT().
					SendMessage(gomock.Any(), "conv-ab", "mallory", "hi").
					Return(nil, common.ErrPermissionDenied)
			},
			call: func(ctx context.Context) error {
				_, err := client.SendMessage(ctx, mustStruct(t, SendMessageRequest{ConversationID: "conv-ab", Content: "hi"}))
				return err
			},
			wantCode: codes.PermissionDenied,
		},
		{
			name: "deleting someone else's message",
			ctx:  asUser("mallory"),
			mockSetup: func() {
				mockService.EXPECT().DeleteMessage(gomock.Any(), "mallory", "m1").Return(common.ErrPermissionDenied)
			},
			call: func(ctx context.Context) error {
				_, err := client.DeleteMessage(ctx, mustStruct(t, DeleteMessageRequest{MessageID: "m1"}))
				return err
			},
			wantCode: codes.PermissionDenied,
		},
		{
			name: "outsider subscribes",
			ctx:  asUser("mallory"),
			mockSetup: func() {
				mockService.EXPECT().
					SubscribeToMessages(gomock.Any(), "mallory", "conv-ab", gomock.Any()).
					Return(nil, common.ErrPermissionDenied)
			},
			call: func(ctx context.Context) error {
				stream, err := client.SubscribeMessages(ctx, mustStruct(t, SubscribeMessagesRequest{ConversationID: "conv-ab"}))
				if err != nil {
					return err
				}
				_, err = stream.Recv()
				return err
			},
			wantCode: codes.PermissionDenied,
		},
		{
			name:      "negative window",
			ctx:       asUser("alice"),
			mockSetup: func() {},
			call: func(ctx context.Context) error {
				_, err := client.GetMessages(ctx, mustStruct(t, GetMessagesRequest{ConversationID: "c", Offset: -1}))
				return err
			},
			wantCode: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := tt.call(tt.ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestChatHandler_ListConversations(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	mockService.EXPECT().
		FetchUserConversations(gomock.Any(), "alice").
		Return([]view.ConversationSummary{{ID: "conv-1", UserName: "Bob", UnreadCount: 2}}, nil)

	resp, err := client.ListConversations(asUser("alice"), &structpb.Struct{})
	require.NoError(t, err)

	var out ListConversationsResponse
	require.NoError(t, DecodeStruct(resp, &out))
	require.Len(t, out.Conversations, 1)
	assert.Equal(t, "Bob", out.Conversations[0].UserName)
	assert.Equal(t, 2, out.Conversations[0].UnreadCount)
}

func TestChatHandler_GetMessages_Window(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	history := []*dbsql.Message{
		{ID: "m1", Content: "First", CreatedAt: base},
		{ID: "m2", Content: "Second", CreatedAt: base.Add(time.Minute)},
		{ID: "m3", Content: "Third", CreatedAt: base.Add(2 * time.Minute)},
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{"everything", 0, 0, []string{"m1", "m2", "m3"}},
		{"first page", 0, 2, []string{"m1", "m2"}},
		{"second page", 2, 2, []string{"m3"}},
		{"past the end", 5, 2, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.EXPECT().FetchMessages(gomock.Any(), "alice", "conv-1").Return(history, nil)

			resp, err := client.GetMessages(asUser("alice"),
				mustStruct(t, GetMessagesRequest{ConversationID: "conv-1", Offset: tt.offset, Limit: tt.limit}))
			require.NoError(t, err)

			var out MessagesResponse
			require.NoError(t, DecodeStruct(resp, &out))
			ids := []string{}
			for _, m := range out.Messages {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestChatHandler_SendMessage_UsesCaller(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	sentAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		SendMessage(gomock.Any(), "conv-1", "alice", "Hello").
		Return(&dbsql.Message{ID: "m-1", ConversationID: "conv-1", SenderID: "alice", Content: "Hello", CreatedAt: sentAt}, nil)

	resp, err := client.SendMessage(asUser("alice"),
		mustStruct(t, SendMessageRequest{ConversationID: "conv-1", Content: "Hello"}))
	require.NoError(t, err)

	var msg dbsql.Message
	require.NoError(t, DecodeStruct(resp, &msg))
	assert.Equal(t, "m-1", msg.ID)
	assert.True(t, sentAt.Equal(msg.CreatedAt))
}

func TestChatHandler_SubscribeMessages(t *testing.T) {
	client, mockService := setupGRPCTest(t)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	m1 := &dbsql.Message{ID: "m1", ConversationID: "conv-1", Content: "one", CreatedAt: base}
	m2 := &dbsql.Message{ID: "m2", ConversationID: "conv-1", Content: "two", CreatedAt: base.Add(time.Second)}
	m3 := &dbsql.Message{ID: "m3", ConversationID: "conv-1", Content: "three", CreatedAt: base.Add(2 * time.Second)}

	push := make(chan func(*dbsql.Message), 1)
	unsubscribed := make(chan struct{})

	gomock.InOrder(
		mockService.EXPECT().
			SubscribeToMessages(gomock.Any(), "alice", "conv-1", gomock.Any()).
			DoAndReturn(func(ctx context.Context, userID, id string, cb func(*dbsql.Message)) (func(), error) {
				// m2 arrives through the push path before history is read
				cb(m2)
				push <- cb
				return func() { close(unsubscribed) }, nil
			}),
		mockService.EXPECT().
			FetchMessages(gomock.Any(), "alice", "conv-1").
			Return([]*dbsql.Message{m1, m2}, nil),
	)

	ctx, cancel := context.WithCancel(asUser("alice"))
	defer cancel()

	stream, err := client.SubscribeMessages(ctx,
		mustStruct(t, SubscribeMessagesRequest{ConversationID: "conv-1", IncludeHistory: true}))
	require.NoError(t, err)

	var cb func(*dbsql.Message)
	select {
	case cb = <-push:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not established")
	}

	var got []string
	for len(got) < 2 {
		resp, err := stream.Recv()
		require.NoError(t, err)
		var m dbsql.Message
		require.NoError(t, DecodeStruct(resp, &m))
		got = append(got, m.ID)
	}
	cb(m3)
	resp, err := stream.Recv()
	require.NoError(t, err)
	var m dbsql.Message
	require.NoError(t, DecodeStruct(resp, &m))
	got = append(got, m.ID)

	assert.Equal(t, []string{"m1", "m2", "m3"}, got)

	cancel()
	select {
	case <-unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not torn down")
	}
}

func TestWindow_HugeLimit(t *testing.T) {
	messages := []*dbsql.Message{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}

	got := window(messages, 1, math.MaxInt)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)

	assert.Len(t, window(messages, 0, math.MaxInt-1), 3)
	assert.Len(t, window(messages, 2, 1), 1)
}

func TestDecodeStruct(t *testing.T) {
	s := mustStruct(t, map[string]interface{}{"conversation_id": "c-1", "offset": 3, "limit": 10})

	var req GetMessagesRequest
	require.NoError(t, DecodeStruct(s, &req))
	assert.Equal(t, GetMessagesRequest{ConversationID: "c-1", Offset: 3, Limit: 10}, req)

	var untouched GetMessagesRequest
	assert.NoError(t, DecodeStruct(nil, &untouched))
	assert.Zero(t, untouched)
}
