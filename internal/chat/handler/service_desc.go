package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Every payload on the wire is a google.protobuf.Struct; see codec.go for
// the typed shapes.
const ServiceName = "plugu.chat.v1.ChatService"

const (
	ChatService_GetOrCreateConversation_FullMethodName = "/" + ServiceName + "/GetOrCreateConversation"
	ChatService_ListConversations_FullMethodName       = "/" + ServiceName + "/ListConversations"
	ChatService_GetMessages_FullMethodName             = "/" + ServiceName + "/GetMessages"
	ChatService_SendMessage_FullMethodName             = "/" + ServiceName + "/SendMessage"
	ChatService_DeleteMessage_FullMethodName           = "/" + ServiceName + "/DeleteMessage"
	ChatService_SubscribeMessages_FullMethodName       = "/" + ServiceName + "/SubscribeMessages"
)

type ChatServiceServer interface {
	GetOrCreateConversation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListConversations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubscribeMessages(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedChatServiceServer can be embedded to have forward compatible implementations.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) GetOrCreateConversation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrCreateConversation not implemented")
}
func (UnimplementedChatServiceServer) ListConversations(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListConversations not implemented")
}
func (UnimplementedChatServiceServer) GetMessages(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMessages not implemented")
}
func (UnimplementedChatServiceServer) SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedChatServiceServer) DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteMessage not implemented")
}
func (UnimplementedChatServiceServer) SubscribeMessages(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method SubscribeMessages not implemented")
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(ChatServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChatServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ChatServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _ChatService_SubscribeMessages_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).SubscribeMessages(m, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOrCreateConversation",
			Handler:    unaryHandler(ChatService_GetOrCreateConversation_FullMethodName, ChatServiceServer.GetOrCreateConversation),
		},
		{
			MethodName: "ListConversations",
			Handler:    unaryHandler(ChatService_ListConversations_FullMethodName, ChatServiceServer.ListConversations),
		},
		{
			MethodName: "GetMessages",
			Handler:    unaryHandler(ChatService_GetMessages_FullMethodName, ChatServiceServer.GetMessages),
		},
		{
			MethodName: "SendMessage",
			Handler:    unaryHandler(ChatService_SendMessage_FullMethodName, ChatServiceServer.SendMessage),
		},
		{
			MethodName: "DeleteMessage",
			Handler:    unaryHandler(ChatService_DeleteMessage_FullMethodName, ChatServiceServer.DeleteMessage),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeMessages",
			Handler:       _ChatService_SubscribeMessages_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "plugu/chat/v1/chat.proto",
}

type ChatServiceClient interface {
	GetOrCreateConversation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListConversations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SendMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubscribeMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func (c *chatServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) GetOrCreateConversation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ChatService_GetOrCreateConversation_FullMethodName, in, opts)
}

func (c *chatServiceClient) ListConversations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ChatService_ListConversations_FullMethodName, in, opts)
}

func (c *chatServiceClient) GetMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ChatService_GetMessages_FullMethodName, in, opts)
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ChatService_SendMessage_FullMethodName, in, opts)
}

func (c *chatServiceClient) DeleteMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ChatService_DeleteMessage_FullMethodName, in, opts)
}

func (c *chatServiceClient) SubscribeMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_SubscribeMessages_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
