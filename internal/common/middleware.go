package common

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DevUserHeader identifies the caller when auth is disabled.
const DevUserHeader = "x-user-id"

var publicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
}

// Authenticator resolves the caller of a request. With a nil validator it
// trusts the development header instead of a bearer token.
type Authenticator struct {
	validator *TokenValidator
}

func NewAuthenticator(v *TokenValidator, disabled bool) *Authenticator {
	if disabled {
		return &Authenticator{}
	}
	return &Authenticator{validator: v}
}

// Resolve turns an Authorization header value (or the dev header) into a user id.
func (a *Authenticator) Resolve(authorization, devUser string) (string, error) {
	if a.validator == nil {
		if devUser == "" {
			return "", status.Error(codes.Unauthenticated, "x-user-id required")
		}
		return devUser, nil
	}

	if authorization == "" {
		return "", status.Error(codes.Unauthenticated, "authorization required")
	}
	// Bearer <token>
	parts := strings.Fields(authorization)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", status.Error(codes.Unauthenticated, "invalid auth header")
	}

	claims, err := a.validator.ValidToken(parts[1])
	if err != nil {
		return "", status.Error(codes.Unauthenticated, "invalid or expired token")
	}
	return claims.Subject, nil
}

func (a *Authenticator) fromMetadata(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	userID, err := a.Resolve(first(md, "authorization"), first(md, DevUserHeader))
	if err != nil {
		return nil, err
	}
	return WithUserID(ctx, userID), nil
}

func first(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (a *Authenticator) AuthInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := a.fromMetadata(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

func (a *Authenticator) StreamAuthInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := a.fromMetadata(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

func LoggingUnaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err).Str("code", status.Code(err).String())
	}
	ev.Str("method", info.FullMethod).Dur("duration", time.Since(start)).Msg("grpc call")

	return resp, err
}

func LoggingStreamInterceptor(srv interface{}, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	start := time.Now()
	log.Debug().Str("method", info.FullMethod).Msg("grpc stream started")

	err := handler(srv, stream)

	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err).Str("code", status.Code(err).String())
	}
	ev.Str("method", info.FullMethod).Dur("duration", time.Since(start)).Msg("grpc stream ended")
	return err
}
