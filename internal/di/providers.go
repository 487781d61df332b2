// Package di assembles the chat and api services.
package di

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"plugu/internal/activity"
	"plugu/internal/chat/handler"
	"plugu/internal/common"
	"plugu/internal/config"
	"plugu/internal/crop"
	"plugu/internal/dbmongo"
	"plugu/internal/dbsql"
	"plugu/internal/feed"
	"plugu/internal/media"
	"plugu/internal/realtime"
	"plugu/internal/user"
)

type ChatApp struct {
	Config  *config.Config
	DB      *gorm.DB
	Channel realtime.Channel
	Server  *grpc.Server
}

type APIApp struct {
	Config *config.Config
	DB     *gorm.DB
	Mongo  *dbmongo.MongoClient
	Router *mux.Router
}

func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := dbsql.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { dbsql.Close(db) }, nil
}

// ProvideRealtimeChannel uses Redis pub/sub when enabled so that several
// chat instances share message events, and an in-process hub otherwise.
func ProvideRealtimeChannel(cfg *config.Config) (realtime.Channel, func(), error) {
	var ch realtime.Channel
	if cfg.Redis.Enabled {
		client, err := realtime.NewRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		ch = realtime.NewRedisChannel(client, cfg.Redis.ChannelPrefix)
		log.Info().Str("prefix", cfg.Redis.ChannelPrefix).Msg("realtime channel: redis")
	} else {
		ch = realtime.NewHub(cfg.Realtime.BufferSize)
		log.Info().Int("buffer", cfg.Realtime.BufferSize).Msg("realtime channel: in-process hub")
	}
	return ch, func() {
		if err := ch.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close realtime channel")
		}
	}, nil
}

func ProvideMongo(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	return mc, func() {
		if err := mc.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close mongodb")
		}
	}, nil
}

func ProvideMediaStorage(mc *dbmongo.MongoClient) *dbmongo.MediaStorage {
	return dbmongo.NewMediaStorage(mc)
}

func ProvideTokenValidator(cfg *config.Config) *common.TokenValidator {
	return common.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

func ProvideAuthenticator(cfg *config.Config, v *common.TokenValidator) *common.Authenticator {
	if cfg.Auth.Disabled {
		log.Warn().Msg("auth disabled: trusting the x-user-id header")
	}
	return common.NewAuthenticator(v, cfg.Auth.Disabled)
}

func ProvideFeedService(posts *feed.FeedRepository, storage *dbmongo.MediaStorage, cfg *config.Config) *feed.FeedService {
	return feed.NewFeedService(posts, storage, cfg.Server.MediaBaseURL)
}

// ProvideGRPCServer registers the chat service and the standard health
// service behind the logging and auth interceptors.
func ProvideGRPCServer(auth *common.Authenticator, h *handler.ChatHandler) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(common.LoggingUnaryInterceptor, auth.AuthInterceptor()),
		grpc.ChainStreamInterceptor(common.LoggingStreamInterceptor, auth.StreamAuthInterceptor()),
	)
	handler.RegisterChatServiceServer(srv, h)

	hs := health.NewServer()
	hs.SetServingStatus(handler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// ProvideRouter mounts every HTTP surface of the api service.
func ProvideRouter(
	auth *common.Authenticator,
	crops *crop.CropHandlers,
	activities *activity.ActivityHandlers,
	posts *feed.FeedHandlers,
	profiles *user.Handler,
	files *media.Handler,
) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// media URLs are embedded in posts and fetched without credentials
	files.RegisterRoutes(r)

	api := r.NewRoute().Subrouter()
	api.Use(auth.AuthMiddleware)
	crops.RegisterRoutes(api)
	activities.RegisterRoutes(api)
	posts.RegisterRoutes(api)
	profiles.RegisterRoutes(api)

	r.Use(common.LoggingMiddleware, common.CORSMiddleware)
	return r
}
