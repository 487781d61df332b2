//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"plugu/internal/activity"
	"plugu/internal/chat/handler"
	"plugu/internal/chat/repository"
	"plugu/internal/chat/service"
	"plugu/internal/config"
	"plugu/internal/crop"
	"plugu/internal/dbmongo"
	"plugu/internal/feed"
	"plugu/internal/media"
	"plugu/internal/user"
)

var authSet = wire.NewSet(
	ProvideTokenValidator,
	ProvideAuthenticator,
)

var cropSet = wire.NewSet(
	crop.NewCropRepository,
	wire.Bind(new(crop.Crops), new(*crop.CropRepository)),
	wire.Bind(new(crop.Logs), new(*crop.CropRepository)),
	crop.NewCropService,
	wire.Bind(new(crop.CropUsecase), new(*crop.CropService)),
	crop.NewCropHandlers,
)

var activitySet = wire.NewSet(
	activity.NewActivityRepository,
	wire.Bind(new(activity.Activities), new(*activity.ActivityRepository)),
	activity.NewActivityService,
	wire.Bind(new(activity.ActivityUsecase), new(*activity.ActivityService)),
	activity.NewActivityHandlers,
)

var feedSet = wire.NewSet(
	ProvideMongo,
	ProvideMediaStorage,
	feed.NewFeedRepository,
	ProvideFeedService,
	wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
	feed.NewFeedHandlers,
	wire.Bind(new(media.Downloader), new(*dbmongo.MediaStorage)),
	media.NewHandler,
)

var userSet = wire.NewSet(
	user.NewUserRepository,
	user.NewUserService,
	user.NewHandler,
)

func InitializeChatApp(cfg *config.Config) (*ChatApp, func(), error) {
	wire.Build(
		ProvideDatabase,
		ProvideRealtimeChannel,
		repository.NewChatRepository,
		service.NewChatService,
		handler.NewChatHandler,
		authSet,
		ProvideGRPCServer,
		wire.Struct(new(ChatApp), "*"),
	)
	return nil, nil, nil
}

func InitializeAPIApp(cfg *config.Config) (*APIApp, func(), error) {
	wire.Build(
		ProvideDatabase,
		authSet,
		cropSet,
		activitySet,
		feedSet,
		userSet,
		ProvideRouter,
		wire.Struct(new(APIApp), "*"),
	)
	return nil, nil, nil
}
