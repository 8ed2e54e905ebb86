//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/content/biz"
	"github.com/lk2023060901/yt-content-manager/internal/content/data"
	"github.com/lk2023060901/yt-content-manager/internal/content/service"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/tokenizer"
	"github.com/lk2023060901/yt-content-manager/internal/server"
	"go.uber.org/zap"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Config
	wire.FieldsOf(new(*conf.Config), "Generation"),

	// Data layer
	dataProviderSet,

	// Use cases
	useCaseProviderSet,

	// HTTP services
	serviceProviderSet,

	// Servers
	serverProviderSet,
)

var dataProviderSet = wire.NewSet(
	data.NewChatClient,
	wire.Bind(new(biz.ChatCompleter), new(*data.ChatClient)),
	provideTokenCounter,
)

var useCaseProviderSet = wire.NewSet(
	biz.NewContentUseCase,
	wire.Bind(new(service.Generator), new(*biz.ContentUseCase)),
)

var serviceProviderSet = wire.NewSet(
	service.NewContentService,
)

var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewGRPCServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}

// provideTokenCounter resolves the encoding at startup. Without one the use
// case simply skips prompt estimation.
func provideTokenCounter(cfg conf.GenerationConfig, log *logger.Logger) biz.TokenCounter {
	counter, err := tokenizer.New(cfg.Model)
	if err != nil {
		log.Warn("prompt token estimation disabled", zap.String("model", cfg.Model), zap.Error(err))
		return nil
	}
	return counter
}
