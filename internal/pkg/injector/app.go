package injector

import (
	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/lk2023060901/yt-content-manager/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
	GRPCServer *server.GRPCServer
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	grpcServer *server.GRPCServer,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
		GRPCServer: grpcServer,
	}
}
