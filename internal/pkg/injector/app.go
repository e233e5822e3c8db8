package injector

import (
	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
	Report     *biz.ReportUseCase
	SiteUsage  *biz.SiteUsageUseCase
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	report *biz.ReportUseCase,
	siteUsage *biz.SiteUsageUseCase,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
		Report:     report,
		SiteUsage:  siteUsage,
	}
}
