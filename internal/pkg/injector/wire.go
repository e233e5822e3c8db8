//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/data"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/service"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/server"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Repositories
	repositoryProviderSet,

	// Use cases
	useCaseProviderSet,

	// HTTP services
	serviceProviderSet,

	// Servers
	serverProviderSet,
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	data.NewData,
	provideDatabase,
	provideMetrics,
)

// Repository providers
var repositoryProviderSet = wire.NewSet(
	data.NewContextRepo,
	data.NewCourseRepo,
	data.NewUserRepo,
	data.NewUsageStore,
	data.NewDirectoryScanner,
)

// Use case providers
var useCaseProviderSet = wire.NewSet(
	provideSiteUsageUseCase,
	provideReportUseCase,
)

// HTTP service providers
var serviceProviderSet = wire.NewSet(
	service.NewCourseSizeService,
)

// Server providers
var serverProviderSet = wire.NewSet(
	provideHealthChecker,
	server.NewHTTPServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
