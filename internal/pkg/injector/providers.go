package injector

import (
	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/data"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/metrics"
	"github.com/lk2023060901/coursesize-backend/internal/server"
)

// Provider functions for dependencies that need config unpacking

func provideDatabase(d *data.Data) *database.DB {
	return d.DB
}

func provideHealthChecker(db *database.DB) server.HealthChecker {
	return db
}

func provideMetrics(config *conf.Config) *metrics.Metrics {
	return metrics.New(&config.Metrics)
}

func provideSiteUsageUseCase(
	store biz.UsageStore,
	scanner biz.DirectoryScanner,
	config *conf.Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *biz.SiteUsageUseCase {
	var recorder biz.UsageRecorder
	if m != nil {
		recorder = m
	}
	return biz.NewSiteUsageUseCase(store, scanner, config.UsageCache.RefreshInterval, recorder, log.Named("usage"))
}

func provideReportUseCase(
	contexts biz.ContextRepo,
	courses biz.CourseRepo,
	users biz.UserRepo,
	usage *biz.SiteUsageUseCase,
	config *conf.Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *biz.ReportUseCase {
	var observer biz.ReportObserver
	if m != nil {
		observer = m
	}
	return biz.NewReportUseCase(contexts, courses, users, usage, biz.ReportConfig{
		ShowEmptyCourses:         config.Report.ShowEmptyCourses,
		NumberOfUsers:            config.Report.NumberOfUsers,
		AccumulateSystemContexts: config.Report.AccumulateSystemContexts,
		StorageSizeLimit:         config.Report.StorageSizeLimit,
	}, observer, log.Named("report"))
}
