package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// ReportConfig holds the report options read from configuration.
type ReportConfig struct {
	ShowEmptyCourses         bool
	NumberOfUsers            int
	AccumulateSystemContexts bool
	// StorageSizeLimit is shown next to the site usage when non-zero.
	StorageSizeLimit int64
}

// ReportObserver receives timing of report builds.
type ReportObserver interface {
	ObserveReport(scope string, d time.Duration, contexts int, err error)
}

// ReportRequest selects the courses of a report. CategoryID 0 means all.
type ReportRequest struct {
	CategoryID int64
}

// CategoryOption is one entry of the category selector.
type CategoryOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SystemUsage is the storage not attributed to any listed course.
type SystemUsage struct {
	RawBytes    int64  `json:"raw_bytes"`
	BackupBytes int64  `json:"backup_bytes"`
	RawSize     string `json:"raw_size"`
	BackupSize  string `json:"backup_size"`
}

// Report is a fully built course size report.
type Report struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`

	Courses            []CourseRow `json:"courses"`
	Totals             TotalsRow   `json:"totals"`
	EmptyCoursesHidden bool        `json:"empty_courses_hidden"`

	// Site-wide sections are only filled for unfiltered reports.
	ShowSiteSummary  bool         `json:"show_site_summary"`
	System           *SystemUsage `json:"system,omitempty"`
	SiteUsage        *SiteUsage   `json:"site_usage,omitempty"`
	StorageSizeLimit string       `json:"storage_size_limit,omitempty"`
	Users            []UserRow    `json:"users,omitempty"`

	Contexts    int       `json:"contexts"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportRows returns the course table in export form.
func (r *Report) ExportRows() [][]string {
	return ExportRows(r.Courses, r.Totals)
}

// ReportUseCase builds course size reports.
type ReportUseCase struct {
	contexts ContextRepo
	courses  CourseRepo
	users    UserRepo
	usage    *SiteUsageUseCase
	cfg      ReportConfig
	observer ReportObserver
	logger   *logger.Logger
	now      func() time.Time
}

// NewReportUseCase 创建报表用例
func NewReportUseCase(
	contexts ContextRepo,
	courses CourseRepo,
	users UserRepo,
	usage *SiteUsageUseCase,
	cfg ReportConfig,
	observer ReportObserver,
	log *logger.Logger,
) *ReportUseCase {
	if cfg.NumberOfUsers <= 0 {
		cfg.NumberOfUsers = DefaultNumberOfUsers
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ReportUseCase{
		contexts: contexts,
		courses:  courses,
		users:    users,
		usage:    usage,
		cfg:      cfg,
		observer: observer,
		logger:   log,
		now:      time.Now,
	}
}

// Generate loads the course index, streams every context through the
// aggregator and renders the result.
func (uc *ReportUseCase) Generate(ctx context.Context, req ReportRequest) (report *Report, err error) {
	if req.CategoryID < 0 {
		return nil, ErrInvalidCategory
	}

	start := uc.now()
	scope := "site"
	if req.CategoryID != 0 {
		scope = "category"
	}
	log := uc.logger.WithContext(ctx)

	var contexts int
	defer func() {
		if uc.observer != nil {
			uc.observer.ObserveReport(scope, uc.now().Sub(start), contexts, err)
		}
	}()

	report = &Report{
		CategoryID:         req.CategoryID,
		EmptyCoursesHidden: !uc.cfg.ShowEmptyCourses,
		ShowSiteSummary:    req.CategoryID == 0,
		GeneratedAt:        start,
	}

	if req.CategoryID != 0 {
		cat, err := uc.courses.Category(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		report.CategoryName = cat.Name
	}

	index, err := uc.courses.CourseIndex(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("build course index: %w", err)
	}

	agg := NewAggregator(index, uc.cfg.AccumulateSystemContexts)
	if err := uc.contexts.ForEachContext(ctx, agg.Add); err != nil {
		return nil, fmt.Errorf("load contexts: %w", err)
	}
	contexts = agg.Contexts()
	aggregate, userAgg := agg.Result()

	var metadata map[int64]*Course
	if index.Len() > 0 {
		metadata, err = uc.courses.CourseMetadata(ctx, index.CourseIDs())
		if err != nil {
			return nil, fmt.Errorf("load course metadata: %w", err)
		}
	}
	report.Courses, report.Totals = BuildCourseRows(aggregate, metadata, uc.cfg.ShowEmptyCourses)
	report.Contexts = contexts

	if report.ShowSiteSummary {
		report.System = &SystemUsage{
			RawBytes:    aggregate.System.RawBytes,
			BackupBytes: aggregate.System.BackupBytes,
			RawSize:     FormatMegabytes(aggregate.System.RawBytes),
			BackupSize:  FormatMegabytes(aggregate.System.BackupBytes),
		}
		if uc.cfg.StorageSizeLimit > 0 {
			report.StorageSizeLimit = humanize.Comma(uc.cfg.StorageSizeLimit)
		}
		if uc.usage != nil {
			usage, err := uc.usage.GetTotalUsage(ctx, start)
			if err != nil {
				log.Warn("site usage unavailable", zap.Error(err))
			} else {
				report.SiteUsage = usage
			}
		}
		if len(userAgg) > 0 {
			ranked := TopUsers(userAgg, uc.cfg.NumberOfUsers)
			names, err := uc.users.DisplayNames(ctx, ranked)
			if err != nil {
				return nil, fmt.Errorf("load user names: %w", err)
			}
			report.Users = BuildUserRows(userAgg, ranked, names)
		}
	}

	log.Info("course size report generated",
		zap.String("scope", scope),
		zap.Int64("category_id", req.CategoryID),
		zap.Int("contexts", contexts),
		zap.Int("courses", len(report.Courses)),
		zap.Duration("elapsed", uc.now().Sub(start)),
	)
	return report, nil
}

// CategoryOptions lists the category selector entries, "All Courses" first.
func (uc *ReportUseCase) CategoryOptions(ctx context.Context) ([]CategoryOption, error) {
	cats, err := uc.courses.Categories(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]CategoryOption, 0, len(cats)+1)
	opts = append(opts, CategoryOption{ID: 0, Name: "All Courses"})
	for _, c := range cats {
		opts = append(opts, CategoryOption{ID: c.ID, Name: c.Name})
	}
	return opts, nil
}

// SiteUsage exposes the site usage use case for direct queries.
func (uc *ReportUseCase) SiteUsage() *SiteUsageUseCase {
	return uc.usage
}
