package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	apperrors "github.com/lk2023060901/coursesize-backend/internal/pkg/errors"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ExportFilename is the name of the CSV download.
const ExportFilename = "export_csv.csv"

type CourseSizeService struct {
	uc     *biz.ReportUseCase
	usage  *biz.SiteUsageUseCase
	logger *logger.Logger
	now    func() time.Time
}

func NewCourseSizeService(uc *biz.ReportUseCase, usage *biz.SiteUsageUseCase, logger *logger.Logger) *CourseSizeService {
	return &CourseSizeService{
		uc:     uc,
		usage:  usage,
		logger: logger,
		now:    time.Now,
	}
}

// ReportQuery is the query string of the report endpoint.
type ReportQuery struct {
	Category string `form:"category"`
	Download string `form:"download"`
}

// GetReport 获取课程容量报表，download=1 时返回 CSV
func (s *CourseSizeService) GetReport(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}

	categoryID, err := parseCategory(q.Category)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "category must be a non-negative integer")
		return
	}
	download, err := parseDownload(q.Download)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "download must be 0 or 1")
		return
	}

	report, err := s.uc.Generate(c.Request.Context(), biz.ReportRequest{CategoryID: categoryID})
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("failed to generate report",
			zap.Int64("category_id", categoryID),
			zap.Error(err),
		)
		response.HandleError(c, toAppError(err))
		return
	}

	if download {
		s.writeCSV(c, report)
		return
	}
	response.Success(c, report)
}

// ListCategories 获取分类下拉选项
func (s *CourseSizeService) ListCategories(c *gin.Context) {
	opts, err := s.uc.CategoryOptions(c.Request.Context())
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("failed to list categories", zap.Error(err))
		response.HandleError(c, toAppError(err))
		return
	}
	response.Success(c, gin.H{"categories": opts})
}

// GetUsage 获取站点数据目录总用量
func (s *CourseSizeService) GetUsage(c *gin.Context) {
	if s.usage == nil {
		response.ErrorWithCode(c, apperrors.ErrServiceUnavail, "site usage is not configured")
		return
	}
	usage, err := s.usage.GetTotalUsage(c.Request.Context(), s.now())
	if err != nil {
		response.HandleError(c, toAppError(err))
		return
	}
	response.Success(c, usage)
}

func (s *CourseSizeService) writeCSV(c *gin.Context, report *biz.Report) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(report.ExportRows()); err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrReportFailed))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *CourseSizeService) RegisterRoutes(r *gin.RouterGroup) {
	report := r.Group("/report/coursesize")
	{
		report.GET("", s.GetReport)
		report.GET("/categories", s.ListCategories)
		report.GET("/usage", s.GetUsage)
	}
}

func parseCategory(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, biz.ErrInvalidCategory
	}
	return id, nil
}

func parseDownload(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, biz.ErrCategoryNotFound):
		return apperrors.Wrap(err, apperrors.ErrCategoryNotFound)
	case errors.Is(err, biz.ErrInvalidCategory):
		return apperrors.Wrap(err, apperrors.ErrInvalidParams)
	case errors.Is(err, biz.ErrUsageScanFailed):
		return apperrors.Wrap(err, apperrors.ErrUsageScanFailed)
	default:
		return apperrors.Wrap(err, apperrors.ErrReportFailed)
	}
}
