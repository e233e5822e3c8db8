package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// DefaultRefreshInterval is how long a measured site usage stays valid.
const DefaultRefreshInterval = 24 * time.Hour

// SiteUsage is the measured size of the site data directory.
type SiteUsage struct {
	Bytes       int64     `json:"bytes"`
	Size        string    `json:"size"`
	LastUpdated time.Time `json:"last_updated"`
	// Cached is false when the figure was measured by this call.
	Cached bool `json:"cached"`
}

// UsageStore persists the last measurement. Load returns (nil, nil)
// when nothing has been stored yet.
type UsageStore interface {
	Load(ctx context.Context) (*SiteUsage, error)
	Save(ctx context.Context, usage *SiteUsage) error
}

// DirectoryScanner measures the total size of the site data.
type DirectoryScanner interface {
	Name() string
	TotalSize(ctx context.Context) (int64, error)
}

// UsageRecorder receives measurements for monitoring.
type UsageRecorder interface {
	SetSiteUsage(bytes int64, recorded time.Time)
	ObserveScan(err error)
}

// SiteUsageUseCase serves the site usage figure from the store and
// rescans once it is older than the refresh interval. Concurrent stale
// readers may each rescan; the last save wins.
type SiteUsageUseCase struct {
	store    UsageStore
	scanner  DirectoryScanner
	interval time.Duration
	recorder UsageRecorder
	logger   *logger.Logger
}

// NewSiteUsageUseCase 创建站点用量用例
func NewSiteUsageUseCase(store UsageStore, scanner DirectoryScanner, interval time.Duration, recorder UsageRecorder, log *logger.Logger) *SiteUsageUseCase {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SiteUsageUseCase{
		store:    store,
		scanner:  scanner,
		interval: interval,
		recorder: recorder,
		logger:   log,
	}
}

// RefreshInterval returns the validity window of a stored figure.
func (uc *SiteUsageUseCase) RefreshInterval() time.Duration {
	return uc.interval
}

// GetTotalUsage returns the stored figure while now is within the
// refresh interval of it, and measures a fresh one otherwise.
func (uc *SiteUsageUseCase) GetTotalUsage(ctx context.Context, now time.Time) (*SiteUsage, error) {
	stored, err := uc.store.Load(ctx)
	if err != nil {
		uc.logger.Warn("failed to load site usage, rescanning", zap.Error(err))
		stored = nil
	}
	if stored != nil && !stored.LastUpdated.IsZero() && now.Sub(stored.LastUpdated) < uc.interval {
		stored.Size = FormatMegabytes(stored.Bytes)
		stored.Cached = true
		return stored, nil
	}
	return uc.ForceRefresh(ctx, now)
}

// ForceRefresh measures the site usage and stores it with timestamp now.
// A failed save is logged; the fresh figure is still returned.
func (uc *SiteUsageUseCase) ForceRefresh(ctx context.Context, now time.Time) (*SiteUsage, error) {
	start := time.Now()
	total, err := uc.scanner.TotalSize(ctx)
	if uc.recorder != nil {
		uc.recorder.ObserveScan(err)
	}
	if err != nil {
		uc.logger.Error("site usage scan failed",
			zap.String("scanner", uc.scanner.Name()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUsageScanFailed, err)
	}

	usage := &SiteUsage{
		Bytes:       total,
		Size:        FormatMegabytes(total),
		LastUpdated: now,
	}
	uc.logger.Info("site usage measured",
		zap.String("scanner", uc.scanner.Name()),
		zap.Int64("bytes", total),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := uc.store.Save(ctx, usage); err != nil {
		uc.logger.Warn("failed to save site usage", zap.Error(err))
	}
	if uc.recorder != nil {
		uc.recorder.SetSiteUsage(usage.Bytes, usage.LastUpdated)
	}
	return usage, nil
}
