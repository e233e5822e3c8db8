package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// contextSizeRow is one line of the per-context size query.
type contextSizeRow struct {
	ID           int64  `gorm:"column:id"`
	ContextLevel int    `gorm:"column:contextlevel"`
	InstanceID   int64  `gorm:"column:instanceid"`
	Path         string `gorm:"column:path"`
	Depth        int    `gorm:"column:depth"`
	FilesSize    int64  `gorm:"column:filessize"`
	BackupSize   int64  `gorm:"column:backupsize"`
}

// ContextRepo implements biz.ContextRepo
type ContextRepo struct {
	db     *database.DB
	logger *logger.Logger
	query  string
}

func NewContextRepo(db *database.DB, log *logger.Logger) biz.ContextRepo {
	return &ContextRepo{db: db, logger: log, query: contextSizeQuery(db)}
}

// contextSizeQuery sums file sizes per context, ignoring aliases, and
// joins the backup-only sums alongside.
func contextSizeQuery(db *database.DB) string {
	files := db.TableName(tableFiles)
	sizes := "SELECT f.contextid, CAST(SUM(f.filesize) AS BIGINT) AS filessize FROM " + files + " f" +
		" WHERE f.referencefileid IS NULL GROUP BY f.contextid"
	backups := "SELECT f.contextid, CAST(SUM(f.filesize) AS BIGINT) AS filessize FROM " + files + " f" +
		" WHERE f.component = 'backup' AND f.referencefileid IS NULL GROUP BY f.contextid"

	return "SELECT cx.id, cx.contextlevel, cx.instanceid, cx.path, cx.depth," +
		" size.filessize AS filessize, COALESCE(backupsize.filessize, 0) AS backupsize" +
		" FROM " + db.TableName(tableContext) + " cx" +
		" INNER JOIN (" + sizes + ") size ON cx.id = size.contextid" +
		" LEFT JOIN (" + backups + ") backupsize ON cx.id = backupsize.contextid" +
		" ORDER BY cx.depth ASC, cx.path ASC"
}

// ForEachContext streams the query one row at a time. fn must not issue
// queries of its own: a SQLite connection is held until the rows are closed.
func (r *ContextRepo) ForEachContext(ctx context.Context, fn func(*biz.Context) error) error {
	rows, err := r.db.DB.WithContext(ctx).Raw(r.query).Rows()
	if err != nil {
		return fmt.Errorf("failed to query context sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row contextSizeRow
		if err := r.db.DB.ScanRows(rows, &row); err != nil {
			return fmt.Errorf("failed to scan context size: %w", err)
		}

		path, err := biz.ParsePath(row.Path)
		if err != nil {
			// the aggregator sends contexts without a usable path to the system bucket
			r.logger.Debug("context has malformed path",
				zap.Int64("context_id", row.ID),
				zap.String("path", row.Path),
			)
			path = nil
		}

		if err := fn(&biz.Context{
			ID:          row.ID,
			Level:       biz.ContextLevel(row.ContextLevel),
			InstanceID:  row.InstanceID,
			Path:        path,
			RawBytes:    row.FilesSize,
			BackupBytes: row.BackupSize,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read context sizes: %w", err)
	}
	return nil
}
