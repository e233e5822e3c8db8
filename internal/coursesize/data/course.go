package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// metadataChunk bounds the number of ids bound into one IN clause.
const metadataChunk = 500

// CourseRepo implements biz.CourseRepo
type CourseRepo struct {
	db *database.DB
}

func NewCourseRepo(db *database.DB) biz.CourseRepo {
	return &CourseRepo{db: db}
}

func (r *CourseRepo) Category(ctx context.Context, id int64) (*biz.Category, error) {
	var po CategoryPO
	err := r.db.DB.WithContext(ctx).
		Table(r.db.TableName(tableCourseCategories)).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return r.toCategory(&po), nil
}

func (r *CourseRepo) Categories(ctx context.Context) ([]*biz.Category, error) {
	var pos []CategoryPO
	err := r.db.DB.WithContext(ctx).
		Table(r.db.TableName(tableCourseCategories)).
		Order("path ASC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	cats := make([]*biz.Category, len(pos))
	for i := range pos {
		cats[i] = r.toCategory(&pos[i])
	}
	return cats, nil
}

type courseContextRow struct {
	ContextID int64 `gorm:"column:contextid"`
	CourseID  int64 `gorm:"column:courseid"`
}

func (r *CourseRepo) CourseIndex(ctx context.Context, categoryID int64) (*biz.CourseIndex, error) {
	q := r.db.DB.WithContext(ctx).
		Table(r.db.TableName(tableCourse)+" c").
		Select("cx.id AS contextid, c.id AS courseid").
		Joins("INNER JOIN "+r.db.TableName(tableContext)+" cx ON cx.instanceid = c.id AND cx.contextlevel = ?", int(biz.LevelCourse))

	if categoryID != 0 {
		cat, err := r.Category(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		subtree := r.db.DB.
			Table(r.db.TableName(tableCourseCategories)).
			Select("id").
			Where("id = ? OR path LIKE ?", cat.ID, cat.Path+"/%")
		q = q.Where("c.category IN (?)", subtree)
	}

	var rows []courseContextRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to build course index: %w", err)
	}

	index := biz.NewCourseIndex()
	for _, row := range rows {
		index.Add(row.ContextID, row.CourseID)
	}
	return index, nil
}

type courseMetadataRow struct {
	ID           int64  `gorm:"column:id"`
	ShortName    string `gorm:"column:shortname"`
	FullName     string `gorm:"column:fullname"`
	CategoryID   int64  `gorm:"column:category"`
	CategoryName string `gorm:"column:categoryname"`
}

// CourseMetadata only returns courses whose category exists, which
// leaves out the site front page.
func (r *CourseRepo) CourseMetadata(ctx context.Context, courseIDs []int64) (map[int64]*biz.Course, error) {
	courses := make(map[int64]*biz.Course, len(courseIDs))

	for start := 0; start < len(courseIDs); start += metadataChunk {
		end := min(start+metadataChunk, len(courseIDs))

		var rows []courseMetadataRow
		err := r.db.DB.WithContext(ctx).
			Table(r.db.TableName(tableCourse)+" c").
			Select("c.id, c.shortname, c.fullname, c.category, ca.name AS categoryname").
			Joins("INNER JOIN "+r.db.TableName(tableCourseCategories)+" ca ON c.category = ca.id").
			Where("c.id IN ?", courseIDs[start:end]).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load course metadata: %w", err)
		}

		for _, row := range rows {
			courses[row.ID] = &biz.Course{
				ID:           row.ID,
				ShortName:    row.ShortName,
				FullName:     row.FullName,
				CategoryID:   row.CategoryID,
				CategoryName: row.CategoryName,
			}
		}
	}
	return courses, nil
}

func (r *CourseRepo) toCategory(po *CategoryPO) *biz.Category {
	return &biz.Category{
		ID:       po.ID,
		Name:     po.Name,
		ParentID: po.Parent,
		Path:     po.Path,
	}
}
