package data

import (
	"fmt"

	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
)

// LMS tables read by the report. Table names carry the configured prefix
// and are resolved through database.DB.TableName, so none of these types
// declare a TableName method.
const (
	tableContext          = "context"
	tableFiles            = "files"
	tableCourse           = "course"
	tableCourseCategories = "course_categories"
	tableUser             = "user"
	tableConfigPlugins    = "config_plugins"
)

// ContextPO mirrors the context table.
type ContextPO struct {
	ID           int64  `gorm:"column:id;primarykey"`
	ContextLevel int    `gorm:"column:contextlevel;not null;index:idx_context_level_instance"`
	InstanceID   int64  `gorm:"column:instanceid;not null;index:idx_context_level_instance"`
	Path         string `gorm:"column:path;size:255"`
	Depth        int    `gorm:"column:depth;not null;default:0"`
}

// FilePO mirrors the files table. ReferenceFileID is set on aliases
// that point at a file stored elsewhere.
type FilePO struct {
	ID              int64  `gorm:"column:id;primarykey"`
	ContextID       int64  `gorm:"column:contextid;not null;index"`
	Component       string `gorm:"column:component;size:100;not null"`
	FileArea        string `gorm:"column:filearea;size:50;not null"`
	FileName        string `gorm:"column:filename;size:255"`
	FileSize        int64  `gorm:"column:filesize;not null;default:0"`
	ReferenceFileID *int64 `gorm:"column:referencefileid"`
}

// CoursePO mirrors the course table.
type CoursePO struct {
	ID        int64  `gorm:"column:id;primarykey"`
	Category  int64  `gorm:"column:category;not null;default:0;index"`
	ShortName string `gorm:"column:shortname;size:255"`
	FullName  string `gorm:"column:fullname;size:254"`
}

// CategoryPO mirrors the course_categories table.
type CategoryPO struct {
	ID        int64  `gorm:"column:id;primarykey"`
	Name      string `gorm:"column:name;size:255;not null"`
	Parent    int64  `gorm:"column:parent;not null;default:0"`
	Path      string `gorm:"column:path;size:255"`
	SortOrder int64  `gorm:"column:sortorder;not null;default:0"`
}

// UserPO mirrors the name columns of the user table.
type UserPO struct {
	ID        int64  `gorm:"column:id;primarykey"`
	FirstName string `gorm:"column:firstname;size:100"`
	LastName  string `gorm:"column:lastname;size:100"`
}

// ConfigPluginPO mirrors the config_plugins table.
type ConfigPluginPO struct {
	ID     int64  `gorm:"column:id;primarykey;autoIncrement"`
	Plugin string `gorm:"column:plugin;size:100;not null;index:idx_config_plugins_plugin_name,unique"`
	Name   string `gorm:"column:name;size:100;not null;index:idx_config_plugins_plugin_name,unique"`
	Value  string `gorm:"column:value"`
}

// AutoMigrate creates the tables the report reads. Production databases
// already have them; this serves local SQLite setups and tests.
func AutoMigrate(db *database.DB) error {
	models := []struct {
		table string
		model interface{}
	}{
		{tableContext, &ContextPO{}},
		{tableFiles, &FilePO{}},
		{tableCourse, &CoursePO{}},
		{tableCourseCategories, &CategoryPO{}},
		{tableUser, &UserPO{}},
		{tableConfigPlugins, &ConfigPluginPO{}},
	}
	for _, m := range models {
		if err := db.DB.Table(db.TableName(m.table)).AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.table, err)
		}
	}
	return nil
}
