package biz

import (
	"context"
	"slices"
)

// Category is a node of the course category tree.
type Category struct {
	ID       int64
	Name     string
	ParentID int64
	Path     string
}

// Course carries the display metadata of one course.
type Course struct {
	ID           int64
	ShortName    string
	FullName     string
	CategoryID   int64
	CategoryName string
}

// CourseIndex maps course context ids to course ids for the courses in
// scope of a report.
type CourseIndex struct {
	byContext map[int64]int64
	courses   map[int64]struct{}
}

// NewCourseIndex returns an empty index.
func NewCourseIndex() *CourseIndex {
	return &CourseIndex{
		byContext: make(map[int64]int64),
		courses:   make(map[int64]struct{}),
	}
}

// Add records that contextID is the context of courseID.
func (ci *CourseIndex) Add(contextID, courseID int64) {
	ci.byContext[contextID] = courseID
	ci.courses[courseID] = struct{}{}
}

// CourseForContext returns the course whose context is contextID.
func (ci *CourseIndex) CourseForContext(contextID int64) (int64, bool) {
	id, ok := ci.byContext[contextID]
	return id, ok
}

// Contains reports whether courseID is in scope.
func (ci *CourseIndex) Contains(courseID int64) bool {
	_, ok := ci.courses[courseID]
	return ok
}

// Len returns the number of courses in scope.
func (ci *CourseIndex) Len() int {
	return len(ci.courses)
}

// CourseIDs returns the in-scope course ids in ascending order.
func (ci *CourseIndex) CourseIDs() []int64 {
	ids := make([]int64, 0, len(ci.courses))
	for id := range ci.courses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CourseRepo reads courses and categories.
type CourseRepo interface {
	// Category returns ErrCategoryNotFound when id does not exist.
	Category(ctx context.Context, id int64) (*Category, error)
	// Categories lists every category ordered by path.
	Categories(ctx context.Context) ([]*Category, error)
	// CourseIndex builds the index for all courses, or for the courses
	// inside the subtree of categoryID when it is non-zero.
	CourseIndex(ctx context.Context, categoryID int64) (*CourseIndex, error)
	// CourseMetadata loads the given courses keyed by id.
	CourseMetadata(ctx context.Context, courseIDs []int64) (map[int64]*Course, error)
}

// UserRepo resolves user display names.
type UserRepo interface {
	DisplayNames(ctx context.Context, userIDs []int64) (map[int64]string, error)
}
