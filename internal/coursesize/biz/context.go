package biz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ContextLevel is the kind of entity a context belongs to.
type ContextLevel int

const (
	LevelSystem   ContextLevel = 10
	LevelUser     ContextLevel = 30
	LevelCategory ContextLevel = 40
	LevelCourse   ContextLevel = 50
	LevelModule   ContextLevel = 70
	LevelBlock    ContextLevel = 80
)

func (l ContextLevel) String() string {
	switch l {
	case LevelSystem:
		return "system"
	case LevelUser:
		return "user"
	case LevelCategory:
		return "category"
	case LevelCourse:
		return "course"
	case LevelModule:
		return "module"
	case LevelBlock:
		return "block"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// Context is one node of the context tree together with the storage
// attributed directly to it.
type Context struct {
	ID         int64
	Level      ContextLevel
	InstanceID int64
	// Path lists the ids from the root down to and including ID.
	Path        []int64
	RawBytes    int64
	BackupBytes int64
}

// Depth is the number of nodes on the path, root included.
func (c *Context) Depth() int {
	return len(c.Path)
}

// ParsePath turns "/1/3/45" into [1 3 45]. The leading separator is
// required and every segment must be a positive id.
func ParsePath(path string) ([]int64, error) {
	if !strings.HasPrefix(path, "/") || len(path) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPath, path)
	}
	parts := strings.Split(path[1:], "/")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPath, path)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FormatPath is the inverse of ParsePath.
func FormatPath(ids []int64) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// ContextRepo streams every context that owns at least one stored file.
// Contexts are delivered shallowest first, ties broken by path, so a
// parent is always seen before its children.
type ContextRepo interface {
	ForEachContext(ctx context.Context, fn func(*Context) error) error
}
