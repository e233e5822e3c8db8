package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/database"
)

// UserRepo implements biz.UserRepo
type UserRepo struct {
	db *database.DB
}

func NewUserRepo(db *database.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

// DisplayNames returns "firstname lastname" for every id that exists.
func (r *UserRepo) DisplayNames(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	var pos []UserPO
	err := r.db.DB.WithContext(ctx).
		Table(r.db.TableName(tableUser)).
		Select("id, firstname, lastname").
		Where("id IN ?", userIDs).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	for _, po := range pos {
		names[po.ID] = strings.TrimSpace(po.FirstName + " " + po.LastName)
	}
	return names, nil
}
