package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-tracker/internal/model"
)

// TagRepository stores global tags. Names are unique; callers pass
// already-normalized names.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindOrCreate returns the tag with the given name, creating it if needed,
// and marks it used. The mark is written before the row is read, so an
// orphan sweep with an older cutoff cannot remove it underneath the caller.
func (r *TagRepository) FindOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	db := r.db.WithContext(ctx)
	now := db.NowFunc()

	touched := db.Model(&model.Tag{}).Where("name = ?", name).UpdateColumn("used_at", now)
	if err := touched.Error; err != nil {
		return nil, fmt.Errorf("touch tag: %w", err)
	}
	if touched.RowsAffected == 0 {
		return r.upsert(ctx, name, now)
	}

	var tag model.Tag
	if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, fmt.Errorf("find tag: %w", notFound(err))
	}
	return &tag, nil
}

// upsert inserts the tag or, when a concurrent writer won the unique
// index, marks the winner's row used. Either way the stored row is
// re-fetched.
func (r *TagRepository) upsert(ctx context.Context, name string, usedAt time.Time) (*model.Tag, error) {
	db := r.db.WithContext(ctx)
	candidate := model.Tag{Name: name, UsedAt: usedAt}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"used_at"}),
	}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	var tag model.Tag
	if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, fmt.Errorf("refetch tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// DeleteOrphans removes tags no todo refers to and that were last used
// before usedBefore, and returns how many went.
func (r *TagRepository) DeleteOrphans(ctx context.Context, usedBefore time.Time) (int64, error) {
	linked := r.db.Model(&model.TodoTag{}).Select("tag_id")
	result := r.db.WithContext(ctx).
		Where("id NOT IN (?)", linked).
		Where("(used_at IS NULL OR used_at < ?)", usedBefore.UTC()).
		Delete(&model.Tag{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("delete orphan tags: %w", err)
	}
	return result.RowsAffected, nil
}
