package service

import (
	"context"
	"strings"
	"time"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

// orphanGrace keeps a freshly resolved tag alive until the todo write
// that resolved it has linked it.
const orphanGrace = time.Hour

// TagService resolves free-text tags into shared tag records.
type TagService struct {
	repo *repository.TagRepository
	now  func() time.Time
}

func NewTagService(repo *repository.TagRepository) *TagService {
	return &TagService{repo: repo, now: time.Now}
}

// NormalizeTagNames trims and lower-cases raw tags, drops blank ones and
// collapses duplicates, keeping first-seen order.
func NormalizeTagNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		name := strings.ToLower(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Resolve looks up or creates a tag for every normalized name and
// returns their ids.
func (s *TagService) Resolve(ctx context.Context, raw []string) ([]uint, error) {
	names := NormalizeTagNames(raw)
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		tag, err := s.repo.FindOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	return s.repo.List(ctx)
}

// PruneOrphans deletes tags that no todo uses anymore and that nothing
// resolved within the last hour.
func (s *TagService) PruneOrphans(ctx context.Context) (int64, error) {
	return s.repo.DeleteOrphans(ctx, s.now().Add(-orphanGrace))
}
