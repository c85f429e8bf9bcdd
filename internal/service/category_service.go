package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

// CategoryService provides category operations and the ownership guard
// used before a todo references a category.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Validate returns the category if it exists and userID owns it. Both
// failure reasons wrap ErrInvalidCategory.
func (s *CategoryService) Validate(ctx context.Context, categoryID, userID uint) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, errCategoryMissing)
		}
		return nil, err
	}
	if category.UserID != userID {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, errCategoryNotOwned)
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *CategoryService) Create(ctx context.Context, userID uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	category := model.Category{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, &category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Rename(ctx context.Context, userID, categoryID uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	category, err := s.repo.FindOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if category.Name == name {
		return category, nil
	}
	if err := s.repo.Rename(ctx, category, name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	category.Name = name
	return category, nil
}

// Delete removes the category and every todo in it. The user's last
// category cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uint) error {
	err := s.repo.Delete(ctx, userID, categoryID)
	switch {
	case errors.Is(err, repository.ErrLastCategory):
		return ErrLastCategory
	default:
		return translateNotFound(err)
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
