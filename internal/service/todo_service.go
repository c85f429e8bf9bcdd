package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title       string
	Description *string
	DueDate     string
	CategoryID  *uint
	Tags        []string
	CompletedAt *string
}

// TodoPatch is a partial update; nil fields are left untouched.
// CompletedAtSet distinguishes an explicit null (clear completion) from
// an absent field.
type TodoPatch struct {
	Title          *string
	Description    *string
	DueDate        *string
	CategoryID     *uint
	Tags           *[]string
	CompletedAt    *string
	CompletedAtSet bool
}

// TodoView is a todo as returned to callers, with its tags flattened.
type TodoView struct {
	model.Todo
	Tags []model.Tag `json:"tags"`
}

func newTodoView(todo model.Todo) TodoView {
	tags := make([]model.Tag, 0, len(todo.Tags))
	for _, link := range todo.Tags {
		tags = append(tags, link.Tag)
	}
	return TodoView{Todo: todo, Tags: tags}
}

func newTodoViews(todos []model.Todo) []TodoView {
	views := make([]TodoView, 0, len(todos))
	for _, todo := range todos {
		views = append(views, newTodoView(todo))
	}
	return views
}

// TodoService wraps todo-related business logic.
type TodoService struct {
	todos      *repository.TodoRepository
	categories *CategoryService
	tags       *TagService
	queries    *QueryBuilder
}

func NewTodoService(todos *repository.TodoRepository, categories *CategoryService, tags *TagService, queries *QueryBuilder) *TodoService {
	return &TodoService{todos: todos, categories: categories, tags: tags, queries: queries}
}

func (s *TodoService) List(ctx context.Context, userID uint, filter TodoFilter) ([]TodoView, error) {
	query, err := s.queries.Build(userID, filter)
	if err != nil {
		return nil, err
	}
	todos, err := s.todos.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return newTodoViews(todos), nil
}

func (s *TodoService) Search(ctx context.Context, userID uint, search TodoSearch) ([]TodoView, error) {
	todos, err := s.todos.Find(ctx, s.queries.BuildSearch(userID, search))
	if err != nil {
		return nil, err
	}
	return newTodoViews(todos), nil
}

func (s *TodoService) Get(ctx context.Context, userID, todoID uint) (*TodoView, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	view := newTodoView(*todo)
	return &view, nil
}

func (s *TodoService) Create(ctx context.Context, userID uint, input TodoInput) (*TodoView, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.DueDate) == "" || input.CategoryID == nil {
		return nil, fmt.Errorf("%w: title, dueDate and categoryId are required", ErrInvalidInput)
	}

	dueDate, err := parseTimestamp(input.DueDate, s.queries.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate: %v", ErrInvalidInput, err)
	}

	todo := model.Todo{
		UserID:     userID,
		Title:      input.Title,
		DueDate:    dueDate,
		CategoryID: *input.CategoryID,
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.CompletedAt != nil && *input.CompletedAt != "" {
		completedAt, err := parseTimestamp(*input.CompletedAt, s.queries.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: completedAt: %v", ErrInvalidInput, err)
		}
		todo.CompletedAt = &completedAt
	}

	if _, err := s.categories.Validate(ctx, todo.CategoryID, userID); err != nil {
		return nil, err
	}

	tagIDs, err := s.tags.Resolve(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	if err := s.todos.Create(ctx, &todo, tagIDs); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, todo.ID)
}

// Update applies patch to the caller's todo. A present tag list replaces
// the whole tag set; an empty patch returns the todo unchanged.
func (s *TodoService) Update(ctx context.Context, userID, todoID uint, patch TodoPatch) (*TodoView, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	changes := repository.TodoChanges{Columns: map[string]any{}}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		changes.Columns["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes.Columns["description"] = *patch.Description
	}
	if patch.DueDate != nil {
		dueDate, err := parseTimestamp(*patch.DueDate, s.queries.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: dueDate: %v", ErrInvalidInput, err)
		}
		changes.Columns["due_date"] = dueDate
	}
	if patch.CompletedAtSet {
		if patch.CompletedAt == nil || *patch.CompletedAt == "" {
			changes.Columns["completed_at"] = nil
		} else {
			completedAt, err := parseTimestamp(*patch.CompletedAt, s.queries.loc)
			if err != nil {
				return nil, fmt.Errorf("%w: completedAt: %v", ErrInvalidInput, err)
			}
			changes.Columns["completed_at"] = completedAt
		}
	}
	if patch.CategoryID != nil {
		if _, err := s.categories.Validate(ctx, *patch.CategoryID, userID); err != nil {
			return nil, err
		}
		changes.Columns["category_id"] = *patch.CategoryID
	}
	if patch.Tags != nil {
		tagIDs, err := s.tags.Resolve(ctx, *patch.Tags)
		if err != nil {
			return nil, err
		}
		changes.ReplaceTags = true
		changes.TagIDs = tagIDs
	}

	if changes.Empty() {
		view := newTodoView(*todo)
		return &view, nil
	}

	if err := s.todos.Update(ctx, todo, changes); err != nil {
		return nil, translateNotFound(err)
	}
	return s.Get(ctx, userID, todoID)
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID uint) error {
	return translateNotFound(s.todos.Delete(ctx, userID, todoID))
}

// parseTimestamp accepts ISO-8601 timestamps and plain dates. Values
// without a zone are read in loc, the zone the list filters use for
// calendar days, and stored as UTC.
func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", dateLayout} {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 date: %q", raw)
}
