package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-tracker/internal/model"
)

// TodoRepository handles CRUD for todos and their tag links. Every
// lookup is scoped to the owning user; a todo of another user is
// reported as ErrNotFound.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// TodoChanges is a partial update. Columns holds only the supplied
// fields; when ReplaceTags is set the whole tag set becomes TagIDs.
type TodoChanges struct {
	Columns     map[string]any
	ReplaceTags bool
	TagIDs      []uint
}

// Empty reports whether applying c would change nothing.
func (c TodoChanges) Empty() bool {
	return len(c.Columns) == 0 && !c.ReplaceTags
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag_id ASC") }).
		Preload("Tags.Tag")
}

func (r *TodoRepository) FindByID(ctx context.Context, userID, todoID uint) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Scopes(withRelations).
		Where("user_id = ? AND id = ?", userID, todoID).
		First(&todo).Error; err != nil {
		return nil, notFound(err)
	}
	return &todo, nil
}

func (r *TodoRepository) Find(ctx context.Context, q TodoQuery) ([]model.Todo, error) {
	todos := []model.Todo{}
	if err := r.db.WithContext(ctx).Scopes(q.Scope, withRelations).
		Order("todos.due_date ASC, todos.id ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}
	return todos, nil
}

// Create inserts the todo and its tag links in one transaction.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(todo).Error; err != nil {
			return fmt.Errorf("create todo: %w", err)
		}
		return insertTodoTags(tx, todo.ID, tagIDs)
	})
}

// Update applies changes to an already loaded (and so owned) todo.
func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo, changes TodoChanges) error {
	if changes.Empty() {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := changes.Columns
		if len(columns) == 0 {
			columns = map[string]any{"updated_at": tx.NowFunc()}
		}
		result := tx.Model(&model.Todo{}).
			Where("user_id = ? AND id = ?", todo.UserID, todo.ID).
			Omit(clause.Associations).
			Updates(columns)
		if err := result.Error; err != nil {
			return fmt.Errorf("update todo: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if !changes.ReplaceTags {
			return nil
		}
		if err := tx.Where("todo_id = ?", todo.ID).Delete(&model.TodoTag{}).Error; err != nil {
			return fmt.Errorf("clear todo tags: %w", err)
		}
		return insertTodoTags(tx, todo.ID, changes.TagIDs)
	})
}

// Delete removes a todo of userID and its tag links.
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var todo model.Todo
		if err := tx.Select("id").Where("user_id = ? AND id = ?", userID, todoID).First(&todo).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("todo_id = ?", todo.ID).Delete(&model.TodoTag{}).Error; err != nil {
			return fmt.Errorf("delete todo tags: %w", err)
		}
		if err := tx.Delete(&todo).Error; err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		return nil
	})
}

func insertTodoTags(tx *gorm.DB, todoID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(tagIDs))
	links := make([]model.TodoTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		links = append(links, model.TodoTag{TodoID: todoID, TagID: tagID})
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return fmt.Errorf("create todo tags: %w", err)
	}
	return nil
}
