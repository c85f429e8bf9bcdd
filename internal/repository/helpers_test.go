package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-tracker/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedUser creates a user with one category named "General".
func seedUser(t *testing.T, db *gorm.DB, email string) (*model.User, *model.Category) {
	t.Helper()

	user := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).CreateWithCategory(context.Background(), user, "General"))

	var category model.Category
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&category).Error)
	return user, &category
}

func seedTodo(t *testing.T, db *gorm.DB, userID, categoryID uint, title string, due time.Time, tagIDs ...uint) *model.Todo {
	t.Helper()

	todo := &model.Todo{UserID: userID, CategoryID: categoryID, Title: title, DueDate: due}
	require.NoError(t, NewTodoRepository(db).Create(context.Background(), todo, tagIDs))
	return todo
}

func seedTag(t *testing.T, db *gorm.DB, name string) *model.Tag {
	t.Helper()

	tag, err := NewTagRepository(db).FindOrCreate(context.Background(), name)
	require.NoError(t, err)
	return tag
}

func titles(todos []model.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.Title)
	}
	return out
}

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}
