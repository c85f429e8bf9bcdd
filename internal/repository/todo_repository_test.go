package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/model"
)

func TestTodoRepository_CreateLoadsRelations(t *testing.T) {
	db := newTestDB(t)
	repo := NewTodoRepository(db)
	user, category := seedUser(t, db, "a@example.com")
	b := seedTag(t, db, "b")
	a := seedTag(t, db, "a")

	todo := seedTodo(t, db, user.ID, category.ID, "write report", day(2024, 3, 10, 9), b.ID, a.ID, b.ID)

	found, err := repo.FindByID(context.Background(), user.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "General", found.Category.Name)
	require.Len(t, found.Tags, 2)
	// Links come back in tag id order.
	assert.Equal(t, "b", found.Tags[0].Tag.Name)
	assert.Equal(t, "a", found.Tags[1].Tag.Name)
	assert.False(t, found.Done())
}

func TestTodoRepository_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	alice, category := seedUser(t, db, "alice@example.com")
	bob, _ := seedUser(t, db, "bob@example.com")

	todo := seedTodo(t, db, alice.ID, category.ID, "private", day(2024, 3, 10, 9))

	_, err := repo.FindByID(ctx, bob.ID, todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(ctx, &model.Todo{ID: todo.ID, UserID: bob.ID}, TodoChanges{Columns: map[string]any{"title": "mine now"}})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, todo.ID), ErrNotFound)

	found, err := repo.FindByID(ctx, alice.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", found.Title)
}

func TestTodoRepository_UpdateReplacesTagsAndClearsCompletion(t *testing.T) {
	db := newTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user, category := seedUser(t, db, "a@example.com")
	old := seedTag(t, db, "old")
	fresh := seedTag(t, db, "fresh")

	todo := seedTodo(t, db, user.ID, category.ID, "task", day(2024, 3, 10, 9), old.ID)

	done := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Update(ctx, todo, TodoChanges{Columns: map[string]any{"completed_at": done}}))
	found, err := repo.FindByID(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	require.NotNil(t, found.CompletedAt)
	assert.True(t, found.CompletedAt.Equal(done))

	require.NoError(t, repo.Update(ctx, todo, TodoChanges{
		Columns:     map[string]any{"completed_at": nil},
		ReplaceTags: true,
		TagIDs:      []uint{fresh.ID},
	}))
	found, err = repo.FindByID(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, found.CompletedAt)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "fresh", found.Tags[0].Tag.Name)
}

func TestTodoRepository_UpdateClearsTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user, category := seedUser(t, db, "a@example.com")
	tag := seedTag(t, db, "x")
	todo := seedTodo(t, db, user.ID, category.ID, "task", day(2024, 3, 10, 9), tag.ID)

	require.NoError(t, repo.Update(ctx, todo, TodoChanges{ReplaceTags: true}))

	found, err := repo.FindByID(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Tags)
}

func TestTodoRepository_DeleteRemovesLinks(t *testing.T) {
	db := newTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user, category := seedUser(t, db, "a@example.com")
	tag := seedTag(t, db, "x")
	todo := seedTodo(t, db, user.ID, category.ID, "task", day(2024, 3, 10, 9), tag.ID)

	require.NoError(t, repo.Delete(ctx, user.ID, todo.ID))

	var links int64
	require.NoError(t, db.Model(&model.TodoTag{}).Count(&links).Error)
	assert.Zero(t, links)

	_, err := repo.FindByID(ctx, user.ID, todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
