package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

type testEnv struct {
	users      *UserService
	categories *CategoryService
	tags       *TagService
	todos      *TodoService
	resets     *PasswordResetService
	mail       *captureMailer
}

// captureMailer records reset links instead of sending them.
type captureMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to   string
	link string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, link string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, link: link})
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvIn(t, time.UTC)
}

// newTestEnvIn builds the services with calendar days read in loc.
func newTestEnvIn(t *testing.T, loc *time.Location) *testEnv {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	categories := NewCategoryService(repository.NewCategoryRepository(db))
	tags := NewTagService(repository.NewTagRepository(db))
	mail := &captureMailer{}
	return &testEnv{
		users:      NewUserService(users, hasher, auth.NewJWTManager("test-secret", time.Hour), "General"),
		categories: categories,
		tags:       tags,
		todos:      NewTodoService(repository.NewTodoRepository(db), categories, tags, NewQueryBuilder(loc)),
		resets:     NewPasswordResetService(users, repository.NewPasswordResetRepository(db), hasher, mail, "https://app.example.com/"),
		mail:       mail,
	}
}

// register creates an account and returns it with its default category.
func (e *testEnv) register(t *testing.T, email string) (*model.User, *model.Category) {
	t.Helper()

	user, err := e.users.Register(context.Background(), email, "secret1")
	require.NoError(t, err)
	categories, err := e.categories.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	return user, &categories[0]
}

func (e *testEnv) createTodo(t *testing.T, userID, categoryID uint, title, due string, tags ...string) *TodoView {
	t.Helper()

	todo, err := e.todos.Create(context.Background(), userID, TodoInput{
		Title:      title,
		DueDate:    due,
		CategoryID: &categoryID,
		Tags:       tags,
	})
	require.NoError(t, err)
	return todo
}

func ptr[T any](v T) *T {
	return &v
}

func viewTitles(todos []TodoView) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.Title)
	}
	return out
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Name)
	}
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
