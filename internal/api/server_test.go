package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/config"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, limiter *RateLimiter) *gin.Engine {
	t.Helper()
	return newTestServerWithMailer(t, limiter, &linkRecorder{})
}

func newTestServerWithMailer(t *testing.T, limiter *RateLimiter, mailer service.Mailer) *gin.Engine {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, Location: time.UTC}
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	users := repository.NewUserRepository(db)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	categories := service.NewCategoryService(repository.NewCategoryRepository(db))
	tags := service.NewTagService(repository.NewTagRepository(db))
	svc := Services{
		Users:      service.NewUserService(users, hasher, tokens, "General"),
		Todos:      service.NewTodoService(repository.NewTodoRepository(db), categories, tags, service.NewQueryBuilder(cfg.Location)),
		Categories: categories,
		Tags:       tags,
		Resets:     service.NewPasswordResetService(users, repository.NewPasswordResetRepository(db), hasher, mailer, "http://localhost:5173"),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(svc, tokens, limiter, cfg, logger).Router()
}

// linkRecorder keeps the reset links the server mails.
type linkRecorder struct {
	links []string
}

func (m *linkRecorder) SendPasswordReset(_ context.Context, _, link string) error {
	m.links = append(m.links, link)
	return nil
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signUp registers and logs in, returning the token and default category id.
func signUp(t *testing.T, r http.Handler, email string) (string, uint) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]any](t, w)["token"].(string)

	w = doJSON(t, r, http.MethodGet, "/category", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]categoryJSON](t, w)
	require.Len(t, categories, 1)
	return token, categories[0].ID
}

type categoryJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type tagJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type todoJSON struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	CategoryID  uint         `json:"categoryId"`
	CompletedAt *time.Time   `json:"completedAt"`
	Category    categoryJSON `json:"category"`
	Tags        []tagJSON    `json:"tags"`
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
