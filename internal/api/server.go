package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/config"
	"todo-tracker/internal/service"
)

// Services bundles the domain services the HTTP surface exposes.
type Services struct {
	Users      *service.UserService
	Todos      *service.TodoService
	Categories *service.CategoryService
	Tags       *service.TagService
	Resets     *service.PasswordResetService
}

// Server aggregates the HTTP router with services.
type Server struct {
	users      *service.UserService
	todos      *service.TodoService
	categories *service.CategoryService
	tags       *service.TagService
	resets     *service.PasswordResetService
	tokens     *auth.JWTManager
	limiter    *RateLimiter
	config     *config.Config
	logger     *slog.Logger
}

// New builds a Server. limiter may be nil to disable rate limiting.
func New(svc Services, tokens *auth.JWTManager, limiter *RateLimiter, cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		users:      svc.Users,
		todos:      svc.Todos,
		categories: svc.Categories,
		tags:       svc.Tags,
		resets:     svc.Resets,
		tokens:     tokens,
		limiter:    limiter,
		config:     cfg,
		logger:     logger,
	}
}

// Router wires middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.requestLogger(), s.metrics(), cors.New(s.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("", s.rateLimit())
	{
		public.POST("/register", s.register)
		public.POST("/login", s.login)
		public.POST("/logout", s.logout)

		public.POST("/reset-password-request", s.requestPasswordReset)
		public.GET("/reset-password-token-verify", s.verifyResetToken)
		public.POST("/reset-password", s.resetPassword)
	}

	authed := r.Group("", s.authenticate(), s.rateLimit())
	{
		authed.GET("/me", s.me)
		authed.PUT("/user", s.updateUser)

		authed.GET("/todos", s.listTodos)
		authed.GET("/todos/search", s.searchTodos)
		authed.GET("/todos/:id", s.getTodo)
		authed.POST("/todos", s.createTodo)
		authed.PATCH("/todos/:id", s.updateTodo)
		authed.DELETE("/todos/:id", s.deleteTodo)

		authed.GET("/category", s.listCategories)
		authed.POST("/category", s.createCategory)
		authed.PATCH("/category/:id", s.renameCategory)
		authed.DELETE("/category/:id", s.deleteCategory)

		authed.GET("/tags", s.listTags)
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.config.AllowedOrigins) > 0 {
		cfg.AllowOrigins = s.config.AllowedOrigins
	} else {
		// Development: reflect any origin.
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}
