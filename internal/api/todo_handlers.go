package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-tracker/internal/service"
)

type createTodoRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	DueDate     string   `json:"dueDate"`
	CategoryID  *uint    `json:"categoryId"`
	Tags        []string `json:"tags"`
	CompletedAt *string  `json:"completedAt"`
}

type updateTodoRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	DueDate     *string        `json:"dueDate"`
	CategoryID  *uint          `json:"categoryId"`
	Tags        *[]string      `json:"tags"`
	CompletedAt nullableString `json:"completedAt"`
}

// nullableString tells an explicit null apart from an absent field.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (s *Server) listTodos(c *gin.Context) {
	filter := service.TodoFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Tags:       c.QueryArray("tag"),
		Categories: c.QueryArray("category"),
	}

	todos, err := s.todos.List(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) searchTodos(c *gin.Context) {
	search := service.TodoSearch{
		Title:      c.Query("title"),
		IgnoreCase: queryBool(c, "ignorecase", true),
		NotDone:    queryBool(c, "notDone", false),
	}

	todos, err := s.todos.Search(c.Request.Context(), currentUserID(c), search)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) getTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	todo, err := s.todos.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) createTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	todo, err := s.todos.Create(c.Request.Context(), currentUserID(c), service.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (s *Server) updateTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	todo, err := s.todos.Update(c.Request.Context(), currentUserID(c), id, service.TodoPatch{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		CategoryID:     req.CategoryID,
		Tags:           req.Tags,
		CompletedAt:    req.CompletedAt.Value,
		CompletedAtSet: req.CompletedAt.Set,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) deleteTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.todos.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.tags.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// pathID parses the :id segment. A non-numeric id cannot name a row, so
// it answers 404 like any other unknown id.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return uint(id), true
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
