package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"todo-tracker/internal/model"
)

// TodoQuery is a composed filter over one user's todos. All set
// predicates are AND'ed; TagIDs match todos linked to any of the tags.
type TodoQuery struct {
	UserID      uint
	CategoryIDs []uint
	TagIDs      []uint
	// DueFrom is inclusive, DueBefore exclusive.
	DueFrom   *time.Time
	DueBefore *time.Time
	Title     *TitleMatch
	NotDone   bool
}

// TitleMatch is a substring match on the todo title.
type TitleMatch struct {
	Text       string
	IgnoreCase bool
}

// Scope applies the query predicates to db.
func (q TodoQuery) Scope(db *gorm.DB) *gorm.DB {
	db = db.Where("todos.user_id = ?", q.UserID)

	if len(q.CategoryIDs) > 0 {
		db = db.Where("todos.category_id IN ?", q.CategoryIDs)
	}

	if len(q.TagIDs) > 0 {
		linked := db.Session(&gorm.Session{NewDB: true}).
			Model(&model.TodoTag{}).
			Select("todo_id").
			Where("tag_id IN ?", q.TagIDs)
		db = db.Where("todos.id IN (?)", linked)
	}

	if q.DueFrom != nil {
		db = db.Where("todos.due_date >= ?", q.DueFrom.UTC())
	}
	if q.DueBefore != nil {
		db = db.Where("todos.due_date < ?", q.DueBefore.UTC())
	}

	if q.Title != nil {
		db = q.Title.apply(db)
	}

	if q.NotDone {
		db = db.Where("todos.completed_at IS NULL")
	}

	return db
}

func (m TitleMatch) apply(db *gorm.DB) *gorm.DB {
	// Position functions avoid LIKE wildcard escaping and SQLite's
	// case-insensitive LIKE.
	postgres := isPostgres(db)
	position := "instr(%s, ?) > 0"
	if postgres {
		position = "strpos(%s, ?) > 0"
	}

	column, needle := "todos.title", m.Text
	switch {
	case m.IgnoreCase && postgres:
		column, needle = "lower(todos.title)", strings.ToLower(m.Text)
	case m.IgnoreCase:
		column, needle = "casefold(todos.title)", foldCase(m.Text)
	}
	return db.Where(strings.Replace(position, "%s", column, 1), needle)
}
