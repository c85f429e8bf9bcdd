package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"todo-tracker/internal/repository"
)

const dateLayout = "2006-01-02"

// TodoFilter holds the raw list filters as they arrive from a request.
// From and To are calendar dates; Tags and Categories are numeric ids.
type TodoFilter struct {
	From       string
	To         string
	Tags       []string
	Categories []string
}

// TodoSearch is a title search, independent of the list filters.
type TodoSearch struct {
	Title      string
	IgnoreCase bool
	NotDone    bool
}

// QueryBuilder turns request filters into repository queries. Calendar
// dates are interpreted in loc.
type QueryBuilder struct {
	loc *time.Location
}

func NewQueryBuilder(loc *time.Location) *QueryBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryBuilder{loc: loc}
}

// Build composes the list query. Non-numeric ids are dropped from their
// set; a malformed date is ErrInvalidInput. The To day is inclusive.
func (b *QueryBuilder) Build(userID uint, filter TodoFilter) (repository.TodoQuery, error) {
	query := repository.TodoQuery{
		UserID:      userID,
		CategoryIDs: parseIDs(filter.Categories),
		TagIDs:      parseIDs(filter.Tags),
	}

	if filter.From != "" {
		from, err := b.startOfDay(filter.From)
		if err != nil {
			return repository.TodoQuery{}, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
		}
		query.DueFrom = &from
	}

	if filter.To != "" {
		to, err := b.startOfDay(filter.To)
		if err != nil {
			return repository.TodoQuery{}, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
		}
		before := to.AddDate(0, 0, 1)
		query.DueBefore = &before
	}

	return query, nil
}

// BuildSearch composes the title search query.
func (b *QueryBuilder) BuildSearch(userID uint, search TodoSearch) repository.TodoQuery {
	return repository.TodoQuery{
		UserID:  userID,
		Title:   &repository.TitleMatch{Text: search.Title, IgnoreCase: search.IgnoreCase},
		NotDone: search.NotDone,
	}
}

func (b *QueryBuilder) startOfDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if day, err := time.ParseInLocation(dateLayout, raw, b.loc); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", raw)
	}
	y, m, d := ts.In(b.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.loc), nil
}

func parseIDs(raw []string) []uint {
	var ids []uint
	for _, r := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(r), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
