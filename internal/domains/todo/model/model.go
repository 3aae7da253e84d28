package model

import (
	"taskboard/shared/model"
	"time"
)

const (
	TableName  = "todos"
	EntityName = "todo"

	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCompleted   = "completed"
	FieldStartAt     = "start_at"
	FieldDueAt       = "due_at"
	FieldCreatedAt   = "created_at"

	TitleMaxLength       = 500
	DescriptionMaxLength = 1000
)

type Todo struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Completed   bool       `db:"completed"`
	StartAt     *time.Time `db:"start_at"`
	DueAt       *time.Time `db:"due_at"`
	Tags        []Tag      `db:"-"`
	model.Metadata
}

// Tag is the slice of a tag embedded in a todo listing.
type Tag struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// TodoTagRow is one row of the todos LEFT JOIN todo_tags LEFT JOIN tags query.
// The tag columns are NULL for todos without tags.
type TodoTagRow struct {
	Todo
	TagID    *string `db:"tag_id"`
	TagName  *string `db:"tag_name"`
	TagColor *string `db:"tag_color"`
}

// GroupTodoTags folds joined rows into one Todo per id, preserving the order in
// which todos first appear. Every todo gets a non-nil Tags slice and a tag is
// listed at most once per todo.
func GroupTodoTags(rows []TodoTagRow) []Todo {
	todos := make([]Todo, 0, len(rows))
	index := make(map[string]int, len(rows))
	seen := make(map[string]map[string]struct{}, len(rows))

	for _, row := range rows {
		pos, ok := index[row.ID]
		if !ok {
			todo := row.Todo
			todo.Tags = []Tag{}

			pos = len(todos)
			index[row.ID] = pos
			seen[row.ID] = map[string]struct{}{}

			todos = append(todos, todo)
		}

		if row.TagID == nil {
			continue
		}

		if _, dup := seen[row.ID][*row.TagID]; dup {
			continue
		}

		seen[row.ID][*row.TagID] = struct{}{}

		tag := Tag{ID: *row.TagID, Color: row.TagColor}
		if row.TagName != nil {
			tag.Name = *row.TagName
		}

		todos[pos].Tags = append(todos[pos].Tags, tag)
	}

	return todos
}
