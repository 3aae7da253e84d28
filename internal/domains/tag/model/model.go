package model

import (
	"taskboard/shared/model"
	"time"
)

const (
	TableName  = "tags"
	EntityName = "tag"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldName      = "name"
	FieldColor     = "color"
	FieldCreatedAt = "created_at"

	NameMaxLength = 100
)

const (
	TodoTagTableName  = "todo_tags"
	TodoTagEntityName = "todo_tag"

	FieldTodoID = "todo_id"
	FieldTagID  = "tag_id"
)

type Tag struct {
	ID     string  `db:"id"`
	UserID string  `db:"user_id"`
	Name   string  `db:"name"`
	Color  *string `db:"color"`
	model.Metadata
}

// TodoTag associates a todo with a tag of the same owner. The pair is unique.
type TodoTag struct {
	TodoID    string    `db:"todo_id"`
	TagID     string    `db:"tag_id"`
	CreatedAt time.Time `db:"created_at"`
}
