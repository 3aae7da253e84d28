package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"taskboard/infras/otel"
	"taskboard/infras/postgres"
	"taskboard/internal/domains/todo/model"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	"taskboard/shared/logger"
	gRepo "taskboard/shared/repository"
)

const queryTodosWithTags = `
SELECT
	todos.id, todos.user_id, todos.title, todos.description, todos.completed,
	todos.start_at, todos.due_at, todos.created_at, todos.updated_at,
	tags.id AS tag_id, tags.name AS tag_name, tags.color AS tag_color
FROM todos
LEFT JOIN todo_tags ON todo_tags.todo_id = todos.id
LEFT JOIN tags ON tags.id = todo_tags.tag_id AND tags.user_id = todos.user_id
%s
ORDER BY todos.created_at ASC, todos.id ASC, tags.name ASC`

type Todo interface {
	Insert(ctx context.Context, model model.Todo) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Todo, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetAllWithTags(ctx context.Context, filter gDto.FilterGroup) ([]model.Todo, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Todo]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Todo {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Todo](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetAllWithTags lists todos matching filter, oldest first, each with its tags.
// The filter must reference columns qualified with the todos table.
func (repo *repositoryImpl) GetAllWithTags(ctx context.Context, filter gDto.FilterGroup) (res []model.Todo, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.GetAllWithTags")
	defer scope.End()
	defer scope.TraceIfError(&err)

	where, args := repo.BuildWhereClause(ctx, filter)
	query := fmt.Sprintf(queryTodosWithTags, where)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var rows []model.TodoTagRow

	if err = prepare.SelectContext(ctx, &rows, args); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to get todos with tags: %w", err)
	}

	return model.GroupTodoTags(rows), nil
}
