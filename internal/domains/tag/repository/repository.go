package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"
	"taskboard/infras/otel"
	"taskboard/infras/postgres"
	"taskboard/internal/domains/tag/model"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	"taskboard/shared/logger"
	gRepo "taskboard/shared/repository"
	"taskboard/shared/timezone"

	"github.com/jmoiron/sqlx"
)

const (
	queryAttach = `INSERT INTO todo_tags (todo_id, tag_id, created_at) VALUES (:todo_id, :tag_id, :created_at)
ON CONFLICT (todo_id, tag_id) DO NOTHING`
	queryDetach    = `DELETE FROM todo_tags WHERE todo_id = :todo_id AND tag_id = :tag_id`
	queryTagByName = `SELECT id, user_id, name, color, created_at, updated_at FROM tags WHERE user_id = :user_id AND name = :name`
)

type Tag interface {
	Insert(ctx context.Context, model model.Tag) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tag, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Tag, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// Attach links a tag to a todo. It reports false when the link already existed.
	Attach(ctx context.Context, todoID, tagID string) (bool, error)
	// Detach removes a link. It reports false when there was nothing to remove.
	Detach(ctx context.Context, todoID, tagID string) (bool, error)
	// FindOrCreateAndAttach resolves tag by (user, name), inserting it when missing,
	// and attaches it to todoID in a single transaction. An existing tag keeps
	// its color.
	FindOrCreateAndAttach(ctx context.Context, tag model.Tag, todoID string) (model.Tag, bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Tag]
	db   *postgres.Connection
	otel otel.Otel
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

func New(db *postgres.Connection, otel otel.Otel) Tag {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Tag](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) Attach(ctx context.Context, todoID, tagID string) (attached bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tag.Attach")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return repo.attach(ctx, repo.db.Write, todoID, tagID)
}

func (repo *repositoryImpl) attach(ctx context.Context, exec execer, todoID, tagID string) (bool, error) {
	link := model.TodoTag{TodoID: todoID, TagID: tagID, CreatedAt: timezone.Now()}

	result, err := exec.NamedExecContext(ctx, queryAttach, link)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to attach tag: %w", err)
	}

	return affected(result)
}

func (repo *repositoryImpl) Detach(ctx context.Context, todoID, tagID string) (detached bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tag.Detach")
	defer scope.End()
	defer scope.TraceIfError(&err)

	result, err := repo.db.Write.NamedExecContext(ctx, queryDetach, map[string]any{
		model.FieldTodoID: todoID,
		model.FieldTagID:  tagID,
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to detach tag: %w", err)
	}

	return affected(result)
}

func (repo *repositoryImpl) FindOrCreateAndAttach(ctx context.Context, tag model.Tag, todoID string) (res model.Tag, attached bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tag.FindOrCreateAndAttach")
	defer scope.End()
	defer scope.TraceIfError(&err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return res, false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// a concurrent request may create the same name first; the insert then
	// skips and the reselect picks up the committed row
	if err = repo.InsertTx(ctx, tx, tag, model.FieldUserID, model.FieldName); err != nil {
		return res, false, err //nolint:wrapcheck
	}

	res, err = findByName(ctx, tx, tag.UserID, tag.Name)
	if err != nil {
		logger.ErrorWithStack(err)

		return res, false, fmt.Errorf("failed to find tag by name: %w", err)
	}

	attached, err = repo.attach(ctx, tx, todoID, res.ID)
	if err != nil {
		return res, false, err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return res, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return res, attached, nil
}

func findByName(ctx context.Context, tx *sqlx.Tx, userID, name string) (model.Tag, error) {
	var tag model.Tag

	query, args, err := sqlx.Named(queryTagByName, map[string]any{
		model.FieldUserID: userID,
		model.FieldName:   name,
	})
	if err != nil {
		return tag, fmt.Errorf("failed to bind query: %w", err)
	}

	err = tx.GetContext(ctx, &tag, tx.Rebind(query), args...)

	return tag, err //nolint:wrapcheck
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rows > 0, nil
}
