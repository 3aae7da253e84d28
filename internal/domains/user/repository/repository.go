package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"taskboard/infras/otel"
	"taskboard/infras/postgres"
	"taskboard/internal/domains/user/model"
	"taskboard/shared"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	gRepo "taskboard/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// FindByEmail returns the zero user when no account uses the address.
	FindByEmail(ctx context.Context, email string) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
	SetPassword(ctx context.Context, id, hash string, at time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.And(gDto.Eq(model.TableName, model.FieldEmail, email))
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (repo *repositoryImpl) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return repo.Get(ctx, byEmail(email)) //nolint:wrapcheck
}

func (repo *repositoryImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	return repo.Exist(ctx, byEmail(email)) //nolint:wrapcheck
}

func (repo *repositoryImpl) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return repo.Update(ctx, map[string]any{model.FieldLastLogin: at}, byID(id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) SetPassword(ctx context.Context, id, hash string, at time.Time) error {
	return repo.Update(ctx, map[string]any{ //nolint:wrapcheck
		model.FieldPassword:     hash,
		constant.FieldUpdatedAt: at,
	}, byID(id))
}
