package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Todo=MockTodoService

import (
	"context"
	"fmt"
	"taskboard/config"
	"taskboard/infras/otel"
	"taskboard/internal/domains/todo/model"
	"taskboard/internal/domains/todo/model/dto"
	"taskboard/internal/domains/todo/repository"
	"taskboard/shared"
	"taskboard/shared/cache"
	"taskboard/shared/constant"
	"taskboard/shared/failure"

	"github.com/rs/zerolog/log"
)

const msgTodoNotFound = "Todo not found"

type Todo interface {
	Create(ctx context.Context, req dto.CreateTodoRequest) (dto.TodoResponse, error)
	GetAll(ctx context.Context) ([]dto.TodoResponse, error)
	Get(ctx context.Context, id string) (dto.TodoResponse, error)
	Update(ctx context.Context, req dto.UpdateTodoRequest, id string) (dto.TodoResponse, error)
	Delete(ctx context.Context, id string) (dto.TodoResponse, error)
}

type serviceImpl struct {
	repo  repository.Todo
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Todo, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Todo {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateTodoRequest) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)
	todo := req.ToModel(user)

	if err = s.repo.Insert(ctx, todo); err != nil {
		log.Error().Err(err).Msg("failed to create todo")

		return res, fmt.Errorf("failed to create todo: %w", err)
	}

	s.invalidate(ctx, user)

	todo.Tags = []model.Tag{}
	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context) (res []dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)
	cacheKey := shared.BuildCacheKey(constant.CacheKeyTodoList, user)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil && res != nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for todos")

		return res, nil
	}

	todos, err := s.repo.GetAllWithTags(ctx, shared.FilterByOwner(user, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get todos")

		return nil, fmt.Errorf("failed to get todos: %w", err)
	}

	res = dto.FromModels(todos)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save todos to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	todo, err := s.findOwned(ctx, id, shared.UserIDFromContext(ctx))
	if err != nil {
		return res, err
	}

	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateTodoRequest, id string) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	req.Normalize()

	if req.Title != nil && *req.Title == "" {
		return res, failure.BadRequestFromString("title is required") // nolint:wrapcheck
	}

	if req.DescriptionTooLong() {
		return res, failure.BadRequestFromString(fmt.Sprintf("description must be less than or equal to %d", model.DescriptionMaxLength)) // nolint:wrapcheck
	}

	user := shared.UserIDFromContext(ctx)
	filter := shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if todo exists")

		return res, fmt.Errorf("failed to check if todo exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound(msgTodoNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req), filter); err != nil {
		log.Error().Err(err).Msg("failed to update todo")

		return res, fmt.Errorf("failed to update todo: %w", err)
	}

	s.invalidate(ctx, user)

	todo, err := s.findOwned(ctx, id, user)
	if err != nil {
		return res, err
	}

	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)

	todo, err := s.findOwned(ctx, id, user)
	if err != nil {
		return res, err
	}

	if err = s.repo.Delete(ctx, shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete todo")

		return res, fmt.Errorf("failed to delete todo: %w", err)
	}

	s.invalidate(ctx, user)

	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) findOwned(ctx context.Context, id, user string) (model.Todo, error) {
	todos, err := s.repo.GetAllWithTags(ctx, shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get todo")

		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}

	if len(todos) == 0 {
		return model.Todo{}, failure.NotFound(msgTodoNotFound) // nolint:wrapcheck
	}

	return todos[0], nil
}

func (s *serviceImpl) invalidate(ctx context.Context, user string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(constant.CacheKeyTodoList, user)); err != nil {
		log.Error().Err(err).Msg("failed to delete todos from cache")
	}
}
