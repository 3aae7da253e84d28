package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Tag=MockTagService

import (
	"context"
	"fmt"
	"slices"
	"taskboard/config"
	"taskboard/infras/otel"
	"taskboard/internal/domains/tag/model"
	"taskboard/internal/domains/tag/model/dto"
	"taskboard/internal/domains/tag/repository"
	todoModel "taskboard/internal/domains/todo/model"
	todoRepository "taskboard/internal/domains/todo/repository"
	"taskboard/shared"
	"taskboard/shared/cache"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	"taskboard/shared/failure"
	gRepo "taskboard/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	msgTagNotFound      = "Tag not found"
	msgTodoNotFound     = "Todo not found"
	msgTagNotAttached   = "Tag is not attached to todo"
	msgTagAlreadyExists = "Tag with this name already exists"
)

var sortableColumns = []string{model.FieldName, model.FieldCreatedAt}

type Tag interface {
	Create(ctx context.Context, req dto.CreateTagRequest) (dto.TagResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams) ([]dto.TagResponse, error)
	Get(ctx context.Context, id string) (dto.TagResponse, error)
	Update(ctx context.Context, req dto.UpdateTagRequest, id string) (dto.TagResponse, error)
	Delete(ctx context.Context, id string) (dto.TagResponse, error)
	Attach(ctx context.Context, todoID string, req dto.AttachTagRequest) (dto.AttachTagResponse, error)
	Detach(ctx context.Context, todoID, tagID string) error
}

type serviceImpl struct {
	repo     repository.Tag
	todoRepo todoRepository.Todo
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Tag, todoRepo todoRepository.Todo, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Tag {
	return &serviceImpl{
		repo:     repo,
		todoRepo: todoRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateTagRequest) (res dto.TagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)
	tag := req.ToModel(user)

	if err = s.repo.Insert(ctx, tag); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(msgTagAlreadyExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create tag")

		return res, fmt.Errorf("failed to create tag: %w", err)
	}

	shared.InvalidateCaches(ctx, s.cache, shared.BuildCacheKey(constant.CacheKeyTagList, user))

	res.FromModel(tag)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res []dto.TagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTags")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if !slices.Contains(sortableColumns, params.SortBy) {
		params.SortBy = model.FieldName
	}

	if params.SortDir == "" {
		params.SortDir = gDto.SortDirAsc
	}

	user := shared.UserIDFromContext(ctx)
	filter := shared.FilterByOwner(user, model.TableName)

	if params.Search != "" {
		filter = filter.With(gDto.Like(model.TableName, model.FieldName, params.Search))
	}

	cacheKey := shared.BuildCacheKeyWithQuery(constant.CacheKeyTagList, params, filter, user)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil && res != nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for tags")

		return res, nil
	}

	tags, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get tags")

		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	res = dto.FromModels(tags)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save tags to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.TagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	tag, err := s.findOwned(ctx, id, shared.UserIDFromContext(ctx))
	if err != nil {
		return res, err
	}

	res.FromModel(tag)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateTagRequest, id string) (res dto.TagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	req.Normalize()

	if req.Name != nil && *req.Name == "" {
		return res, failure.BadRequestFromString("name is required") // nolint:wrapcheck
	}

	if err = req.ValidateColor(); err != nil {
		return res, err //nolint:wrapcheck
	}

	user := shared.UserIDFromContext(ctx)

	if _, err = s.findOwned(ctx, id, user); err != nil {
		return res, err
	}

	filter := shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName)

	if err = s.repo.Update(ctx, shared.TransformFields(req), filter); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(msgTagAlreadyExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update tag")

		return res, fmt.Errorf("failed to update tag: %w", err)
	}

	s.invalidate(ctx, user)

	tag, err := s.findOwned(ctx, id, user)
	if err != nil {
		return res, err
	}

	res.FromModel(tag)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (res dto.TagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DeleteTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)

	tag, err := s.findOwned(ctx, id, user)
	if err != nil {
		return res, err
	}

	if err = s.repo.Delete(ctx, shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete tag")

		return res, fmt.Errorf("failed to delete tag: %w", err)
	}

	s.invalidate(ctx, user)

	res.FromModel(tag)

	return res, nil
}

func (s *serviceImpl) Attach(ctx context.Context, todoID string, req dto.AttachTagRequest) (res dto.AttachTagResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AttachTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.TagID == "" && !req.ByName() {
		return res, failure.BadRequestFromString("tagId or name is required") // nolint:wrapcheck
	}

	user := shared.UserIDFromContext(ctx)

	if err = s.ensureTodoOwned(ctx, todoID, user); err != nil {
		return res, err
	}

	var (
		tag      model.Tag
		attached bool
	)

	if req.ByName() {
		tag, attached, err = s.repo.FindOrCreateAndAttach(ctx, req.ToModel(user), todoID)
		if err != nil {
			log.Error().Err(err).Msg("failed to create and attach tag")

			return res, fmt.Errorf("failed to create and attach tag: %w", err)
		}

		shared.InvalidateCaches(ctx, s.cache, shared.BuildCacheKey(constant.CacheKeyTagList, user))
	} else {
		tag, err = s.findOwned(ctx, req.TagID, user)
		if err != nil {
			return res, err
		}

		attached, err = s.repo.Attach(ctx, todoID, tag.ID)
		if err != nil {
			log.Error().Err(err).Msg("failed to attach tag")

			return res, fmt.Errorf("failed to attach tag: %w", err)
		}
	}

	if attached {
		s.invalidateTodos(ctx, user)
	}

	res.TodoID = todoID
	res.Attached = attached
	res.Tag.FromModel(tag)

	return res, nil
}

func (s *serviceImpl) Detach(ctx context.Context, todoID, tagID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DetachTag")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user := shared.UserIDFromContext(ctx)

	if err = s.ensureTodoOwned(ctx, todoID, user); err != nil {
		return err
	}

	if _, err = s.findOwned(ctx, tagID, user); err != nil {
		return err
	}

	detached, err := s.repo.Detach(ctx, todoID, tagID)
	if err != nil {
		log.Error().Err(err).Msg("failed to detach tag")

		return fmt.Errorf("failed to detach tag: %w", err)
	}

	if !detached {
		return failure.NotFound(msgTagNotAttached) // nolint:wrapcheck
	}

	s.invalidateTodos(ctx, user)

	return nil
}

func (s *serviceImpl) findOwned(ctx context.Context, id, user string) (model.Tag, error) {
	tag, err := s.repo.Get(ctx, shared.FilterByIDAndOwner(id, model.FieldID, user, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get tag")

		return tag, fmt.Errorf("failed to get tag: %w", err)
	}

	if tag.ID == "" {
		return tag, failure.NotFound(msgTagNotFound) // nolint:wrapcheck
	}

	return tag, nil
}

func (s *serviceImpl) ensureTodoOwned(ctx context.Context, todoID, user string) error {
	exist, err := s.todoRepo.Exist(ctx, shared.FilterByIDAndOwner(todoID, todoModel.FieldID, user, todoModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if todo exists")

		return fmt.Errorf("failed to check if todo exists: %w", err)
	}

	if !exist {
		return failure.NotFound(msgTodoNotFound) // nolint:wrapcheck
	}

	return nil
}

// invalidate clears the tag listings and the todo listing, which embeds tags.
func (s *serviceImpl) invalidate(ctx context.Context, user string) {
	shared.InvalidateCaches(ctx, s.cache, shared.BuildCacheKey(constant.CacheKeyTagList, user))
	s.invalidateTodos(ctx, user)
}

func (s *serviceImpl) invalidateTodos(ctx context.Context, user string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(constant.CacheKeyTodoList, user)); err != nil {
		log.Error().Err(err).Msg("failed to delete todos from cache")
	}
}
