//go:build wireinject
// +build wireinject

package di

import (
	"taskboard/config"
	"taskboard/infras/jwt"
	"taskboard/infras/otel"
	"taskboard/infras/postgres"
	"taskboard/infras/redis"
	"taskboard/infras/s3"
	"taskboard/permissions"
	"taskboard/shared/cache"
	"taskboard/transport/http"
	"taskboard/transport/http/middleware"
	"taskboard/transport/http/router"

	authService "taskboard/internal/domains/auth/service"
	mediaService "taskboard/internal/domains/media/service"
	tagRepository "taskboard/internal/domains/tag/repository"
	tagService "taskboard/internal/domains/tag/service"
	todoRepository "taskboard/internal/domains/todo/repository"
	todoService "taskboard/internal/domains/todo/service"
	userRepository "taskboard/internal/domains/user/repository"
	userService "taskboard/internal/domains/user/service"

	authHandler "taskboard/internal/handlers/auth"
	mediaHandler "taskboard/internal/handlers/media"
	tagHandler "taskboard/internal/handlers/tag"
	todoHandler "taskboard/internal/handlers/todo"
	userHandler "taskboard/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var todoDomain = wire.NewSet(
	todoRepository.New,
	todoService.New,
)

var tagDomain = wire.NewSet(
	tagRepository.New,
	tagService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var mediaDomain = wire.NewSet(
	mediaService.New,
)

var domains = wire.NewSet(
	todoDomain,
	tagDomain,
	userDomain,
	authDomain,
	mediaDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	todoHandler.New,
	tagHandler.New,
	userHandler.New,
	mediaHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
