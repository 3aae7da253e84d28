package shared

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"taskboard/shared/cache"
	"taskboard/shared/constant"
	"taskboard/shared/dto"
	"taskboard/shared/failure"
	"taskboard/shared/timezone"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type optionalField interface {
	IsSet() bool
	Interface() any
}

// TransformFields converts the fields of a struct into a map of updated fields.
// Zero fields are skipped; dto.Optional fields are kept whenever they were sent, null included.
func TransformFields(data interface{}) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		if opt, ok := field.Interface().(optionalField); ok {
			if opt.IsSet() {
				updatedFields[fieldName] = opt.Interface()
			}

			continue
		}

		if field.IsZero() {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldUpdatedAt] = timezone.Now()

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.And(dto.Eq(table, fieldID, id))
}

// FilterByOwner scopes a lookup to rows owned by userID.
func FilterByOwner(userID, table string) dto.FilterGroup {
	return dto.And(dto.Eq(table, constant.FieldUserID, userID))
}

// FilterByIDAndOwner matches a single row by id that must also belong to userID.
func FilterByIDAndOwner(id, fieldID, userID, table string) dto.FilterGroup {
	return FilterByID(id, fieldID, table).With(dto.Eq(table, constant.FieldUserID, userID))
}

// PathID returns the path parameter name of r when it is a uuid. Anything else
// cannot name a row and is answered with NotFound(notFound).
func PathID(r *http.Request, name, notFound string) (string, error) {
	id := chi.URLParam(r, name)
	if err := uuid.Validate(id); err != nil {
		return "", failure.NotFound(notFound) //nolint:wrapcheck
	}

	return id, nil
}

// UserIDFromContext returns the authenticated user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) string {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return user
}

func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), constant.CacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key from the query params and filters of a list request.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup, parts ...string) string {
	where, args := filter.GetWhereClause()

	argKeys := make([]string, 0, len(args))
	for key := range args {
		argKeys = append(argKeys, key)
	}

	sort.Strings(argKeys)

	argParts := make([]string, 0, len(argKeys))
	for _, key := range argKeys {
		argParts = append(argParts, fmt.Sprintf("%s=%v", key, args[key]))
	}

	query := fmt.Sprintf("p%d-l%d-%s-%s-%s-%s", params.Page, params.Limit, params.SortBy, params.SortDir, where, strings.Join(argParts, ","))

	return BuildCacheKey(prefix, append(parts, query)...)
}

// InvalidateCaches removes every key under prefix. Failures are logged only.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
