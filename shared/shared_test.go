package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"taskboard/shared"
	"taskboard/shared/cache/mocks"
	"taskboard/shared/constant"
	"taskboard/shared/dto"
	"taskboard/shared/failure"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type todoPatch struct {
	Title       string                  `db:"title"`
	Priority    *int                    `db:"priority"`
	Completed   *bool                   `db:"completed"`
	Description dto.Optional[string]    `db:"description"`
	DueAt       dto.Optional[time.Time] `db:"due_at"`
	Token       string                  `db:"-"`
	Scratch     string
}

func TestTransformFields(t *testing.T) {
	done := false
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("zero values are skipped", func(t *testing.T) {
		fields := shared.TransformFields(todoPatch{Title: "Write report", Token: "secret", Scratch: "x"})

		assert.Equal(t, "Write report", fields["title"])
		assert.NotContains(t, fields, "priority")
		assert.NotContains(t, fields, "completed")
		assert.NotContains(t, fields, "description")
		assert.NotContains(t, fields, "-")
		assert.Len(t, fields, 2)
		assert.IsType(t, time.Time{}, fields[constant.FieldUpdatedAt])
	})

	t.Run("pointers are kept as sent", func(t *testing.T) {
		fields := shared.TransformFields(todoPatch{Completed: &done})

		require.Contains(t, fields, "completed")
		assert.Equal(t, &done, fields["completed"])
	})

	t.Run("optional values", func(t *testing.T) {
		fields := shared.TransformFields(todoPatch{
			Description: dto.Null[string](),
			DueAt:       dto.Some(due),
		})

		require.Contains(t, fields, "description")
		assert.Nil(t, fields["description"])
		assert.Equal(t, due, fields["due_at"])
	})
}

func TestOwnershipFilters(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.FilterGroup
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "by id",
			filter:    shared.FilterByID("tag-1", "id", "tags"),
			wantWhere: "(tags.id = :id)",
			wantArgs:  map[string]any{"id": "tag-1"},
		},
		{
			name:      "by owner",
			filter:    shared.FilterByOwner("user-1", "tags"),
			wantWhere: "(tags.user_id = :user_id)",
			wantArgs:  map[string]any{"user_id": "user-1"},
		},
		{
			name:      "by id and owner",
			filter:    shared.FilterByIDAndOwner("todo-1", "id", "user-1", "todos"),
			wantWhere: "(todos.id = :id AND todos.user_id = :user_id)",
			wantArgs:  map[string]any{"id": "todo-1", "user_id": "user-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	assert.Equal(t, "user-1", shared.UserIDFromContext(ctx))
	assert.Empty(t, shared.UserIDFromContext(context.Background()))
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "todo:list:user-1", shared.BuildCacheKey(constant.CacheKeyTodoList, "user-1"))
	assert.Equal(t, "limiter", shared.BuildCacheKey("limiter"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "name", SortDir: dto.SortDirAsc}
	key := func(params dto.QueryParams, user string) string {
		return shared.BuildCacheKeyWithQuery(constant.CacheKeyTagList, params, shared.FilterByOwner(user, "tags"), user)
	}

	first := key(params, "user-1")

	assert.Equal(t, first, key(params, "user-1"))
	assert.NotEqual(t, first, key(params, "user-2"))
	assert.True(t, strings.HasPrefix(first, "tag:list:user-1:"), first)

	searched := shared.BuildCacheKeyWithQuery(constant.CacheKeyTagList, params,
		shared.FilterByOwner("user-1", "tags").With(dto.Like("tags", "name", "home")), "user-1")
	assert.NotEqual(t, first, searched)

	nextPage := params
	nextPage.Page = 2
	assert.NotEqual(t, first, key(nextPage, "user-1"))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "tag:list:user-1*").Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "tag:list:user-1")

	// a failing clear is swallowed
	redisCache.EXPECT().Clear(gomock.Any(), "todo:list:user-1*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), redisCache, "todo:list:user-1")
}

func TestPathID(t *testing.T) {
	request := func(id string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)

		r := httptest.NewRequest(http.MethodGet, "/api/tags/x", nil)

		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := shared.PathID(request("3f1d2a9c-6b4e-4d8a-9c0f-1e2b3c4d5e6f"), "id", "Tag not found")
	require.NoError(t, err)
	assert.Equal(t, "3f1d2a9c-6b4e-4d8a-9c0f-1e2b3c4d5e6f", id)

	for _, bad := range []string{"abc", "1", "3f1d2a9c-6b4e-4d8a-9c0f", "' OR 1=1 --"} {
		_, err = shared.PathID(request(bad), "id", "Tag not found")

		require.Error(t, err, bad)
		assert.True(t, failure.Is(err, http.StatusNotFound), bad)
		assert.Equal(t, "Tag not found", err.Error())
	}
}
