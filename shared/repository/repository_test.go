package repository_test

import (
	"context"
	"testing"
	"time"

	"taskboard/infras/otel/mocks"
	"taskboard/shared/dto"
	"taskboard/shared/model"
	"taskboard/shared/repository"
	"taskboard/shared/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagRow struct {
	ID     string  `db:"id"`
	UserID string  `db:"user_id"`
	Name   string  `db:"name"`
	Color  *string `db:"color"`
	model.Metadata
}

func newTagRepo(t *testing.T) (repository.Repository[tagRow], string) {
	t.Helper()

	conn := testdb.New(t)
	user := testdb.CreateUser(t, conn)

	return repository.NewRepository[tagRow]("tag", "tags", "id", conn, mocks.NewOtel()), user
}

func insertTags(t *testing.T, repo *repository.Repository[tagRow], user string, names ...string) []tagRow {
	t.Helper()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]tagRow, 0, len(names))

	for i, name := range names {
		at := base.Add(time.Duration(i) * time.Minute)
		row := tagRow{ID: uuid.NewString(), UserID: user, Name: name, Metadata: model.Metadata{CreatedAt: at, UpdatedAt: at}}

		require.NoError(t, repo.Insert(context.Background(), row))

		rows = append(rows, row)
	}

	return rows
}

func byOwner(user string) dto.FilterGroup {
	return dto.And(dto.Eq("tags", "user_id", user))
}

func TestRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	color := "#10B981"
	row := tagRow{ID: uuid.NewString(), UserID: user, Name: "home", Color: &color, Metadata: model.Metadata{CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}}
	require.NoError(t, repo.Insert(ctx, row))

	got, err := repo.Get(ctx, dto.And(dto.Eq("tags", "id", row.ID)))
	require.NoError(t, err)
	assert.Equal(t, "home", got.Name)
	require.NotNil(t, got.Color)
	assert.Equal(t, color, *got.Color)

	partial, err := repo.Get(ctx, dto.And(dto.Eq("tags", "id", row.ID)), "id", "name")
	require.NoError(t, err)
	assert.Equal(t, row.ID, partial.ID)
	assert.Empty(t, partial.UserID)

	missing, err := repo.Get(ctx, dto.And(dto.Eq("tags", "id", uuid.NewString())))
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}

func TestRepository_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	insertTags(t, &repo, user, "work")

	err := repo.Insert(ctx, tagRow{ID: uuid.NewString(), UserID: user, Name: "work"})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestRepository_Exist(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	insertTags(t, &repo, user, "work", "home", "errands")

	exist, err := repo.Exist(ctx, byOwner(user).With(dto.Eq("tags", "name", "home")))
	require.NoError(t, err)
	assert.True(t, exist)

	exist, err = repo.Exist(ctx, byOwner(user).With(dto.Eq("tags", "name", "gym")))
	require.NoError(t, err)
	assert.False(t, exist)

	_, err = repo.Exist(ctx, dto.FilterGroup{})
	require.ErrorIs(t, err, repository.ErrRequiredFilter)

	exist, err = repo.Exist(ctx, byOwner(uuid.NewString()))
	require.NoError(t, err)
	assert.False(t, exist, "tags of another user")
}

func TestRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	insertTags(t, &repo, user, "work", "home", "errands")

	names := func(rows []tagRow) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.Name)
		}

		return out
	}

	tests := []struct {
		name   string
		params dto.QueryParams
		want   []string
	}{
		{
			name:   "sorted by name",
			params: dto.QueryParams{SortBy: "name", SortDir: "asc"},
			want:   []string{"errands", "home", "work"},
		},
		{
			name:   "newest first",
			params: dto.QueryParams{SortBy: "created_at", SortDir: "DESC"},
			want:   []string{"errands", "home", "work"},
		},
		{
			name:   "second page",
			params: dto.QueryParams{Page: 2, Limit: 2, SortBy: "created_at", SortDir: "ASC"},
			want:   []string{"errands"},
		},
		{
			name:   "limit without page",
			params: dto.QueryParams{Limit: 1, SortBy: "name", SortDir: "DESC"},
			want:   []string{"work"},
		},
		{
			name:   "invalid direction falls back to ascending",
			params: dto.QueryParams{SortBy: "name", SortDir: "sideways"},
			want:   []string{"errands", "home", "work"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.GetAll(ctx, tt.params, byOwner(user))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}

	t.Run("unknown sort column is ignored", func(t *testing.T) {
		rows, err := repo.GetAll(ctx, dto.QueryParams{SortBy: "name; DROP TABLE tags", SortDir: "ASC"}, byOwner(user))
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("no match is an empty slice", func(t *testing.T) {
		rows, err := repo.GetAll(ctx, dto.QueryParams{}, byOwner(uuid.NewString()))
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	rows := insertTags(t, &repo, user, "work", "home")
	filter := dto.And(dto.Eq("tags", "id", rows[0].ID))

	require.NoError(t, repo.Update(ctx, map[string]any{"name": "office", "color": "#EF4444"}, filter))

	got, err := repo.Get(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "office", got.Name)
	require.NotNil(t, got.Color)
	assert.Equal(t, "#EF4444", *got.Color)

	untouched, err := repo.Get(ctx, dto.And(dto.Eq("tags", "id", rows[1].ID)))
	require.NoError(t, err)
	assert.Equal(t, "home", untouched.Name)

	require.ErrorIs(t, repo.Update(ctx, map[string]any{"name": "x"}, dto.FilterGroup{}), repository.ErrRequiredFilter)
	require.ErrorIs(t, repo.Update(ctx, nil, filter), repository.ErrNothingToSet)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, user := newTagRepo(t)

	rows := insertTags(t, &repo, user, "work", "home")

	require.NoError(t, repo.Delete(ctx, dto.And(dto.Eq("tags", "id", rows[0].ID))))
	require.ErrorIs(t, repo.Delete(ctx, dto.FilterGroup{}), repository.ErrRequiredFilter)

	remaining, err := repo.GetAll(ctx, dto.QueryParams{}, byOwner(user))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, rows[1].ID, remaining[0].ID)
}

func TestRepository_BuildWhereClause(t *testing.T) {
	repo, _ := newTagRepo(t)

	where, args := repo.BuildWhereClause(context.Background(), dto.FilterGroup{})
	assert.Empty(t, where)
	assert.NotNil(t, args)

	where, args = repo.BuildWhereClause(context.Background(), byOwner("u-1"))
	assert.Equal(t, "WHERE (tags.user_id = :user_id)", where)
	assert.Equal(t, map[string]any{"user_id": "u-1"}, args)
}
