package repository_test

import (
	"context"
	"testing"
	"time"

	"taskboard/infras/otel/mocks"
	"taskboard/infras/postgres"
	"taskboard/internal/domains/tag/model"
	"taskboard/internal/domains/tag/repository"
	"taskboard/shared"
	gDto "taskboard/shared/dto"
	gModel "taskboard/shared/model"
	gRepo "taskboard/shared/repository"
	"taskboard/shared/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTag(userID, name string) model.Tag {
	return model.Tag{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Metadata: gModel.Metadata{CreatedAt: base, UpdatedAt: base},
	}
}

func insertTodo(t *testing.T, conn *postgres.Connection, userID string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Write.Exec(
		`INSERT INTO todos (id, user_id, title, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, "Buy milk", false, base, base,
	)
	require.NoError(t, err)

	return id
}

func TestTagRepository_InsertDuplicateName(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	alice := testdb.CreateUser(t, conn)
	bob := testdb.CreateUser(t, conn)

	require.NoError(t, repo.Insert(ctx, newTag(alice, "work")))

	err := repo.Insert(ctx, newTag(alice, "work"))
	require.Error(t, err)
	assert.True(t, gRepo.IsUniqueViolation(err))

	assert.NoError(t, repo.Insert(ctx, newTag(bob, "work")), "names are unique per user only")
}

func TestTagRepository_AttachIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)
	todoID := insertTodo(t, conn, user)
	tag := newTag(user, "home")
	require.NoError(t, repo.Insert(ctx, tag))

	attached, err := repo.Attach(ctx, todoID, tag.ID)
	require.NoError(t, err)
	assert.True(t, attached)

	attached, err = repo.Attach(ctx, todoID, tag.ID)
	require.NoError(t, err)
	assert.False(t, attached)

	assert.Equal(t, 1, testdb.Count(t, conn, "todo_tags", "todo_id = ? AND tag_id = ?", todoID, tag.ID))
}

func TestTagRepository_Detach(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)
	todoID := insertTodo(t, conn, user)
	tag := newTag(user, "home")
	require.NoError(t, repo.Insert(ctx, tag))

	_, err := repo.Attach(ctx, todoID, tag.ID)
	require.NoError(t, err)

	detached, err := repo.Detach(ctx, todoID, tag.ID)
	require.NoError(t, err)
	assert.True(t, detached)

	detached, err = repo.Detach(ctx, todoID, tag.ID)
	require.NoError(t, err)
	assert.False(t, detached)
}

func TestTagRepository_DeleteTagRemovesAssociations(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)
	todoID := insertTodo(t, conn, user)
	tag := newTag(user, "home")
	require.NoError(t, repo.Insert(ctx, tag))

	_, err := repo.Attach(ctx, todoID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, shared.FilterByIDAndOwner(tag.ID, model.FieldID, user, model.TableName)))

	assert.Equal(t, 0, testdb.Count(t, conn, "todo_tags", "tag_id = ?", tag.ID))
	assert.Equal(t, 1, testdb.Count(t, conn, "todos", "id = ?", todoID))
}

func TestTagRepository_FindOrCreateAndAttach(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)
	firstTodo := insertTodo(t, conn, user)
	secondTodo := insertTodo(t, conn, user)

	created, attached, err := repo.FindOrCreateAndAttach(ctx, newTag(user, "errands"), firstTodo)
	require.NoError(t, err)
	assert.True(t, attached)
	assert.Equal(t, "errands", created.Name)

	reused, attached, err := repo.FindOrCreateAndAttach(ctx, newTag(user, "errands"), secondTodo)
	require.NoError(t, err)
	assert.True(t, attached)
	assert.Equal(t, created.ID, reused.ID, "existing tag is reused")

	_, attached, err = repo.FindOrCreateAndAttach(ctx, newTag(user, "errands"), secondTodo)
	require.NoError(t, err)
	assert.False(t, attached)

	assert.Equal(t, 1, testdb.Count(t, conn, "tags", "user_id = ?", user))
	assert.Equal(t, 2, testdb.Count(t, conn, "todo_tags", "tag_id = ?", created.ID))
}

func TestTagRepository_FindOrCreateAndAttach_NameTakenConcurrently(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)
	todoID := insertTodo(t, conn, user)

	red := "#ff0000"
	winner := newTag(user, "urgent")
	winner.Color = &red
	require.NoError(t, repo.Insert(ctx, winner))

	loser := newTag(user, "urgent")
	tag, attached, err := repo.FindOrCreateAndAttach(ctx, loser, todoID)
	require.NoError(t, err, "a name created by another request is reused, not a conflict")
	assert.True(t, attached)
	assert.Equal(t, winner.ID, tag.ID)
	require.NotNil(t, tag.Color)
	assert.Equal(t, red, *tag.Color)

	assert.Equal(t, 1, testdb.Count(t, conn, "tags", "user_id = ?", user))
	assert.Equal(t, 1, testdb.Count(t, conn, "todo_tags", "tag_id = ?", winner.ID))
}

func TestTagRepository_FindOrCreateAndAttach_RollsBack(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)

	_, _, err := repo.FindOrCreateAndAttach(ctx, newTag(user, "orphan"), uuid.NewString())
	require.Error(t, err, "attaching to a missing todo violates the foreign key")

	assert.Equal(t, 0, testdb.Count(t, conn, "tags", "user_id = ?", user), "the new tag is rolled back")
}

func TestTagRepository_GetAllOwnedOnly(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	alice := testdb.CreateUser(t, conn)
	bob := testdb.CreateUser(t, conn)

	require.NoError(t, repo.Insert(ctx, newTag(alice, "work")))
	require.NoError(t, repo.Insert(ctx, newTag(alice, "home")))
	require.NoError(t, repo.Insert(ctx, newTag(bob, "gym")))

	params := gDto.QueryParams{SortBy: model.FieldName, SortDir: gDto.SortDirAsc}
	tags, err := repo.GetAll(ctx, params, shared.FilterByOwner(alice, model.TableName))
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, "home", tags[0].Name)
	assert.Equal(t, "work", tags[1].Name)
}

func TestTagRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	conn := testdb.New(t)
	repo := repository.New(conn, mocks.NewOtel())

	user := testdb.CreateUser(t, conn)

	for _, name := range []string{"100% done", "1000 done", "to_do", "todo"} {
		require.NoError(t, repo.Insert(ctx, newTag(user, name)))
	}

	search := func(term string) []string {
		params := gDto.QueryParams{SortBy: model.FieldName, SortDir: gDto.SortDirAsc}
		filter := shared.FilterByOwner(user, model.TableName).With(gDto.Like(model.TableName, model.FieldName, term))

		tags, err := repo.GetAll(ctx, params, filter)
		require.NoError(t, err)

		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			names = append(names, tag.Name)
		}

		return names
	}

	assert.Equal(t, []string{"100% done"}, search("0%"))
	assert.Equal(t, []string{"to_do"}, search("o_"))
	assert.Equal(t, []string{"100% done", "1000 done"}, search("DONE"), "search is case-insensitive")
}
