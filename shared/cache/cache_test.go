package cache_test

import (
	"context"
	"fmt"
	"taskboard/infras/otel/mocks"
	"taskboard/shared/cache"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todo struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func newCache(t *testing.T) (cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisCache(client, mocks.NewOtel()), server
}

func TestSaveAndGet(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	want := []todo{{ID: "todo-1", Title: "Buy milk", Tags: []string{"home"}}}
	require.NoError(t, c.Save(ctx, "todo:list:user-1", want, 60))

	var got []todo
	require.NoError(t, c.Get(ctx, "todo:list:user-1", &got))
	assert.Equal(t, want, got)

	assert.Equal(t, 60*time.Second, server.TTL("todo:list:user-1"))

	server.FastForward(61 * time.Second)

	err := c.Get(ctx, "todo:list:user-1", &got)
	assert.ErrorIs(t, err, cache.Nil)
}

func TestSaveAndGet_String(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "limiter:1.2.3.4", "7", 10))

	raw, err := server.Get("limiter:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "7", raw)

	var got string
	require.NoError(t, c.Get(ctx, "limiter:1.2.3.4", &got))
	assert.Equal(t, "7", got)
}

func TestGet_Miss(t *testing.T) {
	c, _ := newCache(t)

	var got []todo
	err := c.Get(context.Background(), "tag:list:nobody", &got)

	assert.ErrorIs(t, err, cache.Nil)
	assert.Nil(t, got)
}

func TestGet_Corrupt(t *testing.T) {
	c, server := newCache(t)
	require.NoError(t, server.Set("todo:list:user-1", "{not json"))

	var got []todo
	err := c.Get(context.Background(), "todo:list:user-1", &got)

	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.Nil)
}

func TestSave_Unmarshalable(t *testing.T) {
	c, _ := newCache(t)

	err := c.Save(context.Background(), "bad", map[string]any{"ch": make(chan int)}, 10)

	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "todo:list:user-1", []todo{}, 60))
	require.NoError(t, c.Delete(ctx, "todo:list:user-1"))
	assert.False(t, server.Exists("todo:list:user-1"))

	// deleting a missing key is fine
	assert.NoError(t, c.Delete(ctx, "todo:list:user-1"))
}

func TestClear(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	// more keys than one scan batch
	for i := range 250 {
		require.NoError(t, server.Set(fmt.Sprintf("tag:list:user-1:p%d", i), "[]"))
	}

	require.NoError(t, server.Set("tag:list:user-2:p1", "[]"))
	require.NoError(t, server.Set("todo:list:user-1", "[]"))

	require.NoError(t, c.Clear(ctx, "tag:list:user-1*"))

	assert.Equal(t, []string{"tag:list:user-2:p1", "todo:list:user-1"}, server.Keys())

	require.NoError(t, c.Clear(ctx, "tag:list:user-1*"), "clearing an empty prefix")
	assert.Len(t, server.Keys(), 2)
}
