package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/config"
	"taskboard/infras/otel/mocks"
	"taskboard/shared/cache"
	"taskboard/transport/http/middleware"
)

func newLimitedHandler(t *testing.T, enable bool, maxRequests int) (http.Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = maxRequests
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return app.RateLimit()(ok), mr
}

func send(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("X-Forwarded-For", ip)
	req.Header.Set("User-Agent", "taskboard-test")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	t.Run("blocks after the window budget is spent", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, true, 2)

		first := send(handler, "10.0.0.1")
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)

		blocked := send(handler, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
		assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
		assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
		assert.JSONEq(t, `{"success":false,"error":"REQUEST LIMIT EXCEEDED"}`, blocked.Body.String())

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.2").Code, "other clients keep their own budget")

		keys := mr.Keys()
		require.Len(t, keys, 2)
		assert.Contains(t, keys, "limiter:10.0.0.1:taskboard-test")
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, true, 1)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1").Code)

		mr.FastForward(61 * time.Second)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
	})

	t.Run("steady traffic does not extend the window", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, true, 2)

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)

		mr.FastForward(59 * time.Second)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)

		mr.FastForward(2 * time.Second)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1").Code)
	})

	t.Run("peer address without proxy headers", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, true, 5)

		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.RemoteAddr = "192.0.2.7:51234"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"limiter:192.0.2.7:unknown"}, mr.Keys())
	})

	t.Run("redis outage lets requests through", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, true, 1)
		mr.Close()

		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
	})

	t.Run("disabled", func(t *testing.T) {
		handler, mr := newLimitedHandler(t, false, 1)

		for range 3 {
			assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1").Code)
		}

		assert.Empty(t, mr.Keys())
	})
}
