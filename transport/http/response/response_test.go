package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/shared/failure"
	"taskboard/transport/http/response"
)

func TestDefaultErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantBody string
	}{
		{
			name:     "request limit exceeded",
			write:    response.WithRequestLimitExceeded,
			wantCode: http.StatusTooManyRequests,
			wantBody: `{"success":false,"error":"REQUEST LIMIT EXCEEDED"}`,
		},
		{
			name:     "preparing shutdown",
			write:    response.WithPreparingShutdown,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"success":false,"error":"SERVER PREPARING TO SHUT DOWN"}`,
		},
		{
			name:     "unhealthy",
			write:    response.WithUnhealthy,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"success":false,"error":"SERVER UNHEALTHY"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWithError(t *testing.T) {
	t.Run("failure keeps its code and message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		response.WithError(rec, failure.NotFound("Tag not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"Tag not found"}`, rec.Body.String())
	})

	t.Run("plain errors are hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		response.WithError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
	})
}
