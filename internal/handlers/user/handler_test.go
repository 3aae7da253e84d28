package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "taskboard/infras/otel/mocks"
	userMocks "taskboard/internal/domains/user/mocks"
	"taskboard/internal/domains/user/model/dto"
	"taskboard/internal/handlers/user"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
)

const testUserID = "user-id-123"

func newRouter(t *testing.T) (http.Handler, *userMocks.MockUserService) {
	ctrl := gomock.NewController(t)
	svc := userMocks.NewMockUserService(ctrl)

	handler := user.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), constant.ContextKeyUserID, testUserID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})

		handler.Router(r)
	})

	return router, svc
}

func serve(router http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/users/me", strings.NewReader(body))
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestGetProfile(t *testing.T) {
	router, svc := newRouter(t)

	name := "Jane"
	svc.EXPECT().Get(gomock.Any()).Return(dto.UserResponse{ID: testUserID, Email: "jane@example.com", FullName: &name}, nil)

	rec := serve(router, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, testUserID, body["id"])
	assert.Equal(t, "Jane", body["fullName"])
	assert.NotContains(t, body, "password")
}

func TestUpdateProfile(t *testing.T) {
	t.Run("renamed", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
				require.True(t, req.FullName.Set)
				assert.Equal(t, "Jane Doe", *req.FullName.Value)

				return dto.UserResponse{ID: testUserID}, nil
			})

		rec := serve(router, http.MethodPatch, `{"fullName":"Jane Doe"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Profile updated successfully", decode(t, rec)["message"])
	})

	t.Run("nothing to update", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Update(gomock.Any(), gomock.Any()).Return(dto.UserResponse{}, failure.BadRequestFromString("No fields to update"))

		rec := serve(router, http.MethodPatch, `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Delete(gomock.Any()).Return(nil)

		rec := serve(router, http.MethodDelete, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Account deleted successfully", decode(t, rec)["message"])
	})

	t.Run("already gone", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Delete(gomock.Any()).Return(failure.NotFound("User"))

		rec := serve(router, http.MethodDelete, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
