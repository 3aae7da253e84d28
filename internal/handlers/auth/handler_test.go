package auth_test

import (
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
	authMocks "taskboard/internal/domains/auth/mocks"
	"taskboard/internal/domains/auth/model/dto"
	"taskboard/internal/handlers/auth"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
)

func newRouter(t *testing.T) (http.Handler, *authMocks.MockAuth) {
	ctrl := gomock.NewController(t)
	svc := authMocks.NewMockAuth(ctrl)

	handler := auth.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api", handler.Router)

	return router, svc
}

func post(router http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
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

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *authMocks.MockAuth)
		wantCode int
		wantKey  string
		wantText string
	}{
		{
			name: "registered",
			body: `{"email":"jane@example.com","password":"password123"}`,
			setup: func(svc *authMocks.MockAuth) {
				svc.EXPECT().
					Register(gomock.Any(), dto.RegisterRequest{Email: "jane@example.com", Password: "password123"}).
					Return(nil)
			},
			wantCode: http.StatusCreated,
			wantKey:  "message",
			wantText: "User registered successfully",
		},
		{
			name:     "short password",
			body:     `{"email":"jane@example.com","password":"short"}`,
			setup:    func(*authMocks.MockAuth) {},
			wantCode: http.StatusBadRequest,
			wantKey:  "error",
			wantText: "password must be greater than or equal to 8",
		},
		{
			name: "email taken",
			body: `{"email":"jane@example.com","password":"password123"}`,
			setup: func(svc *authMocks.MockAuth) {
				svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(failure.Conflict("User with this email already exists"))
			},
			wantCode: http.StatusConflict,
			wantKey:  "error",
			wantText: "User with this email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)
			tt.setup(svc)

			rec := post(router, "/api/auth/register", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantText, decode(t, rec)[tt.wantKey])
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("returns token pair", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			Login(gomock.Any(), dto.LoginRequest{Email: "jane@example.com", Password: "password123"}).
			Return(dto.LoginResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}, nil)

		rec := post(router, "/api/auth/login", `{"email":"jane@example.com","password":"password123"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "access", body["accessToken"])
		assert.Equal(t, "refresh", body["refreshToken"])
		assert.Equal(t, "Bearer", body["tokenType"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(dto.LoginResponse{}, failure.Unauthorized("Invalid email or password"))

		rec := post(router, "/api/auth/login", `{"email":"jane@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decode(t, rec)["error"])
	})
}

func TestRefreshToken(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().
		RefreshToken(gomock.Any(), dto.RefreshTokenRequest{RefreshToken: "refresh"}).
		Return(dto.RefreshTokenResponse{AccessToken: "next"}, nil)

	rec := post(router, "/api/auth/refresh-token", `{"refreshToken":"refresh"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "next", decode(t, rec)["accessToken"])
}

func TestChangePassword(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			ChangePassword(gomock.Any(), dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "password456"}).
			Return(nil)

		rec := post(router, "/api/auth/change-password", `{"currentPassword":"password123","newPassword":"password456"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Password changed successfully", decode(t, rec)["message"])
	})

	t.Run("same password", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := post(router, "/api/auth/change-password", `{"currentPassword":"password123","newPassword":"password123"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "newPassword must differ from CurrentPassword", decode(t, rec)["error"])
	})
}
