package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"taskboard/config"
	"taskboard/infras/jwt"
	jwtMocks "taskboard/infras/jwt/mocks"
	"taskboard/infras/otel/mocks"
	"taskboard/permissions"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/transport/http/middleware"
)

func newAuthRouter(t *testing.T, policy *permissions.Policy) (http.Handler, *jwtMocks.MockJWT) {
	ctrl := gomock.NewController(t)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	mw := middleware.NewAuthRoleMiddleware(mockJWT, mocks.NewOtel(), policy, &config.Config{})

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(mw.Auth, mw.RBAC)

		r.Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/todos/{id}", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(shared.UserIDFromContext(r.Context())))
		})
	})

	return router, mockJWT
}

func testPolicy(t *testing.T) *permissions.Policy {
	t.Helper()

	policy, err := permissions.Load([]byte(`{"rules":[
		{"path":"/api/auth/login","methods":["POST"],"public":true},
		{"path":"/api/todos/{id}","methods":["GET"],"roles":["user"]}
	]}`))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}

	return policy
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		header    string
		setupMock func(m *jwtMocks.MockJWT)
		wantCode  int
		wantBody  string
	}{
		{
			name:     "public endpoint needs no token",
			method:   http.MethodPost,
			path:     "/api/auth/login",
			wantCode: http.StatusOK,
		},
		{
			name:     "missing header",
			method:   http.MethodGet,
			path:     "/api/todos/1",
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Missing authorization header"}`,
		},
		{
			name:     "not a bearer token",
			method:   http.MethodGet,
			path:     "/api/todos/1",
			header:   "Basic abc",
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Invalid authorization header format"}`,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/api/todos/1",
			header: "Bearer expired",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Token has expired"}`,
		},
		{
			name:   "claims without a user",
			method: http.MethodGet,
			path:   "/api/todos/1",
			header: "Bearer empty",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("empty", jwt.AccessToken).Return(&jwt.Claims{Email: "a@b.c"}, nil)
			},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Invalid token claims"}`,
		},
		{
			name:   "valid token puts the user in context",
			method: http.MethodGet,
			path:   "/api/todos/1",
			header: "Bearer good",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{
					UserID: "user-1",
					Email:  "a@b.c",
					Role:   constant.RoleUser,
				}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:   "role outside the allowed list",
			method: http.MethodGet,
			path:   "/api/todos/1",
			header: "Bearer guest",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("guest", jwt.AccessToken).Return(&jwt.Claims{
					UserID: "user-1",
					Email:  "a@b.c",
					Role:   constant.ContextGuest,
				}, nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockJWT := newAuthRouter(t, testPolicy(t))
			if tt.setupMock != nil {
				tt.setupMock(mockJWT)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}

			if tt.name == "valid token puts the user in context" {
				assert.Equal(t, "user-1", rec.Body.String())
			}
		})
	}
}

func TestRBACWithoutPolicy(t *testing.T) {
	router, mockJWT := newAuthRouter(t, nil)
	mockJWT.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{
		UserID: "user-1",
		Email:  "a@b.c",
		Role:   constant.RoleUser,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/todos/1", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipRolesAdmitsAnyRole(t *testing.T) {
	policy, err := permissions.Load([]byte(`{"skip_roles":true,"rules":[{"path":"/api/todos/{id}","methods":["GET"],"roles":["admin"]}]}`))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}

	router, mockJWT := newAuthRouter(t, policy)
	mockJWT.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{
		UserID: "user-1",
		Email:  "a@b.c",
		Role:   constant.RoleUser,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/todos/1", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}
