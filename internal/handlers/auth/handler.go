package auth

import (
	"context"
	"net/http"
	"taskboard/infras/otel"
	"taskboard/internal/domains/auth/model/dto"
	"taskboard/internal/domains/auth/service"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/validator"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh-token", handler.RefreshToken)
		r.Post("/change-password", handler.ChangePassword)
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user with the provided details.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Message "User registered successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	register := func(ctx context.Context, req dto.RegisterRequest) (struct{}, error) {
		return struct{}{}, handler.service.Register(ctx, req)
	}

	if _, ok := serve(handler, w, r, "Register", "register user", register); ok {
		response.WithMessage(w, http.StatusCreated, "User registered successfully")
	}
}

// Login handles user login
// @Summary Login a user
// @Description Login a user with the provided credentials.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} dto.LoginResponse "User logged in successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if res, ok := serve(handler, w, r, "Login", "login user", handler.service.Login); ok {
		response.WithJSON(w, http.StatusOK, res)
	}
}

// RefreshToken handles token refresh
// @Summary Refresh user token
// @Description Exchange a refresh token for a new token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} dto.RefreshTokenResponse "Token refreshed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if res, ok := serve(handler, w, r, "RefreshToken", "refresh token", handler.service.RefreshToken); ok {
		response.WithJSON(w, http.StatusOK, res)
	}
}

// ChangePassword handles password change of the authenticated user
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message "Password changed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	change := func(ctx context.Context, req dto.ChangePasswordRequest) (struct{}, error) {
		return struct{}{}, handler.service.ChangePassword(ctx, req)
	}

	if _, ok := serve(handler, w, r, "ChangePassword", "change password", change); ok {
		response.WithMessage(w, http.StatusOK, "Password changed successfully")
	}
}

// serve decodes and validates the body into Req, then runs call in a handler
// scope. On failure the error response is already written and ok is false.
func serve[Req, Res any](
	handler *Handler, w http.ResponseWriter, r *http.Request,
	op, action string, call func(context.Context, Req) (Res, error),
) (res Res, ok bool) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
	defer scope.End()

	var req Req

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return res, false
	}

	res, err := call(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to "+action)

		return res, false
	}

	if user := shared.UserIDFromContext(ctx); user != "" {
		scope.SetAttribute("user.id", user)
	}

	scope.AddEvent(op + " done")

	return res, true
}
