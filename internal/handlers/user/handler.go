package user

import (
	"context"
	"net/http"
	"taskboard/infras/otel"
	"taskboard/internal/domains/user/model/dto"
	"taskboard/internal/domains/user/service"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/validator"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Get("/me", handler.GetProfile)
		r.Patch("/me", handler.UpdateProfile)
		r.Delete("/me", handler.DeleteAccount)
	})
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
}

// GetProfile returns the authenticated user.
// @Summary Get my profile
// @Tags User
// @Produce json
// @Success 200 {object} dto.UserResponse "User profile"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /api/users/me [get]
// @Security BearerAuth
func (handler *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetProfile")
	defer scope.End()

	user, err := handler.service.Get(ctx)
	if err != nil {
		response.Fail(w, scope, err, "failed to get profile")

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user.
// @Summary Update my profile
// @Description A null or blank fullName clears it.
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Update Profile Request"
// @Success 200 {object} response.Data[dto.UserResponse] "Profile updated successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /api/users/me [patch]
// @Security BearerAuth
func (handler *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UpdateProfile")
	defer scope.End()

	req := dto.UpdateProfileRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	user, err := handler.service.Update(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update profile")

		return
	}

	response.WithData(w, http.StatusOK, user, "Profile updated successfully")
}

// DeleteAccount deletes the authenticated user together with their todos and tags.
// @Summary Delete my account
// @Tags User
// @Produce json
// @Success 200 {object} response.Message "Account deleted successfully"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /api/users/me [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteAccount")
	defer scope.End()

	if err := handler.service.Delete(ctx); err != nil {
		response.Fail(w, scope, err, "failed to delete account")

		return
	}

	scope.AddEvent("Account deleted by user " + shared.UserIDFromContext(ctx))

	response.WithMessage(w, http.StatusOK, "Account deleted successfully")
}
