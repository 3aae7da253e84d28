package tag

import (
	"context"
	"net/http"
	"taskboard/infras/otel"
	"taskboard/internal/domains/tag/model/dto"
	"taskboard/internal/domains/tag/service"
	"taskboard/shared"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	"taskboard/shared/validator"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Tag
	otel    otel.Otel
}

func New(service service.Tag, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tags", func(r chi.Router) {
		r.Post("/", handler.CreateTag)
		r.Get("/", handler.GetTags)
		r.Get("/{id}", handler.GetTagByID)
		r.Patch("/{id}", handler.UpdateTag)
		r.Delete("/{id}", handler.DeleteTag)
	})

	router.Post("/todos/{id}/tags", handler.AttachTag)
	router.Delete("/todos/{id}/tags/{tagId}", handler.DetachTag)
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
}

// CreateTag creates a tag for the authenticated user.
// @Summary Create a tag
// @Description Tag names are unique per user.
// @Tags Tag
// @Accept json
// @Produce json
// @Param request body dto.CreateTagRequest true "Create Tag Request"
// @Success 201 {object} response.Data[dto.TagResponse] "Tag created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tags [post]
// @Security BearerAuth
func (handler *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CreateTag")
	defer scope.End()

	req := dto.CreateTagRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	tag, err := handler.service.Create(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to create tag")

		return
	}

	scope.AddEvent("Tag created successfully by user " + shared.UserIDFromContext(ctx))

	response.WithData(w, http.StatusCreated, tag, "Tag created successfully")
}

// GetTags lists the tags of the authenticated user.
// @Summary Get all tags
// @Tags Tag
// @Produce json
// @Param sort_by query string false "name or created_at"
// @Param sort_dir query string false "ASC or DESC"
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {array} dto.TagResponse "List of tags"
// @Failure 500 {object} response.Error
// @Router /api/tags [get]
// @Security BearerAuth
func (handler *Handler) GetTags(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetTags")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	tags, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		response.Fail(w, scope, err, "failed to get tags")

		return
	}

	response.WithJSON(w, http.StatusOK, tags)
}

// GetTagByID retrieves a tag by its ID.
// @Summary Get a tag by ID
// @Tags Tag
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} dto.TagResponse "Tag details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tags/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetTagByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetTagByID")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTagNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid tag ID")

		return
	}

	tag, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get tag by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, tag)
}

// UpdateTag renames or recolors a tag.
// @Summary Update a tag by ID
// @Description Send name, color or both. A null color clears it.
// @Tags Tag
// @Accept json
// @Produce json
// @Param id path string true "Tag ID"
// @Param request body dto.UpdateTagRequest true "Update Tag Request"
// @Success 200 {object} response.Data[dto.TagResponse] "Tag updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tags/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UpdateTag")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTagNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid tag ID")

		return
	}

	req := dto.UpdateTagRequest{}

	if err = validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	tag, err := handler.service.Update(ctx, req, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to update tag")

		return
	}

	response.WithData(w, http.StatusOK, tag, "Tag updated successfully")
}

// DeleteTag deletes a tag and detaches it from every todo.
// @Summary Delete a tag by ID
// @Tags Tag
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} response.Data[dto.TagResponse] "Tag deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tags/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteTag")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTagNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid tag ID")

		return
	}

	tag, err := handler.service.Delete(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to delete tag")

		return
	}

	response.WithData(w, http.StatusOK, tag, "Tag deleted successfully")
}

// AttachTag attaches a tag to a todo.
// @Summary Attach a tag to a todo
// @Description Reference an existing tag with tagId, or send a name to find or create the tag first. Attaching twice is not an error.
// @Tags Tag
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body dto.AttachTagRequest true "Attach Tag Request"
// @Success 201 {object} response.Data[dto.AttachTagResponse] "Tag attached to todo"
// @Success 200 {object} response.Data[dto.AttachTagResponse] "Tag already attached to todo"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos/{id}/tags [post]
// @Security BearerAuth
func (handler *Handler) AttachTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "AttachTag")
	defer scope.End()

	todoID, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTodoNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid todo ID")

		return
	}

	req := dto.AttachTagRequest{}

	if err = validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Attach(ctx, todoID, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to attach tag")

		return
	}

	if !res.Attached {
		response.WithData(w, http.StatusOK, res, "Tag already attached to todo")

		return
	}

	response.WithData(w, http.StatusCreated, res, "Tag attached to todo")
}

// DetachTag removes a tag from a todo.
// @Summary Detach a tag from a todo
// @Tags Tag
// @Produce json
// @Param id path string true "Todo ID"
// @Param tagId path string true "Tag ID"
// @Success 200 {object} response.Message "Tag detached from todo"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos/{id}/tags/{tagId} [delete]
// @Security BearerAuth
func (handler *Handler) DetachTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DetachTag")
	defer scope.End()

	todoID, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTodoNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid todo ID")

		return
	}

	tagID, err := shared.PathID(r, constant.RequestParamTagID, constant.ResponseErrorTagNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid tag ID")

		return
	}

	if err = handler.service.Detach(ctx, todoID, tagID); err != nil {
		response.Fail(w, scope, err, "failed to detach tag")

		return
	}

	scope.AddEvent("Tag " + tagID + " detached from todo " + todoID)

	response.WithMessage(w, http.StatusOK, "Tag detached from todo")
}
