package todo

import (
	"context"
	"net/http"
	"taskboard/infras/otel"
	"taskboard/internal/domains/todo/model/dto"
	"taskboard/internal/domains/todo/service"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/validator"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Todo
	otel    otel.Otel
}

func New(service service.Todo, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/todos", func(r chi.Router) {
		r.Post("/", handler.CreateTodo)
		r.Get("/", handler.GetTodos)
		r.Get("/{id}", handler.GetTodoByID)
		r.Patch("/{id}", handler.UpdateTodo)
		r.Delete("/{id}", handler.DeleteTodo)
	})
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
}

// CreateTodo handles the creation of a new todo item.
// @Summary Create a new todo item
// @Description Create a todo for the authenticated user. It starts uncompleted and without tags.
// @Tags Todo
// @Accept json
// @Produce json
// @Param request body dto.CreateTodoRequest true "Create Todo Request"
// @Success 201 {object} response.Data[dto.TodoResponse] "Todo created successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos [post]
// @Security BearerAuth
func (handler *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CreateTodo")
	defer scope.End()

	req := dto.CreateTodoRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	todo, err := handler.service.Create(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to create todo")

		return
	}

	scope.AddEvent("Todo created successfully by user " + shared.UserIDFromContext(ctx))

	response.WithData(w, http.StatusCreated, todo, "Todo created successfully")
}

// GetTodos retrieves the todos of the authenticated user with their tags.
// @Summary Get all todo items
// @Description Oldest first. Every todo carries a tags array, empty when untagged.
// @Tags Todo
// @Produce json
// @Success 200 {array} dto.TodoResponse "List of todo items"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos [get]
// @Security BearerAuth
func (handler *Handler) GetTodos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetTodos")
	defer scope.End()

	todos, err := handler.service.GetAll(ctx)
	if err != nil {
		response.Fail(w, scope, err, "failed to get todos")

		return
	}

	scope.AddEvent("Todos retrieved successfully")

	response.WithJSON(w, http.StatusOK, todos)
}

// GetTodoByID retrieves a todo item by its ID.
// @Summary Get a todo item by ID
// @Tags Todo
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} dto.TodoResponse "Todo item details"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetTodoByID")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTodoNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid todo ID")

		return
	}

	todo, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get todo by ID")

		return
	}

	scope.AddEvent("Todo retrieved successfully")

	response.WithJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update to a todo.
// @Summary Update a todo item by ID
// @Description Send at least one of title, description, completed, startAt, dueAt. A null description, startAt or dueAt clears it.
// @Tags Todo
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body dto.UpdateTodoRequest true "Update Todo Request"
// @Success 200 {object} response.Data[dto.TodoResponse] "Todo updated successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UpdateTodo")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTodoNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid todo ID")

		return
	}

	req := dto.UpdateTodoRequest{}
	if err = validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	todo, err := handler.service.Update(ctx, req, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to update todo")

		return
	}

	scope.AddEvent("Todo updated successfully by user " + shared.UserIDFromContext(ctx))

	response.WithData(w, http.StatusOK, todo, "Todo updated successfully")
}

// DeleteTodo deletes a todo item by its ID.
// @Summary Delete a todo item by ID
// @Description Its tag associations are removed with it.
// @Tags Todo
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} response.Data[dto.TodoResponse] "Todo deleted successfully"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/todos/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteTodo")
	defer scope.End()

	id, err := shared.PathID(r, constant.RequestParamID, constant.ResponseErrorTodoNotFound)
	if err != nil {
		response.Fail(w, scope, err, "invalid todo ID")

		return
	}

	todo, err := handler.service.Delete(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to delete todo")

		return
	}

	scope.AddEvent("Todo deleted successfully by user " + shared.UserIDFromContext(ctx))

	response.WithData(w, http.StatusOK, todo, "Todo deleted successfully")
}
