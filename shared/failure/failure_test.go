package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"taskboard/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequestFromString("title is required"), code: http.StatusBadRequest, message: "title is required"},
		{name: "bad request from error", err: failure.BadRequest(errors.New("invalid json")), code: http.StatusBadRequest, message: "invalid json"},
		{name: "unauthorized", err: failure.Unauthorized("Token has expired"), code: http.StatusUnauthorized, message: "Token has expired"},
		{name: "forbidden", err: failure.Forbidden("User account is deactivated"), code: http.StatusForbidden, message: "User account is deactivated"},
		{name: "not found", err: failure.NotFound("Todo not found"), code: http.StatusNotFound, message: "Todo not found"},
		{name: "conflict", err: failure.Conflict("Tag name already exists"), code: http.StatusConflict, message: "Tag name already exists"},
		{name: "not owner", err: failure.ErrNotOwner, code: http.StatusForbidden, message: "You don't have permission to access this resource"},
		{name: "forbidden role", err: failure.ErrForbidden, code: http.StatusForbidden, message: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fail *failure.Failure

			assert.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.code, fail.Code)
			assert.Equal(t, tt.message, fail.Error())
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "failure", err: failure.NotFound("Tag not found"), code: http.StatusNotFound},
		{name: "wrapped failure", err: fmt.Errorf("attach: %w", failure.Conflict("Tag name already exists")), code: http.StatusConflict},
		{name: "plain error", err: errors.New("connection refused"), code: http.StatusInternalServerError},
		{name: "nil", err: nil, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", failure.Unauthorized("Invalid refresh token"))

	assert.True(t, failure.Is(wrapped, http.StatusUnauthorized))
	assert.False(t, failure.Is(wrapped, http.StatusForbidden))
	assert.False(t, failure.Is(errors.New("boom"), http.StatusInternalServerError))
	assert.False(t, failure.Is(nil, http.StatusInternalServerError))
	assert.True(t, failure.Is(&failure.Failure{Code: http.StatusInternalServerError, Message: "down"}, http.StatusInternalServerError))
}
