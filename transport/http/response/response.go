package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
	"taskboard/shared/logger"

	"github.com/rs/zerolog/log"
)

// Data is the envelope of a successful mutation.
type Data[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

type Error struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`
}

type Message struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Success: code < http.StatusBadRequest, Message: &message})
}

// WithData sends the envelope of a successful mutation: the affected resource and a message.
func WithData[T any](writer http.ResponseWriter, code int, data T, message string) {
	response(writer, code, Data[T]{Success: true, Data: &data, Message: &message})
}

// WithJSON sends the payload as is. Reads answer with the bare resource.
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, jsonPayload)
}

// WithError sends a response with an error message. Anything that is not a
// failure.Failure is logged and reported as a generic internal error.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) {
		logger.ErrorWithStack(err)

		errMsg := constant.ResponseErrorInternal
		response(writer, http.StatusInternalServerError, Error{Error: &errMsg})

		return
	}

	errMsg := fail.Message
	response(writer, fail.Code, Error{Error: &errMsg})
}

type errorTracer interface {
	TraceError(err error)
}

// Fail records err on the span, logs it under msg and writes the error
// response. Client errors are logged at warn level.
func Fail(writer http.ResponseWriter, span errorTracer, err error, msg string) {
	span.TraceError(err)

	event := log.Error()
	if code := failure.GetCode(err); code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		event = log.Warn()
	}

	event.Err(err).Msg(msg)

	WithError(writer, err)
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithError(writer, &failure.Failure{Code: http.StatusTooManyRequests, Message: constant.ResponseErrorRequestLimitExceeded})
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithError(writer, &failure.Failure{Code: http.StatusServiceUnavailable, Message: constant.ResponseErrorPrepareShutdown})
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithError(writer, &failure.Failure{Code: http.StatusServiceUnavailable, Message: constant.ResponseErrorUnhealthy})
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
