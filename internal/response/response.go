// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/picstash/service/internal/apperr"
)

// Envelope is the standard API response envelope. Code is 0 on success and a
// stable apperr code on failure.
type Envelope struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Code: 0, Data: data})
}

// Fail writes an error response, mapping the error's code to an HTTP status.
// Causes wrapped inside coded errors are never exposed to clients.
func Fail(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	message := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}
	JSON(w, httpStatus(code), Envelope{Code: int(code), Message: message})
}

// BadRequest writes a PARAMS_ERROR response with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, apperr.Params(message))
}

// Unauthorized writes a NO_AUTH_ERROR response with the given message.
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, apperr.NoAuth(message))
}

func httpStatus(code apperr.Code) int {
	switch code {
	case apperr.CodeParams:
		return http.StatusBadRequest
	case apperr.CodeNoAuth:
		return http.StatusUnauthorized
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeOperation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
