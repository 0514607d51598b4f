package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/runeset/elotrace/internal/adapters/fetchq"
	service "github.com/runeset/elotrace/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// errorResponse is the JSON envelope every failed request returns.
type errorResponse struct {
	Error    string       `json:"error"`
	Code     string       `json:"code"`
	Fields   []FieldError `json:"fields,omitempty"`
	Warnings []warning    `json:"warnings,omitempty"`
}

func (e *errorResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// renderFieldErrors answers a request whose parameters failed validation.
func renderFieldErrors(w http.ResponseWriter, r *http.Request, fields []FieldError) {
	render.Status(r, http.StatusBadRequest)
	_ = render.Render(w, r, &errorResponse{
		Error:  "invalid request parameters",
		Code:   "invalid_request",
		Fields: fields,
	})
}

// renderServiceError maps a pipeline failure onto the wire envelope.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var empty *service.EmptyResultError
	switch {
	case errors.As(err, &empty):
		render.Status(r, http.StatusNotFound)
		_ = render.Render(w, r, &errorResponse{
			Error:    "no data points for the requested teams and range",
			Code:     "empty_result",
			Warnings: warnings(empty.Errors),
		})
	case errors.Is(err, fetchq.ErrQueueFull):
		render.Status(r, http.StatusServiceUnavailable)
		_ = render.Render(w, r, &errorResponse{
			Error: "fetch queue is full, retry shortly",
			Code:  "busy",
		})
	case errors.Is(err, service.ErrInvalidQuery):
		render.Status(r, http.StatusBadRequest)
		_ = render.Render(w, r, &errorResponse{
			Error: err.Error(),
			Code:  "invalid_request",
		})
	default:
		render.Status(r, http.StatusInternalServerError)
		_ = render.Render(w, r, &errorResponse{
			Error: "internal error",
			Code:  "internal",
		})
	}
}

// asValidationErrors narrows err to validator.ValidationErrors.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	return errors.As(err, target)
}
