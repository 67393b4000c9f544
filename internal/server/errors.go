package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/summary"
)

// ErrorBody is the JSON body returned for failed summary generations.
type ErrorBody struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

const kindBusy = "busy"

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, resume.ErrGenerationInProgress) {
		return http.StatusConflict
	}
	switch summary.KindOf(err) {
	case summary.KindConfig:
		return http.StatusServiceUnavailable
	case summary.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// errorBodyFor converts a generation error to its response body.
func errorBodyFor(err error) ErrorBody {
	if errors.Is(err, resume.ErrGenerationInProgress) {
		return ErrorBody{Error: kindBusy, Message: "A summary is already being generated. Please wait."}
	}
	outcome := summary.OutcomeOf("", err)
	return ErrorBody{
		Error:          string(outcome.Kind),
		Message:        outcome.Message,
		UpstreamStatus: outcome.Status,
	}
}
