// Package summary generates a professional résumé summary through the
// provider API and normalizes every failure into a small error taxonomy.
package summary

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	MsgNotConfigured  = "AI summary generation is not configured. Please set up your API key."
	MsgNoInput        = "Please add a job title, skills, or experience to generate an AI summary."
	MsgMalformed      = "Failed to generate summary. Please try again."
	MsgTooShort       = "Generated summary was too short. Please try again."
	MsgTimeout        = "Request timed out. Please try again."
	MsgNetwork        = "Network error. Please check your connection and try again."
	MsgGeneric        = "Failed to generate AI summary. Please try again later."
	msgStatusTemplate = "Failed to generate AI summary (Error %d)."
)

// ConfigError is returned when the provider credential is missing.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Message)
}

// ValidationError is returned when the snapshot has nothing to summarize.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// APIError covers transport, provider and response-shape failures.
// Status is the upstream HTTP status, or 0 when there is none.
type APIError struct {
	Message string
	Status  int
	Cause   error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("api error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("api error: %s", msg)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Kind names an error class of the taxonomy.
type Kind string

// Error kinds. KindNone means success.
const (
	KindNone       Kind = ""
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindAPI        Kind = "api"
)

// KindOf classifies err. Errors outside the taxonomy are reported as KindAPI,
// matching how Generate would remap them.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return KindConfig
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}
	return KindAPI
}

// Outcome is the terminal result of one generation: either Text, or a
// failure Kind with its user-facing Message and optional upstream Status.
type Outcome struct {
	Text    string `json:"text,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Kind == KindNone
}

// OutcomeOf folds a Generate result into an Outcome.
func OutcomeOf(text string, err error) Outcome {
	if err == nil {
		return Outcome{Text: text}
	}

	var (
		cfgErr *ConfigError
		valErr *ValidationError
		apiErr *APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		return Outcome{Kind: KindConfig, Message: cfgErr.Message}
	case errors.As(err, &valErr):
		return Outcome{Kind: KindValidation, Message: valErr.Message}
	case errors.As(err, &apiErr):
		return Outcome{Kind: KindAPI, Message: apiErr.Message, Status: apiErr.Status}
	default:
		return Outcome{Kind: KindAPI, Message: MsgGeneric}
	}
}
