package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/summary"
	"github.com/jonathan/resume-builder/internal/types"
)

// readResume loads a résumé JSON file and checks it against the résumé schema.
func readResume(path string) (types.ResumeData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeData{}, fmt.Errorf("failed to read resume file: %w", err)
	}

	if err := schemas.Validate(schemas.Resume, content); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return types.ResumeData{}, fmt.Errorf("resume file does not validate against schema: %w", err)
		}
		return types.ResumeData{}, fmt.Errorf("failed to parse resume file: %w", err)
	}

	var data types.ResumeData
	if err := json.Unmarshal(content, &data); err != nil {
		return types.ResumeData{}, fmt.Errorf("failed to unmarshal resume JSON: %w", err)
	}
	return data, nil
}

// newSummaryService wires the service from the effective settings.
// A non-empty apiKey overrides the configured key.
func newSummaryService(apiKey string) *summary.Service {
	if apiKey == "" {
		apiKey = settings.APIKey
	}

	retrier := llm.NewRetrier(http.DefaultClient, settings.RetryConfig(), llm.WithLogger(logger))
	return summary.NewService(apiKey,
		summary.WithEndpoint(settings.Endpoint()),
		summary.WithRetrier(retrier),
		summary.WithLogger(logger),
		summary.WithTimeout(settings.RequestTimeout()),
	)
}
