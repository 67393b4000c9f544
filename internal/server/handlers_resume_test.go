package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/summary"
	"github.com/jonathan/resume-builder/internal/types"
)

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetResume_Empty(t *testing.T) {
	s := newTestServer(nil)

	w := serve(t, s.Handler(), http.MethodGet, "/resume", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got types.ResumeData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Name)
	assert.NotNil(t, got.Experiences)
	assert.Empty(t, got.Experiences)
}

func TestUpdateResume_MergesAndAssignsIDs(t *testing.T) {
	s := newTestServer(nil)
	h := s.Handler()

	w := serve(t, h, http.MethodPut, "/resume", `{
		"name": "Ada Lovelace",
		"jobTitle": "Analyst",
		"skills": [{"name": "Mathematics", "level": "Expert"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got types.ResumeData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ada Lovelace", got.Name)
	require.Len(t, got.Skills, 1)
	assert.False(t, got.Skills[0].ID.IsZero())

	// A second partial update leaves earlier fields alone.
	w = serve(t, h, http.MethodPut, "/resume", `{"location": "London"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "London", got.Location)
	assert.Len(t, got.Skills, 1)
}

func TestUpdateResume_EmptyItemIDsAreAssigned(t *testing.T) {
	s := newTestServer(nil)
	kept := uuid.NewString()

	w := serve(t, s.Handler(), http.MethodPut, "/resume", `{
		"experiences": [
			{"id": "", "jobTitle": "Dev", "company": "Acme", "description": "Shipped"},
			{"id": null, "jobTitle": "Intern", "company": "Initech", "description": "Tested"}
		],
		"skills": [{"id": "`+kept+`", "name": "Go"}, {"id": "", "name": "SQL"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got types.ResumeData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Experiences, 2)
	assert.False(t, got.Experiences[0].ID.IsZero())
	assert.False(t, got.Experiences[1].ID.IsZero())
	assert.NotEqual(t, got.Experiences[0].ID, got.Experiences[1].ID)

	require.Len(t, got.Skills, 2)
	assert.Equal(t, kept, got.Skills[0].ID.String())
	assert.False(t, got.Skills[1].ID.IsZero())
}

func TestUpdateResume_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"name": `},
		{name: "wrong type", body: `{"experiences": "nope"}`},
		{name: "unknown skill level", body: `{"skills": [{"name": "Go", "level": "Wizard"}]}`},
		{name: "bad email", body: `{"email": "not-an-email"}`},
		{name: "malformed item id", body: `{"skills": [{"id": "row-1", "name": "Go"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			w := serve(t, s.Handler(), http.MethodPut, "/resume", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGenerateSummary_Success(t *testing.T) {
	gen := &stubGenerator{text: "A compelling summary of a long and varied career."}
	store := resume.New()
	title := "Engineer"
	store.Update(types.ResumeUpdate{
		JobTitle:    &title,
		Experiences: []types.Experience{{JobTitle: "Dev", Company: "Acme", Description: "Shipped"}},
	})
	s := New(Config{Logger: observability.DiscardLogger()}, store, gen)

	w := serve(t, s.Handler(), http.MethodPost, "/resume/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, gen.text, resp.Summary)
	assert.Equal(t, gen.text, store.Snapshot().Summary)

	require.Len(t, gen.seen, 1)
	assert.Equal(t, "Engineer", gen.seen[0].JobTitle)
	assert.Equal(t, []types.ExperienceRef{{JobTitle: "Dev", Company: "Acme", Description: "Shipped"}}, gen.seen[0].Experiences)
}

func TestGenerateSummary_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorBody
	}{
		{
			name:       "not configured",
			err:        &summary.ConfigError{Message: summary.MsgNotConfigured},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   ErrorBody{Error: "config", Message: summary.MsgNotConfigured},
		},
		{
			name:       "nothing to summarize",
			err:        &summary.ValidationError{Message: summary.MsgNoInput},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   ErrorBody{Error: "validation", Message: summary.MsgNoInput},
		},
		{
			name:       "provider rejected",
			err:        &summary.APIError{Message: "Invalid request", Status: 400},
			wantStatus: http.StatusBadGateway,
			wantBody:   ErrorBody{Error: "api", Message: "Invalid request", UpstreamStatus: 400},
		},
		{
			name:       "too short",
			err:        &summary.APIError{Message: summary.MsgTooShort},
			wantStatus: http.StatusBadGateway,
			wantBody:   ErrorBody{Error: "api", Message: summary.MsgTooShort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := resume.New()
			original := "keep me"
			store.Update(types.ResumeUpdate{Summary: &original})
			s := New(Config{Logger: observability.DiscardLogger()}, store, &stubGenerator{err: tt.err})

			w := serve(t, s.Handler(), http.MethodPost, "/resume/summary", "")
			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, "keep me", store.Snapshot().Summary, "store must be unchanged on failure")
		})
	}
}

func TestGenerateSummary_ConcurrentRequestIsRejected(t *testing.T) {
	gen := &stubGenerator{
		text:    "A compelling summary of a long and varied career.",
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	s := newTestServer(gen)
	h := s.Handler()

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- serve(t, h, http.MethodPost, "/resume/summary", "")
	}()
	<-gen.started

	w := serve(t, h, http.MethodPost, "/resume/summary", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "busy", body.Error)

	close(gen.block)
	assert.Equal(t, http.StatusOK, (<-first).Code)

	// The guard is released once the first call finishes.
	gen.started = nil
	w = serve(t, h, http.MethodPost, "/resume/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateSummary_NoGenerator(t *testing.T) {
	s := newTestServer(nil)

	w := serve(t, s.Handler(), http.MethodPost, "/resume/summary", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
