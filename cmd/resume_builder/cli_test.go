package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/types"
)

const generatedText = "Results-driven engineer who turns ambiguous problems into shipped, reliable systems."

const sampleResume = `{
	"name": "Grace Hopper",
	"jobTitle": "Staff Engineer",
	"skills": [{"name": "COBOL"}, {"name": "Compilers", "level": "Expert"}],
	"experiences": [
		{"jobTitle": "Rear Admiral", "company": "US Navy", "description": "Led programming language standardization"}
	]
}`

// resetFlags restores every flag to its default so commands can run repeatedly in-process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvLegacyAPIKey, "")
	t.Setenv(config.EnvModel, "")
	t.Setenv(config.EnvPort, "")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// providerStub serves generateContent, failing the first failures calls with 503.
func providerStub(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Query().Get("key") != "cli-key" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
			return
		}
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": generatedText}}},
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func providerConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	return writeFile(t, dir, "config.json", fmt.Sprintf(`{"base_url": %q, "base_backoff_ms": 1}`, baseURL))
}

func TestGenerateSummaryCommand_MissingInputFlag(t *testing.T) {
	clearProviderEnv(t)

	_, err := executeCommand(t, "generate-summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
}

func TestGenerateSummaryCommand_PrintsSummary(t *testing.T) {
	clearProviderEnv(t)
	srv, calls := providerStub(t, 1)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)
	cfg := providerConfig(t, dir, srv.URL)

	out, err := executeCommand(t, "--config", cfg, "generate-summary", "--in", in, "--api-key", "cli-key")
	require.NoError(t, err)
	assert.Contains(t, out, generatedText)
	assert.Equal(t, int32(2), calls.Load(), "one retry after 503")
}

func TestGenerateSummaryCommand_WritesOutput(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv(config.EnvAPIKey, "cli-key")
	srv, _ := providerStub(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)
	outPath := filepath.Join(dir, "nested", "out.json")
	cfg := providerConfig(t, dir, srv.URL)

	out, err := executeCommand(t, "--config", cfg, "generate-summary", "-i", in, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully generated summary")

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var written types.ResumeData
	require.NoError(t, json.Unmarshal(content, &written))
	assert.Equal(t, generatedText, written.Summary)
	assert.Equal(t, "Grace Hopper", written.Name)
}

func TestGenerateSummaryCommand_Verbose(t *testing.T) {
	clearProviderEnv(t)
	srv, _ := providerStub(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)
	cfg := providerConfig(t, dir, srv.URL)

	out, err := executeCommand(t, "--config", cfg, "generate-summary", "--in", in, "--api-key", "cli-key", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Staff Engineer")
	assert.Contains(t, out, "Target Job Title")
}

func TestGenerateSummaryCommand_MissingAPIKey(t *testing.T) {
	clearProviderEnv(t)
	srv, calls := providerStub(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)
	cfg := providerConfig(t, dir, srv.URL)

	_, err := executeCommand(t, "--config", cfg, "generate-summary", "--in", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerateSummaryCommand_ProviderRejectsKey(t *testing.T) {
	clearProviderEnv(t)
	srv, _ := providerStub(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)
	cfg := providerConfig(t, dir, srv.URL)

	_, err := executeCommand(t, "--config", cfg, "generate-summary", "--in", in, "--api-key", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGenerateSummaryCommand_EmptyResume(t *testing.T) {
	clearProviderEnv(t)
	srv, calls := providerStub(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", `{"name": "Nobody"}`)
	cfg := providerConfig(t, dir, srv.URL)

	_, err := executeCommand(t, "--config", cfg, "generate-summary", "--in", in, "--api-key", "cli-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please add a job title")
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerateSummaryCommand_InvalidResume(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", `{"skills": "Go, SQL"}`)

	_, err := executeCommand(t, "generate-summary", "--in", in, "--api-key", "cli-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not validate against schema")
}

func TestPromptCommand(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", sampleResume)

	out, err := executeCommand(t, "prompt", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Target Job Title: Staff Engineer")
	assert.Contains(t, out, "Skills: COBOL, Compilers")
	assert.Contains(t, out, "- Rear Admiral at US Navy: Led programming language standardization")
}

func TestPromptCommand_EmptyResume(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "resume.json", `{}`)

	_, err := executeCommand(t, "prompt", "--in", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please add a job title")
}

func TestRoot_InvalidConfig(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "max_attempts: -3\n")
	in := writeFile(t, dir, "resume.json", sampleResume)

	_, err := executeCommand(t, "--config", cfg, "prompt", "--in", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"model": "file-model", "port": 9000}`)
	env := map[string]string{
		config.EnvAPIKey: "env-key",
		config.EnvModel:  "env-model",
		config.EnvPort:   "7000",
	}

	cfg, err := loadSettings(path, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "file-model", cfg.Model)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadSettings_APIKeyOrder(t *testing.T) {
	dir := t.TempDir()
	withKey := writeFile(t, dir, "keyed.json", `{"api_key": "file-key"}`)
	withoutKey := writeFile(t, dir, "plain.json", `{"model": "file-model"}`)

	tests := []struct {
		name string
		path string
		env  map[string]string
		want string
	}{
		{
			name: "config file wins over environment",
			path: withKey,
			env:  map[string]string{config.EnvAPIKey: "env-key", config.EnvLegacyAPIKey: "legacy-key"},
			want: "file-key",
		},
		{
			name: "primary variable wins over legacy",
			path: withoutKey,
			env:  map[string]string{config.EnvAPIKey: "env-key", config.EnvLegacyAPIKey: "legacy-key"},
			want: "env-key",
		},
		{
			name: "legacy variable as last resort",
			path: withoutKey,
			env:  map[string]string{config.EnvLegacyAPIKey: "legacy-key"},
			want: "legacy-key",
		},
		{
			name: "no config file",
			env:  map[string]string{config.EnvLegacyAPIKey: "legacy-key"},
			want: "legacy-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadSettings(tt.path, func(k string) string { return tt.env[k] })
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.APIKey)
		})
	}
}
