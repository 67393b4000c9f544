package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// MinSummaryLength is the minimum number of characters a trimmed summary
// must have to be accepted.
const MinSummaryLength = 20

// maxResponseBytes bounds how much of a provider body is read.
const maxResponseBytes = 1 << 20

// GenerationConfig holds the fixed sampling parameters for summaries.
var GenerationConfig = llm.GenerationConfig{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 150,
}

// Service generates résumé summaries. It holds no per-call state, so one
// Service may serve any number of sequential or concurrent calls.
type Service struct {
	apiKey   string
	endpoint *llm.Config
	retrier  *llm.Retrier
	logger   *slog.Logger
	timeout  time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithEndpoint sets the provider endpoint configuration.
func WithEndpoint(endpoint *llm.Config) Option {
	return func(s *Service) {
		if endpoint != nil {
			s.endpoint = endpoint
		}
	}
}

// WithRetrier sets the request orchestrator used for provider calls.
func WithRetrier(retrier *llm.Retrier) Option {
	return func(s *Service) {
		if retrier != nil {
			s.retrier = retrier
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds each Generate call, retries included. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a Service. An empty apiKey is accepted here and
// reported as a ConfigError by Generate.
func NewService(apiKey string, opts ...Option) *Service {
	s := &Service{
		apiKey:   apiKey,
		endpoint: llm.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retrier == nil {
		s.retrier = llm.NewRetrier(http.DefaultClient, llm.DefaultRetryConfig(), llm.WithLogger(s.logger))
	}
	return s
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

// Generate produces a summary for the snapshot. Every error it returns is a
// *ConfigError, *ValidationError or *APIError.
func (s *Service) Generate(ctx context.Context, in types.SummaryInput) (string, error) {
	start := time.Now()
	text, err := s.generate(ctx, in)

	observability.SummaryDuration.Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	observability.SummaryRequests.WithLabelValues(outcome).Inc()

	return text, err
}

func (s *Service) generate(ctx context.Context, in types.SummaryInput) (string, error) {
	if s.apiKey == "" {
		s.logger.Error("provider API key is not set; set GEMINI_API_KEY or api_key in the config file")
		return "", &ConfigError{Message: MsgNotConfigured}
	}

	text, err := s.request(ctx, in)
	if err != nil {
		return "", s.normalize(err)
	}
	return text, nil
}

func (s *Service) request(ctx context.Context, in types.SummaryInput) (string, error) {
	if in.IsEmpty() {
		return "", &ValidationError{Message: MsgNoInput}
	}

	prompt := BuildPrompt(in)

	endpoint, err := s.endpoint.GenerateURL(s.apiKey)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(llm.NewTextRequest(prompt, GenerationConfig))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.retrier.Post(ctx, endpoint, body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", s.statusError(resp.StatusCode, data)
	}

	if err := schemas.Validate(schemas.GenerateResponse, data); err != nil {
		var shapeErr *schemas.ValidationError
		if errors.As(err, &shapeErr) {
			s.logger.Error("unexpected provider response structure", "error", shapeErr)
			return "", &APIError{Message: MsgMalformed, Cause: err}
		}
		// Not JSON at all.
		return "", err
	}

	var parsed llm.GenerateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	text, ok := parsed.FirstText()
	if !ok {
		return "", &APIError{Message: MsgMalformed}
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinSummaryLength {
		return "", &APIError{Message: MsgTooShort}
	}
	return text, nil
}

// statusError builds the APIError for a non-2xx response, preferring the
// provider's error.message.
func (s *Service) statusError(status int, body []byte) *APIError {
	message := fmt.Sprintf(msgStatusTemplate, status)

	var errResp llm.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		s.logger.Error("could not parse provider error response", "status", status)
	} else {
		s.logger.Error("provider API error", "status", status, "body", string(body))
		if m := errResp.Message(); m != "" {
			message = m
		}
	}
	return &APIError{Message: message, Status: status}
}

// normalize passes taxonomy errors through and remaps everything else.
func (s *Service) normalize(err error) error {
	var (
		cfgErr *ConfigError
		valErr *ValidationError
		apiErr *APIError
	)
	if errors.As(err, &cfgErr) || errors.As(err, &valErr) || errors.As(err, &apiErr) {
		return err
	}

	s.logger.Error("error generating AI summary", "error", err)

	switch {
	case isTimeout(err):
		return &APIError{Message: MsgTimeout, Cause: err}
	case isNetwork(err):
		return &APIError{Message: MsgNetwork, Cause: err}
	default:
		return &APIError{Message: MsgGeneric, Cause: err}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var (
		urlErr *url.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	return errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr)
}
