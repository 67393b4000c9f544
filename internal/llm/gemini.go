package llm

// Part is a single piece of content. Only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// Content is an ordered list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig holds the sampling parameters sent with a request.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// NewTextRequest wraps a single prompt into a request envelope.
func NewTextRequest(prompt string, gen GenerationConfig) GenerateRequest {
	return GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: gen,
	}
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// GenerateResponse is the generateContent success body.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// FirstText returns the text of the first part of the first candidate.
func (r *GenerateResponse) FirstText() (string, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return "", false
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 || c.Parts[0].Text == "" {
		return "", false
	}
	return c.Parts[0].Text, true
}

// ErrorDetail is the provider error object.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ErrorResponse is the body returned with non-2xx statuses.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// Message returns the provider-supplied message, if any.
func (r *ErrorResponse) Message() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return r.Error.Message
}
