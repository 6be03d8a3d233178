// Package vapi is the HTTP client for the hosted voice-AI provider. It covers
// the two operations the scheduler needs: starting an outbound call and
// fetching the current state of a call it started earlier.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestError is returned for non-2xx provider responses. Message carries
// the provider's error body verbatim when one was present.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider request failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider request failed (%d)", e.StatusCode)
}

// CallRequest describes an outbound call to be placed by the provider.
type CallRequest struct {
	AssistantID    string
	PhoneNumberID  string
	CustomerNumber string
	PromptOverride string
}

// Artifact groups the recording and transcript byproducts of a call. Every
// field is optional; the provider fills them in as the call progresses.
type Artifact struct {
	RecordingURL  string            `json:"recordingUrl,omitempty"`
	LogURL        string            `json:"logUrl,omitempty"`
	TranscriptURL string            `json:"transcriptUrl,omitempty"`
	Messages      []json.RawMessage `json:"messages,omitempty"`
}

// Analysis carries the provider's post-call evaluation.
type Analysis struct {
	Summary           string          `json:"summary,omitempty"`
	StructuredData    json.RawMessage `json:"structuredData,omitempty"`
	SuccessEvaluation string          `json:"successEvaluation,omitempty"`
}

// ProviderCall is the provider's view of a call.
type ProviderCall struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	EndedReason string     `json:"endedReason,omitempty"`
	Artifact    *Artifact  `json:"artifact,omitempty"`
	Analysis    *Analysis  `json:"analysis,omitempty"`
}

// DurationSeconds returns the call duration when both timestamps are present
// and ordered, else nil.
func (p *ProviderCall) DurationSeconds() *int {
	if p.StartedAt == nil || p.EndedAt == nil || !p.EndedAt.After(*p.StartedAt) {
		return nil
	}
	secs := int(p.EndedAt.Sub(*p.StartedAt).Seconds())
	return &secs
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// Client talks to the voice provider's REST API using bearer authentication.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a provider client. The default request timeout is 15s;
// a timed-out initiation is treated as a failed initiation by callers.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type startPayload struct {
	AssistantID   string `json:"assistantId"`
	PhoneNumberID string `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
	AssistantOverrides *assistantOverrides `json:"assistantOverrides,omitempty"`
}

type assistantOverrides struct {
	FirstMessage string `json:"firstMessage,omitempty"`
	Model        *struct {
		Messages []overrideMessage `json:"messages,omitempty"`
	} `json:"model,omitempty"`
}

type overrideMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Start asks the provider to place a call. On acceptance it returns the
// provider's call record (id plus initial status).
func (c *Client) Start(ctx context.Context, req CallRequest) (*ProviderCall, error) {
	payload := startPayload{
		AssistantID:   req.AssistantID,
		PhoneNumberID: req.PhoneNumberID,
	}
	payload.Customer.Number = req.CustomerNumber
	if req.PromptOverride != "" {
		ov := &assistantOverrides{}
		ov.Model = &struct {
			Messages []overrideMessage `json:"messages,omitempty"`
		}{
			Messages: []overrideMessage{{Role: "system", Content: req.PromptOverride}},
		}
		payload.AssistantOverrides = ov
	}

	var out ProviderCall
	if err := c.do(ctx, http.MethodPost, "/call", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches the provider's current state for a call.
func (c *Client) Get(ctx context.Context, providerCallID string) (*ProviderCall, error) {
	var out ProviderCall
	if err := c.do(ctx, http.MethodGet, "/call/"+providerCallID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the optional "message" field from a provider error
// body. The provider sends either a string or an array of strings.
func errorMessage(data []byte) string {
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &single); err == nil && single.Message != "" {
		return single.Message
	}
	var multi struct {
		Message []string `json:"message"`
	}
	if err := json.Unmarshal(data, &multi); err == nil && len(multi.Message) > 0 {
		return multi.Message[0]
	}
	return ""
}
