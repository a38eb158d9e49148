// Package gemini implements the Google Gemini generateContent API.
// It translates between the conversation data model and Gemini's wire
// format. Note: Gemini uses camelCase for JSON field names.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/voxlab/askai/pkg/core/types"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when the caller does not pick one.
	DefaultModel = "gemini-2.0-flash"
)

// Provider implements the Gemini generateContent API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// GenerateContent sends a non-streaming request and returns the text of the
// first candidate.
func (p *Provider) GenerateContent(ctx context.Context, req *Request) (string, error) {
	geminiReq := buildRequest(req)

	respBody, err := p.doRequest(ctx, geminiReq)
	if err != nil {
		return "", err
	}

	return parseResponse(respBody)
}

// doRequest posts the request body and returns the raw response bytes.
func (p *Provider) doRequest(ctx context.Context, geminiReq *geminiRequest) ([]byte, error) {
	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Type: ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.parseError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

// WireTurns strips display-side fields from turns for model context.
func WireTurns(turns []types.Turn) []types.Turn {
	out := make([]types.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, t.ForWire())
	}
	return out
}
