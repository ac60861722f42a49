package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the Gemini REST API with a single credential.
type GeminiClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewGeminiClient creates a Gemini generation client. baseURL may be empty
// to use the public endpoint.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		// Generation is the long pole of a request; streams stay open for
		// the whole answer.
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiErrorBody `json:"error,omitempty"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateContent sends a prompt and returns the full generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)

	resp, err := c.post(ctx, url, prompt)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var builder strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	return builder.String(), nil
}

// StreamGenerateContent sends a prompt and forwards each generated text
// chunk to the callback as soon as it arrives. The stream is finite and not
// restartable; a callback error aborts it.
func (c *GeminiClient) StreamGenerateContent(ctx context.Context, prompt string, callback func(chunk string) error) error {
	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.BaseURL, c.Model)

	resp, err := c.post(ctx, url, prompt)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	const dataPrefix = "data: "

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		var genResp generateResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, dataPrefix)), &genResp); err != nil {
			// Skip malformed SSE payloads.
			continue
		}
		if len(genResp.Candidates) == 0 {
			continue
		}

		for _, p := range genResp.Candidates[0].Content.Parts {
			if p.Text == "" {
				continue
			}
			if err := callback(p.Text); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

func (c *GeminiClient) post(ctx context.Context, url, prompt string) (*http.Response, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// apiError converts a non-200 response into a structured *APIError so quota
// failures can be classified without string matching.
func (c *GeminiClient) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var wrapper struct {
		Error apiErrorBody `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Error.Message != "" {
		apiErr.Status = wrapper.Error.Status
		apiErr.Message = wrapper.Error.Message
	} else {
		apiErr.Message = string(raw)
	}
	return apiErr
}
