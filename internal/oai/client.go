// Package oai is a minimal client for the OpenAI Responses API, scoped
// to schema-forced session summarization.
package oai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the hosted OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single summarization request. Large
	// transcripts take the model a while.
	DefaultTimeout = 180 * time.Second

	// maxOutputTokens caps the summarizer reply.
	maxOutputTokens = 2048

	// schemaName labels the forced output format.
	schemaName = "codextendo_summary"
)

// Client calls an OpenAI-compatible Responses API endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects the hosted API;
// a non-positive timeout selects DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Summarize posts the prompt pair and returns the schema-forced
// summary. The API key is checked before any network traffic.
func (c *Client) Summarize(
	ctx context.Context, model, systemPrompt, userPrompt string,
) (*SummaryPayload, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(request{
		Model: model,
		Input: []inputMessage{
			{
				Role: "system",
				Content: []inputContent{
					{Type: "input_text", Text: systemPrompt},
				},
			},
			{
				Role: "user",
				Content: []inputContent{
					{Type: "input_text", Text: userPrompt},
				},
			},
		},
		Text: textFormat{
			Format: formatSpec{
				Type:   "json_schema",
				Name:   schemaName,
				Schema: json.RawMessage(summarySchema),
			},
		},
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Detail: strings.TrimSpace(string(respBody)),
		}
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Status != "completed" {
		incomplete := &IncompleteError{Status: parsed.Status}
		if parsed.IncompleteDetails != nil {
			incomplete.Reason = parsed.IncompleteDetails.Reason
		}
		return nil, incomplete
	}

	// The summary arrives either as a structured output_json piece or
	// as output_text that itself parses as JSON. Take the first piece
	// that yields a payload.
	for _, block := range parsed.Output {
		for _, piece := range block.Content {
			var payload SummaryPayload

			switch piece.Type {
			case "output_json":
				if len(piece.JSON) == 0 {
					continue
				}
				if err := json.Unmarshal(
					piece.JSON, &payload,
				); err != nil {
					continue
				}
				return &payload, nil

			case "output_text":
				if err := json.Unmarshal(
					[]byte(piece.Text), &payload,
				); err != nil {
					continue
				}
				return &payload, nil
			}
		}
	}

	return nil, ErrUnparsableResponse
}
