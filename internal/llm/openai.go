// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/petar-djukic/docgaps/pkg/types"
)

const defaultBaseURL = "https://api.openai.com/v1"

// openAIProvider calls an OpenAI-compatible chat completions endpoint.
type openAIProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	maxTokens  int
	usage      types.TokenUsage // Cumulative across calls
}

// Usage reports the tokens consumed by all Suggest calls so far.
func (p *openAIProvider) Usage() types.TokenUsage {
	return p.usage
}

func newOpenAIProvider(cfg Config) *openAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &openAIProvider{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxTokens:  cfg.MaxTokens,
	}
}

// Wire types for the chat completions API.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Suggest sends the gap context to the chat completions endpoint and
// returns the raw response text. Rate-limit responses are retried with
// exponential backoff.
func (p *openAIProvider) Suggest(ctx context.Context, req Request) (string, error) {
	systemPrompt, err := RenderSystemPrompt(TemplateData{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req)},
		},
		MaxTokens: p.maxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrProviderFailure, err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: cancelled during retry: %v", ErrProviderFailure, ctx.Err())
			}
		}

		text, retryable, err := p.send(ctx, payload)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: still failing after %d retries: %v", ErrProviderFailure, maxRetryAttempts, lastErr)
}

// send performs one HTTP call. The second return value reports whether the
// failure is worth retrying.
func (p *openAIProvider) send(ctx context.Context, payload []byte) (string, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("%w: building request: %v", ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return "", false, fmt.Errorf("%w: request timed out after %s", ErrProviderFailure, p.timeout)
		}
		return "", false, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("%w: reading response: %v", ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			p.classifyStatus(resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("%w: decoding response: %v", ErrProviderFailure, err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("%w: %s", ErrProviderFailure, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("%w: empty response", ErrProviderFailure)
	}

	p.usage.InputTokens += parsed.Usage.PromptTokens
	p.usage.OutputTokens += parsed.Usage.CompletionTokens

	return parsed.Choices[0].Message.Content, false, nil
}

// classifyStatus wraps HTTP failures into ErrProviderFailure with
// descriptive messages.
func (p *openAIProvider) classifyStatus(status int, body []byte) error {
	var parsed chatResponse
	msg := ""
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		msg = ": " + parsed.Error.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: credential rejected%s", ErrProviderFailure, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: model not found: %s%s", ErrProviderFailure, p.model, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited%s", ErrProviderFailure, msg)
	default:
		return fmt.Errorf("%w: HTTP %d%s", ErrProviderFailure, status, msg)
	}
}
