// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/petar-djukic/docgaps/pkg/types"
)

// BedrockAPI abstracts the Bedrock Converse call for testing.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// bedrockProvider calls AWS Bedrock Converse with the standard credential
// chain. Used when the suggestion backend is set to bedrock.
type bedrockProvider struct {
	api       BedrockAPI
	modelID   string
	timeout   time.Duration
	maxTokens int
	usage     types.TokenUsage // Cumulative across calls
}

// Usage reports the tokens consumed by all Suggest calls so far.
func (p *bedrockProvider) Usage() types.TokenUsage {
	return p.usage
}

func newBedrockProvider(ctx context.Context, cfg Config) (*bedrockProvider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required for bedrock", ErrProviderFailure)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrProviderFailure, err)
	}

	return &bedrockProvider{
		api:       bedrockruntime.NewFromConfig(awsCfg),
		modelID:   cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// newBedrockProviderWithAPI creates a provider with a pre-configured API
// implementation. Used for testing with mock clients.
func newBedrockProviderWithAPI(api BedrockAPI, cfg Config) *bedrockProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &bedrockProvider{
		api:       api,
		modelID:   cfg.Model,
		timeout:   timeout,
		maxTokens: maxTokens,
	}
}

// Suggest sends the gap context via Converse, retrying throttling errors
// with exponential backoff.
func (p *bedrockProvider) Suggest(ctx context.Context, req Request) (string, error) {
	systemPrompt, err := RenderSystemPrompt(TemplateData{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: BuildPrompt(req)},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(p.maxTokens)),
		},
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

		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		output, err := p.api.Converse(callCtx, input)
		cancel()

		if err != nil {
			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}
			return "", p.classifyError(err)
		}

		if output.Usage != nil {
			if output.Usage.InputTokens != nil {
				p.usage.InputTokens += int(*output.Usage.InputTokens)
			}
			if output.Usage.OutputTokens != nil {
				p.usage.OutputTokens += int(*output.Usage.OutputTokens)
			}
		}

		return extractText(output)
	}

	return "", fmt.Errorf("%w: rate limited after %d retries: %v", ErrProviderFailure, maxRetryAttempts, lastErr)
}

// extractText pulls the text content blocks out of a Converse response.
func extractText(output *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("%w: unexpected response shape", ErrProviderFailure)
	}

	text := ""
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += t.Value
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrProviderFailure)
	}
	return text, nil
}

// classifyError wraps Bedrock errors into ErrProviderFailure with
// descriptive messages.
func (p *bedrockProvider) classifyError(err error) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrProviderFailure, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrProviderFailure, p.modelID)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrProviderFailure, p.timeout)
	}

	return fmt.Errorf("%w: %v", ErrProviderFailure, err)
}
