// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm implements the docstring suggestion provider over an
// OpenAI-compatible endpoint or AWS Bedrock.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petar-djukic/docgaps/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 1024
	maxRetryAttempts = 3
)

// baseRetryDelay seeds the exponential backoff between retry attempts.
// Variable so tests can shrink it.
var baseRetryDelay = 1 * time.Second

// ErrProviderFailure indicates the suggestion call failed (network, auth,
// rate limit, timeout). Never fatal to a run; the session falls back to
// manual editing or retry.
var ErrProviderFailure = errors.New("suggestion provider failure")

// ErrNoCredential indicates the automatic-suggestion path is disabled
// because no credential is configured.
var ErrNoCredential = errors.New("no provider credential configured")

// Request carries the context handed to the provider for one gap.
type Request struct {
	QualifiedName string // Dotted name of the definition
	Signature     string // The def header text
	Source        string // Bounded window of surrounding source
}

// Provider produces candidate docstring text for a definition.
type Provider interface {
	// Suggest blocks until the provider answers or the context expires.
	// The returned string is the raw response; callers normalize it with
	// CleanResponse before presenting it.
	Suggest(ctx context.Context, req Request) (string, error)

	// Usage reports the cumulative token consumption of all Suggest calls.
	Usage() types.TokenUsage
}

// Backend selects a provider implementation.
type Backend string

const (
	BackendOpenAI  Backend = "openai"
	BackendBedrock Backend = "bedrock"
)

// Config configures provider construction. Values come from flags and
// environment overrides, materialized once at process start.
type Config struct {
	Backend   Backend       // openai (default) or bedrock
	BaseURL   string        // OpenAI-compatible endpoint base URL
	APIKey    string        // Opaque credential; empty disables BackendOpenAI
	Model     string        // Model identifier (required)
	Region    string        // AWS region (bedrock only)
	Timeout   time.Duration // Per-call timeout (default 60s)
	MaxTokens int           // Response token cap (default 1024)
}

// New constructs the configured provider. A missing credential for the
// OpenAI backend returns ErrNoCredential so the caller can disable the
// suggestion path while leaving manual editing available.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", ErrProviderFailure)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	switch cfg.Backend {
	case BackendBedrock:
		return newBedrockProvider(ctx, cfg)
	case BackendOpenAI, "":
		if cfg.APIKey == "" {
			return nil, ErrNoCredential
		}
		return newOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrProviderFailure, cfg.Backend)
	}
}
