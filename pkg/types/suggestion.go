// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Origin identifies where a candidate docstring came from.
type Origin int

const (
	OriginManual Origin = iota // Typed or edited by the user
	OriginLLM                  // Produced by the suggestion provider
)

// String returns the provenance tag name.
func (o Origin) String() string {
	switch o {
	case OriginManual:
		return "manual"
	case OriginLLM:
		return "llm"
	default:
		return "unknown"
	}
}

// Suggestion is a candidate docstring under review. RawResponse keeps the
// unprocessed provider output for audit when Origin is OriginLLM.
type Suggestion struct {
	Text        string // Candidate docstring text (normalized)
	Origin      Origin // manual or llm
	RawResponse string // Raw provider response (empty for manual)
}

// TokenUsage tracks token consumption for a single provider call.
type TokenUsage struct {
	InputTokens  int // Tokens in the prompt
	OutputTokens int // Tokens in the response
}

// Total returns the sum of input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}
