// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSystemPrompt_DefaultConvention(t *testing.T) {
	prompt, err := RenderSystemPrompt(TemplateData{})
	require.NoError(t, err)
	assert.Contains(t, prompt, "PEP 257")
	assert.Contains(t, prompt, "docstring")
}

func TestRenderSystemPrompt_CustomConvention(t *testing.T) {
	prompt, err := RenderSystemPrompt(TemplateData{Convention: "Google"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Google-style")
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{
		QualifiedName: "Widget.render",
		Signature:     "def render(self):",
		Source:        "def render(self):\n    return self.draw()",
	})

	assert.Contains(t, p, "`Widget.render`")
	assert.Contains(t, p, "```python\ndef render(self):\n    return self.draw()\n```")
}

func TestBuildPrompt_FallsBackToSignature(t *testing.T) {
	p := BuildPrompt(Request{QualifiedName: "f", Signature: "def f():"})
	assert.Contains(t, p, "```python\ndef f():\n```")
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `"""Doc."""`, `"""Doc."""`},
		{"surrounding whitespace", "\n  \"\"\"Doc.\"\"\"  \n", `"""Doc."""`},
		{"fenced", "```\n\"\"\"Doc.\"\"\"\n```", `"""Doc."""`},
		{"fenced with language", "```python\n\"\"\"Doc.\"\"\"\n```", `"""Doc."""`},
		{"fence without close", "```python\n\"\"\"Doc.\"\"\"", `"""Doc."""`},
		{"multiline", "```python\n\"\"\"\nA.\n\"\"\"\n```", "\"\"\"\nA.\n\"\"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.raw))
		})
	}
}
