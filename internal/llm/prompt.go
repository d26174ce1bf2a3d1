// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData holds the values injected into the system prompt template.
type TemplateData struct {
	Convention string // Docstring convention named in the instructions
}

// RenderSystemPrompt renders the system prompt template with the given data.
// An empty convention defaults to PEP 257.
func RenderSystemPrompt(data TemplateData) (string, error) {
	if data.Convention == "" {
		data.Convention = "PEP 257"
	}

	tmpl, err := template.ParseFS(templateFS, "templates/system.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing system template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}

	return buf.String(), nil
}

// BuildPrompt formats the gap context as the user message: the qualified
// name, then the definition source in a fenced code block.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a docstring for `%s`.\n\n", req.QualifiedName)
	b.WriteString("```python\n")
	if req.Source != "" {
		b.WriteString(req.Source)
	} else {
		b.WriteString(req.Signature)
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

// CleanResponse normalizes raw provider output into docstring text: strips
// markdown code fences and surrounding whitespace, keeping any triple
// quotes the model produced.
func CleanResponse(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		// Drop the opening fence (with optional language tag).
		lines = lines[1:]
		// Drop the closing fence if present.
		for i := len(lines) - 1; i >= 0; i-- {
			if strings.TrimSpace(lines[i]) == "" {
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
				lines = lines[:i]
			}
			break
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	return text
}
