package generator

import (
	"context"
	"strings"
)

// MockLLM answers without calling a model, for local runs and tests. The
// body quotes the prompt back so callers can see what was asked.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Sample post title\n\n")
	sb.WriteString("A short summary of what this post covers.\n\n")
	sb.WriteString("## Body\n\n")
	for _, line := range strings.Split(strings.TrimSpace(prompt.User), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sb.WriteString("- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
