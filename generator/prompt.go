package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message set sent to the model.
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message is an earlier exchange replayed to the model.
type Message struct {
	Role    string
	Content string
}

// BuildInitialPrompt asks for a first draft.
func BuildInitialPrompt(spec Spec) Prompt {
	var sb strings.Builder
	sb.WriteString("You write posts for a company blog. Reply with Markdown only, no commentary.\n")
	sb.WriteString("Requirements:\n")
	if spec.Words > 0 {
		sb.WriteString(fmt.Sprintf("- About %d words (within 15%%).\n", spec.Words))
	}
	if spec.Tone != "" {
		sb.WriteString(fmt.Sprintf("- Tone: %s.\n", spec.Tone))
	}
	if spec.Audience != "" {
		sb.WriteString(fmt.Sprintf("- Audience: %s.\n", spec.Audience))
	}
	for _, c := range spec.Constraints {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}
	sb.WriteString("- Start with a level-one heading holding the post title.\n")
	sb.WriteString("- Follow it with a one-paragraph summary of 30 to 50 words.\n")
	sb.WriteString("- Use only headings, paragraphs, bold, italic, links, images and lists.\n")
	if len(spec.Outline) > 0 {
		sb.WriteString("- Follow this outline:\n")
		for i, item := range spec.Outline {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
		}
	}

	return Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("Topic: %s\nWrite the complete post in Markdown.", spec.Topic),
	}
}

// BuildRevisionPrompt asks for a revision of prev driven by comment.
func BuildRevisionPrompt(spec Spec, prev Draft, comment string, history []Turn) Prompt {
	var sb strings.Builder
	sb.WriteString("You are an editor. Apply the smallest change that addresses the feedback and keep the Markdown structure.\n")
	sb.WriteString("- Keep the heading levels and list formatting.\n")
	sb.WriteString("- Keep the summary as the first paragraph.\n")
	sb.WriteString("- If the feedback cannot be applied, return the post unchanged.\n")
	for _, c := range spec.Constraints {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}

	current := prev.Markdown
	if prev.Title != "" {
		current = "# " + prev.Title + "\n\n" + current
	}
	user := fmt.Sprintf("Current post:\n%s\n\nFeedback: %s\nWrite the complete revised post in Markdown.", current, comment)

	var msgs []Message
	for _, t := range history {
		if t.Comment == "" {
			continue
		}
		msgs = append(msgs, Message{Role: "user", Content: t.Comment})
	}

	return Prompt{
		System:  sb.String(),
		User:    user,
		History: msgs,
	}
}
