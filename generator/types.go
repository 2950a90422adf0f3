package generator

import (
	"time"

	"site_cms/document"
)

// Spec describes the post to draft.
type Spec struct {
	Topic       string   `json:"topic"`
	Outline     []string `json:"outline,omitempty"`
	Words       int      `json:"words,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Audience    string   `json:"audience,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
}

// Draft is a model-written post. Markdown is the body without the title
// heading; Doc is the same body imported as a document tree.
type Draft struct {
	Title    string             `json:"title"`
	Excerpt  string             `json:"excerpt"`
	Markdown string             `json:"markdown"`
	Doc      *document.Document `json:"-"`
}

// Turn records one comment-driven revision.
type Turn struct {
	Comment   string    `json:"comment"`
	Draft     Draft     `json:"draft"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
