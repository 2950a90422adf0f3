// Package post bridges blog post records and the document tree stored in
// their content field.
package post

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"site_cms/document"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	// StatusAll selects posts of every status in a listing.
	StatusAll Status = "all"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// DefaultFeaturedImage is shown in listings for posts without an image.
const DefaultFeaturedImage = "https://images.unsplash.com/photo-1596367407372-96cb88503db6?q=80&w=1770&auto=format&fit=crop"

// Record is a row of the posts collection. Only Content is interpreted by
// the content pipeline; the rest passes through.
type Record struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Excerpt        string          `json:"excerpt"`
	Content        json.RawMessage `json:"content"`
	CategoryID     string          `json:"category_id,omitempty"`
	Status         Status          `json:"status"`
	FeaturedImage  string          `json:"featured_image,omitempty"`
	AuthorID       string          `json:"author_id,omitempty"`
	SEOTitle       string          `json:"seo_title,omitempty"`
	SEODescription string          `json:"seo_description,omitempty"`
	SEOKeywords    string          `json:"seo_keywords,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PublishedAt    *time.Time      `json:"published_at,omitempty"`
}

// Category groups posts on the blog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary is a listing entry enriched with display names.
type Summary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featured_image"`
	CategoryID    string     `json:"category_id,omitempty"`
	CategoryName  string     `json:"category_name"`
	AuthorName    string     `json:"author_name"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// Date is the date a reader sees: when the post was published, or when it
// was created if it never was.
func (s Summary) Date() time.Time {
	if s.PublishedAt != nil {
		return *s.PublishedAt
	}
	return s.CreatedAt
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL slug from a title: lowercased, anything but ASCII
// letters, digits and whitespace dropped, whitespace runs turned into "-".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(strings.TrimSpace(s), "-")
	return s
}

// DefaultExcerpt returns the first limit runes of the document's plain
// text, on a single line.
func DefaultExcerpt(doc *document.Document, limit int) string {
	compact := strings.Fields(document.PlainText(doc))
	joined := strings.Join(compact, " ")
	if utf8.RuneCountInString(joined) <= limit {
		return joined
	}
	return string([]rune(joined)[:limit])
}
