package post

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"site_cms/document"
	"site_cms/metrics"
	"site_cms/renderer"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrUnauthenticated = errors.New("you must be logged in to save a post")
	ErrInvalidPost     = errors.New("invalid post")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	maxPage         = 10000
)

// Query filters and pages a post listing. Results are newest first.
type Query struct {
	Status     Status
	CategoryID string
	Search     string
	Limit      int
	Page       int
}

// Normalized fills in the listing defaults and clamps the page window:
// published posts, DefaultPageSize per page, at most MaxPageSize.
func (q Query) Normalized() Query {
	if q.Status == "" {
		q.Status = StatusPublished
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultPageSize
	case q.Limit > MaxPageSize:
		q.Limit = MaxPageSize
	}
	switch {
	case q.Page < 1:
		q.Page = 1
	case q.Page > maxPage:
		q.Page = maxPage
	}
	return q
}

// Offset returns the row offset for the query's page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Store is the document store holding posts, categories and author
// profiles.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	GetBySlug(ctx context.Context, slug string) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q Query) ([]Record, int64, error)
	CategoryNames(ctx context.Context) (map[string]string, error)
	AuthorNames(ctx context.Context) (map[string]string, error)
	Categories(ctx context.Context) ([]Category, error)
	SaveCategory(ctx context.Context, id, name string) error
}

// User is the signed-in author.
type User struct {
	ID       string
	Username string
}

// Identity reports who is signed in.
type Identity interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// SaveParams are the record fields an author edits next to the content.
type SaveParams struct {
	ID             string `json:"id,omitempty"`
	Title          string `json:"title"`
	Slug           string `json:"slug,omitempty"`
	Excerpt        string `json:"excerpt,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	Status         Status `json:"status,omitempty"`
	FeaturedImage  string `json:"featured_image,omitempty"`
	SEOTitle       string `json:"seo_title,omitempty"`
	SEODescription string `json:"seo_description,omitempty"`
	SEOKeywords    string `json:"seo_keywords,omitempty"`
}

const excerptLength = 160

// Service implements the post operations behind the admin panel and the
// public blog.
type Service struct {
	store    Store
	identity Identity
	logger   *logrus.Logger
	now      func() time.Time
}

func NewService(store Store, identity Identity, logger *logrus.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("post store is required")
	}
	if identity == nil {
		return nil, errors.New("identity provider is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{store: store, identity: identity, logger: logger, now: time.Now}, nil
}

// Save writes the document and its metadata. An empty ID creates a post.
// Concurrent saves of the same post are last-write-wins.
func (s *Service) Save(ctx context.Context, p SaveParams, doc *document.Document) (*Record, error) {
	user, err := s.signedIn(ctx)
	if err != nil {
		return nil, err
	}

	content, err := SaveTree(doc)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, errors.Wrap(ErrInvalidPost, "title is required")
	}
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, errors.Wrapf(ErrInvalidPost, "status %q", status)
	}
	slug := p.Slug
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, errors.Wrap(ErrInvalidPost, "slug is required")
	}
	excerpt := strings.TrimSpace(renderer.StripTags(p.Excerpt))
	if excerpt == "" {
		excerpt = DefaultExcerpt(doc, excerptLength)
	}

	now := s.now().UTC()
	var rec *Record
	if p.ID == "" {
		rec = &Record{
			ID:        uuid.NewString(),
			AuthorID:  user.ID,
			CreatedAt: now,
		}
	} else {
		rec, err = s.store.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
	}

	wasPublished := rec.Status == StatusPublished
	rec.Title = title
	rec.Slug = slug
	rec.Excerpt = excerpt
	rec.Content = content
	rec.CategoryID = p.CategoryID
	rec.Status = status
	rec.FeaturedImage = p.FeaturedImage
	rec.SEOTitle = p.SEOTitle
	rec.SEODescription = p.SEODescription
	rec.SEOKeywords = p.SEOKeywords
	rec.UpdatedAt = now
	if status == StatusPublished && (!wasPublished || rec.PublishedAt == nil) {
		rec.PublishedAt = &now
	}

	if p.ID == "" {
		err = s.store.Create(ctx, rec)
	} else {
		err = s.store.Update(ctx, rec)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "save post %s", rec.ID)
	}

	metrics.PostsSaved.WithLabelValues(string(status)).Inc()
	s.logger.WithFields(logrus.Fields{
		"post_id": rec.ID,
		"slug":    rec.Slug,
		"status":  rec.Status,
		"author":  user.ID,
	}).Info("post saved")
	return rec, nil
}

// Open loads a post for editing. A content field that fails to load is
// reported with ErrMalformedTree alongside the record, so the caller can
// choose to start from an empty document.
func (s *Service) Open(ctx context.Context, id string) (*Record, *document.Document, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := LoadTree(*rec)
	if err != nil {
		s.logger.WithError(err).WithField("post_id", id).Warn("stored content does not load")
		return rec, nil, err
	}
	return rec, doc, nil
}

// Published returns a published post by slug with its body rendered.
func (s *Service) Published(ctx context.Context, slug string) (*Record, string, error) {
	if slug == "" {
		return nil, "", errors.Wrap(ErrNotFound, "blog slug is required")
	}
	rec, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	if rec.Status != StatusPublished {
		return nil, "", errors.Wrapf(ErrNotFound, "slug %q", slug)
	}

	start := time.Now()
	html, degraded, err := DisplayHTML(*rec)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, "", err
	}
	if degraded {
		s.logger.WithField("post_id", rec.ID).Warn("rendered post content with fallback")
	}
	return rec, html, nil
}

// List returns matching posts with category and author names resolved.
// A failed name lookup degrades to the default labels. Listing anything
// but published posts needs a signed-in user.
func (s *Service) List(ctx context.Context, q Query) ([]Summary, int64, error) {
	q = q.Normalized()
	switch q.Status {
	case StatusPublished:
	case StatusDraft, StatusAll:
		if _, err := s.signedIn(ctx); err != nil {
			return nil, 0, err
		}
		if q.Status == StatusAll {
			q.Status = ""
		}
	default:
		return nil, 0, errors.Wrapf(ErrInvalidPost, "status %q", q.Status)
	}

	recs, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if len(recs) == 0 {
		return []Summary{}, total, nil
	}

	categories, authors := s.names(ctx)
	out := make([]Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, summarize(r, categories, authors))
	}
	return out, total, nil
}

// Summarize resolves the display names of one post.
func (s *Service) Summarize(ctx context.Context, rec *Record) Summary {
	categories, authors := s.names(ctx)
	return summarize(*rec, categories, authors)
}

func (s *Service) names(ctx context.Context) (categories, authors map[string]string) {
	categories, err := s.store.CategoryNames(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("fetching categories")
	}
	authors, err = s.store.AuthorNames(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("fetching authors")
	}
	return categories, authors
}

func summarize(r Record, categories, authors map[string]string) Summary {
	sum := Summary{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Excerpt:       r.Excerpt,
		FeaturedImage: r.FeaturedImage,
		CategoryID:    r.CategoryID,
		CategoryName:  "Uncategorized",
		AuthorName:    "Unknown Author",
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		PublishedAt:   r.PublishedAt,
	}
	if name, ok := categories[r.CategoryID]; ok && r.CategoryID != "" {
		sum.CategoryName = name
	}
	if name, ok := authors[r.AuthorID]; ok && r.AuthorID != "" {
		sum.AuthorName = name
	}
	if sum.FeaturedImage == "" {
		sum.FeaturedImage = DefaultFeaturedImage
	}
	return sum
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.signedIn(ctx); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.PostsDeleted.Inc()
	s.logger.WithField("post_id", id).Info("post deleted")
	return nil
}

// Categories lists the categories by name.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.store.Categories(ctx)
}

// SaveCategory creates a category, or renames it when c.ID is set.
func (s *Service) SaveCategory(ctx context.Context, c Category) (*Category, error) {
	if _, err := s.signedIn(ctx); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errors.Wrap(ErrInvalidPost, "category name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.store.SaveCategory(ctx, c.ID, c.Name); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"category_id": c.ID, "name": c.Name}).Info("category saved")
	return &c, nil
}

func (s *Service) signedIn(ctx context.Context) (*User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
