package server

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"site_cms/editor"
	"site_cms/generator"
	"site_cms/post"
	"site_cms/renderer"
)

type reviseReq struct {
	Comment string `json:"comment"`
}

type postListResp struct {
	Posts []post.Summary `json:"posts"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

var blogPage = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Record.SEOTitle}}{{.Record.SEOTitle}}{{else}}{{.Title}}{{end}}</title>
{{- if .Record.SEODescription}}
<meta name="description" content="{{.Record.SEODescription}}">
{{- end}}
</head>
<body>
<article>
{{- if .Record.FeaturedImage}}
<img src="{{.Record.FeaturedImage}}" alt="{{.Title}}">
{{- end}}
<h1>{{.Title}}</h1>
<p class="byline">
<time datetime="{{.Date.Format "2006-01-02"}}">{{.Date.Format "January 2, 2006"}}</time>
by {{.AuthorName}} in {{.CategoryName}}
</p>
{{.Body}}
</article>
</body>
</html>
`))

type blogView struct {
	post.Summary
	Record *post.Record
	Body   template.HTML
}

// handleDraftCreate asks the model for a first draft and opens it in a new
// editor session.
func (s *Server) handleDraftCreate(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		http.Error(w, "drafting is not configured", http.StatusServiceUnavailable)
		return
	}
	var spec generator.Spec
	if err := decodeJSON(r, &spec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	gen := generator.NewSession(id, spec, s.agent)
	ctx, cancel := context.WithTimeout(r.Context(), draftTimeout)
	defer cancel()
	draft, err := gen.Propose(ctx)
	if err != nil {
		s.draftFailed(w, r, err)
		return
	}
	sess, err := editor.OpenSession(id, draft.Doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	e := &entry{editor: sess, draft: gen}
	s.sessions.set(id, e)
	s.writeSnapshot(w, r, e)
}

// handleDraftRevise regenerates the draft from a comment and replaces the
// session's document with it.
func (s *Server) handleDraftRevise(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req reviseReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		http.Error(w, "session has no draft", http.StatusNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), draftTimeout)
	defer cancel()
	draft, err := e.draft.Revise(ctx, req.Comment)
	if err != nil {
		s.draftFailed(w, r, err)
		return
	}
	if err := e.editor.Load(draft.Doc); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeSnapshot(w, r, e)
}

func (s *Server) draftFailed(w http.ResponseWriter, r *http.Request, err error) {
	if code := statusFor(err); code != http.StatusInternalServerError {
		http.Error(w, err.Error(), code)
		return
	}
	s.logger.WithError(err).WithField("path", r.URL.Path).Warn("draft generation failed")
	http.Error(w, err.Error(), http.StatusBadGateway)
}

// handlePostList pages through posts. Only published posts are listed
// unless status asks for drafts or all, which needs a signed-in author.
func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	q := post.Query{
		Status:     post.Status(qv.Get("status")),
		CategoryID: qv.Get("category"),
		Search:     qv.Get("q"),
	}
	q.Page, _ = strconv.Atoi(qv.Get("page"))
	q.Limit, _ = strconv.Atoi(qv.Get("limit"))
	q = q.Normalized()

	posts, total, err := s.posts.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, postListResp{Posts: posts, Total: total, Page: q.Page, Limit: q.Limit})
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleCategorySave(w http.ResponseWriter, r *http.Request) {
	var c post.Category
	if err := decodeJSON(r, &c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	saved, err := s.posts.SaveCategory(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, saved)
}

func (s *Server) handleBlogPost(w http.ResponseWriter, r *http.Request) {
	rec, body, err := s.posts.Published(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.opts.SanitizeHTML {
		body = renderer.Sanitize(body)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view := blogView{
		Summary: s.posts.Summarize(r.Context(), rec),
		Record:  rec,
		Body:    template.HTML(body),
	}
	if err := blogPage.Execute(w, view); err != nil {
		s.logger.WithError(err).WithField("slug", rec.Slug).Error("render blog page")
	}
}
