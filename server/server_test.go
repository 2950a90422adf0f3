package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_cms/document"
	"site_cms/editor"
	"site_cms/generator"
	"site_cms/post"
	"site_cms/store"
)

type testEnv struct {
	srv   *Server
	ts    *httptest.Server
	posts *store.PostStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "cms.db"), nil)
	require.NoError(t, err)
	posts := store.NewPostStore(db)
	require.NoError(t, posts.SaveProfile(context.Background(), "u1", "alice"))

	svc, err := post.NewService(posts, store.NewProfileIdentity(db, "u1"), logger)
	require.NoError(t, err)
	agent, err := generator.NewAgent(generator.MockLLM{}, logger)
	require.NoError(t, err)

	srv, err := New(svc, agent, logger, Options{SanitizeHTML: true})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, ts: ts, posts: posts}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) newSession(t *testing.T, body any) sessionResp {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[sessionResp](t, resp)
}

func (e *testEnv) command(t *testing.T, id string, cmd map[string]any) *http.Response {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/sessions/"+id+"/commands", cmd)
}

func wireDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

const helloWorld = `{"type":"doc","content":[` +
	`{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hello"}]},` +
	`{"type":"paragraph","content":[{"type":"text","text":"World"}]}]}`

func TestNewSessionIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	assert.NotEmpty(t, sess.SessionID)
	assert.Nil(t, sess.Selection)
	doc, err := document.FromWire(sess.Doc)
	require.NoError(t, err)
	assert.True(t, document.Equal(document.Empty(), doc))
	assert.Equal(t, 1, env.srv.sessions.len())
}

func TestEditSaveAndPublish(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	resp := env.command(t, sess.SessionID, map[string]any{"op": "load", "doc": wireDoc(t, helloWorld)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{
		"op":     "select",
		"anchor": map[string]int{"block": 1, "offset": 0},
		"head":   map[string]int{"block": 1, "offset": 5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "toggleMark", "mark": "bold"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decode[sessionResp](t, resp)
	require.NotNil(t, after.Selection)

	resp = env.do(t, http.MethodPost, "/api/sessions/"+sess.SessionID+"/save", map[string]any{
		"title":   "Hello World",
		"status":  "published",
		"excerpt": "<b>Greetings</b> & more",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[post.Record](t, resp)
	assert.Equal(t, "hello-world", rec.Slug)
	assert.Equal(t, "Greetings & more", rec.Excerpt)
	require.NotNil(t, rec.PublishedAt)

	resp = env.do(t, http.MethodGet, "/blog/hello-world", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Hello World</h1>")
	assert.Contains(t, string(page), "<h2>Hello</h2><p><strong>World</strong></p>")

	resp = env.do(t, http.MethodGet, "/api/posts?q=hello", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[postListResp](t, resp)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "alice", list.Posts[0].AuthorName)
	assert.Equal(t, "Uncategorized", list.Posts[0].CategoryName)

	reopened := env.newSession(t, map[string]string{"post_id": rec.ID})
	assert.Equal(t, rec.ID, reopened.PostID)
	assert.False(t, reopened.ContentReset)
	doc, err := document.FromWire(reopened.Doc)
	require.NoError(t, err)
	want := document.Doc(
		document.H(2, document.T("Hello")),
		document.P(document.T("World", document.Bold())),
	)
	assert.True(t, document.Equal(want, doc))
}

func TestRejectedCommandLeavesDocument(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	resp := env.command(t, sess.SessionID, map[string]any{"op": "load", "doc": wireDoc(t, helloWorld)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loaded := decode[sessionResp](t, resp)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "select", "anchor": map[string]int{"block": 0, "offset": 2}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "setBlockType", "block": "heading", "level": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "explode"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "load", "doc": wireDoc(t, `{"type":"doc","content":[{"type":"text","text":"x"}]}`)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[sessionResp](t, resp)
	assert.Equal(t, loaded.Revision, got.Revision)
	a, err := document.FromWire(loaded.Doc)
	require.NoError(t, err)
	b, err := document.FromWire(got.Doc)
	require.NoError(t, err)
	assert.True(t, document.Equal(a, b))
}

func TestOpenMalformedPostResets(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	require.NoError(t, env.posts.Create(context.Background(), &post.Record{
		ID:        "legacy",
		Title:     "Legacy",
		Slug:      "legacy",
		Content:   json.RawMessage(`"<p>old markup</p>"`),
		Status:    post.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	sess := env.newSession(t, map[string]string{"post_id": "legacy"})
	assert.True(t, sess.ContentReset)
	assert.Equal(t, "legacy", sess.PostID)
	require.NotNil(t, sess.Post)
	assert.Equal(t, "Legacy", sess.Post.Title)

	resp := env.do(t, http.MethodGet, "/blog/legacy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<p>old markup</p>")

	resp = env.do(t, http.MethodPost, "/api/sessions", map[string]string{"post_id": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraftPostNotPublic(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	resp := env.do(t, http.MethodPost, "/api/sessions/"+sess.SessionID+"/save", map[string]any{"title": "Secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/blog/secret", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/sessions/"+sess.SessionID+"/save", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/drafts", map[string]any{"topic": "Tracing", "words": 400})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	draft := decode[sessionResp](t, resp)
	require.NotNil(t, draft.Draft)
	assert.Equal(t, "Sample post title", draft.Draft.Title)
	require.Len(t, draft.History, 1)

	doc, err := document.FromWire(draft.Doc)
	require.NoError(t, err)
	assert.Contains(t, document.PlainText(doc), "Topic: Tracing")

	resp = env.do(t, http.MethodPost, "/api/drafts/"+draft.SessionID+"/revise", map[string]string{"comment": "more examples"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	revised := decode[sessionResp](t, resp)
	assert.Greater(t, revised.Revision, draft.Revision)
	assert.Len(t, revised.History, 2)

	resp = env.do(t, http.MethodPost, "/api/drafts", map[string]any{"topic": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	plain := env.newSession(t, nil)
	resp = env.do(t, http.MethodPost, "/api/drafts/"+plain.SessionID+"/revise", map[string]string{"comment": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	resp := env.do(t, http.MethodDelete, "/api/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, env.srv.sessions.len())

	resp = env.do(t, http.MethodGet, "/api/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.newSession(t, nil)

	resp := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "editor_sessions_open"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(post.ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, statusFor(post.ErrUnauthenticated))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(document.Malformed("$", document.ErrInvalidChildType)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestClosedSessionIsGone(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, nil)

	// A delete that closes the session after another request looked it up.
	e, ok := env.srv.sessions.get(sess.SessionID)
	require.True(t, ok)
	e.mu.Lock()
	e.editor.Close()
	e.mu.Unlock()

	_, err := snapshot(e)
	assert.ErrorIs(t, err, editor.ErrClosed)

	resp := env.do(t, http.MethodGet, "/api/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp = env.command(t, sess.SessionID, map[string]any{"op": "clearSelection"})
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/sessions/"+sess.SessionID+"/save", map[string]any{"title": "Late"})
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func (e *testEnv) savePost(t *testing.T, params map[string]any) post.Record {
	t.Helper()
	sess := e.newSession(t, nil)
	resp := e.command(t, sess.SessionID, map[string]any{"op": "load", "doc": wireDoc(t, helloWorld)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/api/sessions/"+sess.SessionID+"/save", params)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[post.Record](t, resp)
}

func TestPostListByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.savePost(t, map[string]any{"title": "Live", "status": "published"})
	env.savePost(t, map[string]any{"title": "Work in progress"})

	resp := env.do(t, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[postListResp](t, resp)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "Live", list.Posts[0].Title)

	resp = env.do(t, http.MethodGet, "/api/posts?status=draft", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decode[postListResp](t, resp)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "Work in progress", list.Posts[0].Title)

	resp = env.do(t, http.MethodGet, "/api/posts?status=all", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decode[postListResp](t, resp)
	assert.EqualValues(t, 2, list.Total)

	resp = env.do(t, http.MethodGet, "/api/posts?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostListClampsPaging(t *testing.T) {
	env := newTestEnv(t)
	env.savePost(t, map[string]any{"title": "Live", "status": "published"})

	resp := env.do(t, http.MethodGet, "/api/posts?limit=1000000&page=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[postListResp](t, resp)
	assert.Equal(t, post.MaxPageSize, list.Limit)
	assert.Empty(t, list.Posts)
	assert.EqualValues(t, 1, list.Total)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	rec := env.savePost(t, map[string]any{"title": "Short lived", "status": "published"})

	resp := env.do(t, http.MethodDelete, "/api/posts/"+rec.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/blog/"+rec.Slug, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/posts/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Travel"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	travel := decode[post.Category](t, resp)
	assert.NotEmpty(t, travel.ID)

	resp = env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []post.Category{travel}, decode[[]post.Category](t, resp))

	env.savePost(t, map[string]any{"title": "Lisbon", "status": "published", "category_id": travel.ID})
	resp = env.do(t, http.MethodGet, "/api/posts?category="+travel.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[postListResp](t, resp)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "Travel", list.Posts[0].CategoryName)
}

func TestBlogPageByline(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.posts.SaveCategory(context.Background(), "c1", "News"))
	rec := env.savePost(t, map[string]any{
		"title":          "Launch",
		"status":         "published",
		"category_id":    "c1",
		"featured_image": "https://example.com/cover.png",
	})
	require.NotNil(t, rec.PublishedAt)

	resp := env.do(t, http.MethodGet, "/blog/launch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, `<img src="https://example.com/cover.png" alt="Launch">`)
	assert.Contains(t, page, rec.PublishedAt.Format("January 2, 2006"))
	assert.Contains(t, page, "by alice in News")
}
