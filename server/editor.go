package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"site_cms/document"
	"site_cms/editor"
	"site_cms/generator"
	"site_cms/metrics"
	"site_cms/post"
)

type sessionCreateReq struct {
	PostID string `json:"post_id"`
}

type sessionResp struct {
	SessionID string            `json:"session_id"`
	PostID    string            `json:"post_id,omitempty"`
	Revision  int               `json:"revision"`
	Doc       *document.Wire    `json:"doc"`
	Selection *editor.Selection `json:"selection,omitempty"`
	// ContentReset is set when the stored content did not load and the
	// session started from an empty document instead.
	ContentReset bool             `json:"content_reset,omitempty"`
	Post         *post.Record     `json:"post,omitempty"`
	Draft        *generator.Draft `json:"draft,omitempty"`
	History      []generator.Turn `json:"history,omitempty"`
}

// snapshot describes e. The caller holds e.mu. A session closed by a
// concurrent delete yields editor.ErrClosed.
func snapshot(e *entry) (sessionResp, error) {
	sess := e.editor
	if sess.Closed() {
		return sessionResp{}, editor.ErrClosed
	}
	resp := sessionResp{
		SessionID: sess.ID,
		PostID:    sess.PostID,
		Revision:  sess.Revision,
		Doc:       document.ToWire(sess.Serializable()),
	}
	if sel, ok := sess.Selection(); ok {
		resp.Selection = &sel
	}
	if e.draft != nil {
		draft := e.draft.Draft
		resp.Draft = &draft
		resp.History = e.draft.History
	}
	return resp, nil
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, e *entry) {
	resp, err := snapshot(e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	id := uuid.NewString()
	if req.PostID == "" {
		e := &entry{editor: editor.NewSession(id)}
		s.sessions.set(id, e)
		s.writeSnapshot(w, r, e)
		return
	}

	rec, doc, err := s.posts.Open(r.Context(), req.PostID)
	reset := false
	var sess *editor.Session
	switch {
	case err == nil:
		sess, err = editor.OpenSession(id, doc)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	case rec != nil && errors.Is(err, document.ErrMalformedTree):
		sess = editor.NewSession(id)
		reset = true
	default:
		s.fail(w, r, err)
		return
	}
	sess.PostID = rec.ID

	e := &entry{editor: sess}
	s.sessions.set(id, e)
	resp, err := snapshot(e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp.ContentReset = reset
	resp.Post = rec
	writeJSON(w, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	e, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return e, ok
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s.writeSnapshot(w, r, e)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	e, ok := s.sessions.remove(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	e.mu.Lock()
	e.editor.Close()
	e.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionCommand applies one command. A rejected command leaves the
// document as it was.
func (s *Server) handleSessionCommand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var cmd editor.Command
	if err := decodeJSON(r, &cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.editor.Apply(cmd)
	metrics.EditorCommands.WithLabelValues(cmd.Op, metrics.Result(err)).Inc()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeSnapshot(w, r, e)
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var params post.SaveParams
	if err := decodeJSON(r, &params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editor.Closed() {
		s.fail(w, r, editor.ErrClosed)
		return
	}
	if e.editor.PostID != "" {
		params.ID = e.editor.PostID
	}
	rec, err := s.posts.Save(r.Context(), params, e.editor.Serializable())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.editor.PostID = rec.ID
	writeJSON(w, rec)
}
