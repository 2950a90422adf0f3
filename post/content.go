package post

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"site_cms/document"
	"site_cms/metrics"
	"site_cms/renderer"
)

// LoadTree extracts the document tree from a record's content field. Absent,
// legacy or structurally invalid content fails with ErrMalformedTree.
func LoadTree(rec Record) (*document.Document, error) {
	raw := []byte(rec.Content)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, document.Malformed("content", errors.New("content is absent"))
	}
	if !gjson.ValidBytes(raw) {
		return nil, document.Malformed("content", errors.New("content is not valid JSON"))
	}
	res := gjson.ParseBytes(raw)
	if res.Type == gjson.String {
		return nil, document.Malformed("content", errors.New("content is a legacy markup string"))
	}
	if t := res.Get("type"); t.String() != string(document.KindDocument) {
		return nil, document.Malformed("content", errors.Wrapf(document.ErrInvalidNodeKind, "root type %q", t.String()))
	}
	return document.Unmarshal(raw)
}

// SaveTree serialises a tree for a record's content field. Trees built by
// the document constructors or an editor session are always valid; anything
// else is checked first.
func SaveTree(doc *document.Document) (json.RawMessage, error) {
	if doc == nil {
		return nil, document.Malformed("", errors.Wrap(document.ErrInvalidNodeKind, "nil document"))
	}
	if err := document.Validate(doc); err != nil {
		return nil, document.Malformed("", err)
	}
	data, err := document.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return json.RawMessage(data), nil
}

// DisplayHTML renders a record's content for the public page. Content that
// does not load strictly is still shown: a legacy markup string as is, and
// anything else through lenient decoding. degraded reports either fallback.
func DisplayHTML(rec Record) (html string, degraded bool, err error) {
	doc, err := LoadTree(rec)
	if err == nil {
		return renderer.Render(doc), false, nil
	}

	raw := []byte(rec.Content)
	if len(raw) == 0 || string(raw) == "null" || !gjson.ValidBytes(raw) {
		metrics.ContentFallbacks.WithLabelValues("empty").Inc()
		return "", true, nil
	}
	if res := gjson.ParseBytes(raw); res.Type == gjson.String {
		metrics.ContentFallbacks.WithLabelValues("legacy").Inc()
		return res.String(), true, nil
	}

	doc, lerr := document.UnmarshalLenient(raw)
	if lerr != nil {
		return "", true, lerr
	}
	metrics.ContentFallbacks.WithLabelValues("lenient").Inc()
	return renderer.Render(doc), true, nil
}
