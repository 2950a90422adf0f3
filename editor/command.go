package editor

import (
	"github.com/pkg/errors"

	"site_cms/document"
)

// Command is a toolbar action in serialisable form, as sent by the admin UI.
type Command struct {
	Op     string         `json:"op"`
	Mark   string         `json:"mark,omitempty"`
	Href   string         `json:"href,omitempty"`
	Color  string         `json:"color,omitempty"`
	Block  string         `json:"block,omitempty"`
	Level  int            `json:"level,omitempty"`
	Align  string         `json:"align,omitempty"`
	Src    string         `json:"src,omitempty"`
	Alt    string         `json:"alt,omitempty"`
	Text   string         `json:"text,omitempty"`
	Anchor *Position      `json:"anchor,omitempty"`
	Head   *Position      `json:"head,omitempty"`
	Doc    *document.Wire `json:"doc,omitempty"`
}

const (
	OpSelect         = "select"
	OpClearSelection = "clearSelection"
	OpToggleMark     = "toggleMark"
	OpSetColor       = "setColor"
	OpSetBlockType   = "setBlockType"
	OpSetTextAlign   = "setTextAlign"
	OpInsertImage    = "insertImage"
	OpInsertText     = "insertText"
	OpSplitBlock     = "splitBlock"
	OpLoad           = "load"
)

// Apply dispatches a command to the matching session method.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Op {
	case OpSelect:
		if cmd.Anchor == nil {
			return errors.Wrap(document.ErrUnsupportedOperation, "select without anchor")
		}
		head := cmd.Anchor
		if cmd.Head != nil {
			head = cmd.Head
		}
		return s.Select(*cmd.Anchor, *head)
	case OpClearSelection:
		s.ClearSelection()
		return nil
	case OpToggleMark:
		return s.ToggleMark(document.Mark{
			Type:  document.MarkType(cmd.Mark),
			Href:  cmd.Href,
			Color: cmd.Color,
		})
	case OpSetColor:
		return s.SetColor(cmd.Color)
	case OpSetBlockType:
		return s.SetBlockType(document.Kind(cmd.Block), cmd.Level)
	case OpSetTextAlign:
		return s.SetTextAlign(document.Align(cmd.Align))
	case OpInsertImage:
		return s.InsertImage(cmd.Src, cmd.Alt)
	case OpInsertText:
		return s.InsertText(cmd.Text)
	case OpSplitBlock:
		return s.SplitBlock()
	case OpLoad:
		if cmd.Doc == nil {
			return document.Malformed("", errors.Wrap(document.ErrInvalidNodeKind, "missing doc"))
		}
		doc, err := document.FromWire(cmd.Doc)
		if err != nil {
			return err
		}
		return s.Load(doc)
	default:
		return errors.Wrapf(document.ErrUnsupportedOperation, "command %q", cmd.Op)
	}
}
