package editor

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_cms/document"
)

func TestApplyCommands(t *testing.T) {
	script := `[
		{"op":"select","anchor":{"block":0,"offset":0}},
		{"op":"insertText","text":"Read the docs"},
		{"op":"select","anchor":{"block":0,"offset":9},"head":{"block":0,"offset":13}},
		{"op":"toggleMark","mark":"link","href":"https://example.com/docs"},
		{"op":"toggleMark","mark":"underline"},
		{"op":"setBlockType","block":"heading","level":3}
	]`

	var cmds []Command
	require.NoError(t, json.Unmarshal([]byte(script), &cmds))

	s := NewSession("s")
	for _, cmd := range cmds {
		require.NoError(t, s.Apply(cmd), cmd.Op)
	}

	want := document.Doc(document.H(3,
		document.T("Read the "),
		document.T("docs", document.Link("https://example.com/docs"), document.Underline()),
	))
	assert.True(t, document.Equal(want, s.Serializable()))
}

func TestApplyLoad(t *testing.T) {
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(`{"op":"load","doc":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]}}`), &cmd))

	s := NewSession("s")
	require.NoError(t, s.Apply(cmd))
	assert.True(t, document.Equal(document.Doc(document.P(document.T("x"))), s.Serializable()))

	require.NoError(t, json.Unmarshal([]byte(`{"op":"load","doc":{"type":"doc","content":[{"type":"table"}]}}`), &cmd))
	assert.True(t, errors.Is(s.Apply(cmd), document.ErrMalformedTree))
}

func TestApplyUnknownCommand(t *testing.T) {
	s := NewSession("s")
	err := s.Apply(Command{Op: "strike"})
	assert.True(t, errors.Is(err, document.ErrUnsupportedOperation))

	err = s.Apply(Command{Op: OpToggleMark, Mark: "code"})
	assert.True(t, errors.Is(err, document.ErrUnsupportedOperation))
}
