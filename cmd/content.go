package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"site_cms/document"
	"site_cms/markdown"
	"site_cms/renderer"
)

var (
	renderLenient bool
	renderSafe    bool
	importPretty  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Renders a stored document tree (JSON) to HTML",
	Long: `render reads a document tree in its stored JSON form from file, or from
stdin when file is "-" or absent, and writes the HTML to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		decode := document.Unmarshal
		if renderLenient {
			decode = document.UnmarshalLenient
		}
		doc, err := decode(data)
		if err != nil {
			return err
		}
		out := renderer.Render(doc)
		if renderSafe {
			out = renderer.RenderSafe(doc)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Converts Markdown to a document tree (JSON)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		doc, err := markdown.Import(data)
		if err != nil {
			return err
		}
		return writeTree(cmd.OutOrStdout(), doc, importPretty)
	},
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(args[0])
	return data, errors.Wrapf(err, "read %s", args[0])
}

func writeTree(w io.Writer, doc *document.Document, pretty bool) error {
	data, err := document.Marshal(doc)
	if err != nil {
		return err
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return errors.Wrap(err, "indent tree")
		}
		data = buf.Bytes()
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func init() {
	renderCmd.Flags().BoolVar(&renderLenient, "lenient", false, "render unknown node kinds through their children instead of failing")
	renderCmd.Flags().BoolVar(&renderSafe, "safe", false, "sanitise the output HTML")
	importCmd.Flags().BoolVar(&importPretty, "pretty", false, "indent the JSON output")
	rootCmd.AddCommand(renderCmd, importCmd)
}
