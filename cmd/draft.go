package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"site_cms/generator"
)

var (
	draftSpec   generator.Spec
	draftAsTree bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Drafts a post with the configured LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		llm, err := generator.NewLLMFromConfig(&appConfig.LLM)
		if err != nil {
			return err
		}
		agent, err := generator.NewAgent(llm, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		draft, err := generator.NewSession("cli", draftSpec, agent).Propose(ctx)
		if err != nil {
			return err
		}
		if draftAsTree {
			return writeTree(cmd.OutOrStdout(), draft.Doc, true)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s\n", draft.Title, draft.Markdown)
		return err
	},
}

func init() {
	f := draftCmd.Flags()
	f.StringVar(&draftSpec.Topic, "topic", "", "post topic")
	f.StringSliceVar(&draftSpec.Outline, "outline", nil, "outline sections, comma separated")
	f.IntVar(&draftSpec.Words, "words", 0, "target length in words")
	f.StringVar(&draftSpec.Tone, "tone", "", "tone of voice")
	f.StringVar(&draftSpec.Audience, "audience", "", "intended readers")
	f.StringSliceVar(&draftSpec.Constraints, "constraint", nil, "extra requirement, repeatable")
	f.BoolVar(&draftAsTree, "tree", false, "print the document tree instead of Markdown")
	_ = draftCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(draftCmd)
}
