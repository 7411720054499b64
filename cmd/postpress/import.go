package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-postpress/cmd/postpress/internal/bootstrap"
	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/markdown"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/internal/util"
)

type importFlags struct {
	pattern   string
	recursive bool
	template  string
	dryRun    bool
}

type importSummary struct {
	Published []string
	Skipped   []string
}

func newImportCommand(state *cliState) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Publish every markdown file in a directory, skipping posts that already exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runImport(cmd.Context(), state, args[0], flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, page := range summary.Published {
				fmt.Fprintln(out, page)
			}
			fmt.Fprintf(out, "published %d, skipped %d\n", len(summary.Published), len(summary.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.pattern, "pattern", "*.md", "glob matched against file names")
	cmd.Flags().BoolVar(&flags.recursive, "recursive", false, "descend into sub-directories")
	cmd.Flags().StringVar(&flags.template, "template", "", "template for documents without a frontmatter template")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list the documents without publishing")
	return cmd
}

func runImport(ctx context.Context, state *cliState, dir string, flags *importFlags) (importSummary, error) {
	var summary importSummary

	loader := markdown.NewLoader(os.DirFS(dir), markdown.LoaderConfig{
		Pattern:   flags.pattern,
		Recursive: flags.recursive,
	})
	docs, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return summary, fmt.Errorf("load %s: %w", dir, err)
	}

	module, err := moduleBuilder(state.cfg, state.opts)
	if err != nil {
		return summary, err
	}
	defer module.Module.Close(context.Background())

	for _, doc := range docs {
		title := strings.TrimSpace(doc.FrontMatter.Title)
		if title == "" {
			title = bootstrap.TitleFromFilename(doc.Path)
		}
		if flags.dryRun {
			module.Logger.Info("cli.import.planned", "file", doc.Path, "title", title)
			summary.Skipped = append(summary.Skipped, doc.Path)
			continue
		}

		var page string
		err := module.Module.Execute(ctx, publishcmd.PublishPostCommand{
			Title:    title,
			Markdown: doc.Source,
			Template: util.FirstNonEmpty(doc.FrontMatter.Template, flags.template),
			ResultCallback: func(env publishcmd.ResultEnvelope) {
				if env.Result != nil {
					page = env.Result.URL
				}
			},
		})
		switch posts.KindOf(err) {
		case posts.KindUnknown:
			if err != nil {
				return summary, fmt.Errorf("publish %s: %w", doc.Path, err)
			}
			summary.Published = append(summary.Published, page)
		case posts.KindConflict, posts.KindValidation:
			module.Logger.Warn("cli.import.skipped", "file", doc.Path, "error", err)
			summary.Skipped = append(summary.Skipped, doc.Path)
		default:
			return summary, fmt.Errorf("publish %s: %w", doc.Path, err)
		}
	}
	return summary, nil
}
