package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-postpress/cmd/postpress/internal/bootstrap"
	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/markdown"
	"github.com/goliatone/go-postpress/internal/media"
)

type publishFlags struct {
	title       string
	description string
	author      string
	tags        string
	template    string
	cover       string
	thumbnail   string
}

func newPublishCommand(state *cliState) *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish <file.md>",
		Short: "Publish a markdown file without going through HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := runPublish(cmd.Context(), state, args[0], flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.title, "title", "", "post title (default: frontmatter title, then the file name)")
	cmd.Flags().StringVar(&flags.description, "description", "", "post description")
	cmd.Flags().StringVar(&flags.author, "author", "", "post author")
	cmd.Flags().StringVar(&flags.tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&flags.template, "template", "", "template identifier (1, 2 or 3)")
	cmd.Flags().StringVar(&flags.cover, "cover", "", "cover image file")
	cmd.Flags().StringVar(&flags.thumbnail, "thumbnail", "", "thumbnail image file")
	return cmd
}

func runPublish(ctx context.Context, state *cliState, path string, flags *publishFlags) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	title := strings.TrimSpace(flags.title)
	if title == "" {
		fm, _ := markdown.SplitFrontMatter(string(source))
		title = strings.TrimSpace(fm.Title)
	}
	if title == "" {
		title = bootstrap.TitleFromFilename(path)
	}

	msg := publishcmd.PublishPostCommand{
		Title:       title,
		Markdown:    string(source),
		Description: flags.description,
		Author:      flags.author,
		Tags:        flags.tags,
		Template:    flags.template,
	}

	for field, file := range map[string]string{media.FieldCover: flags.cover, media.FieldThumbnail: flags.thumbnail} {
		if file == "" {
			continue
		}
		handle, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", field, err)
		}
		defer handle.Close()
		msg.Attachments = append(msg.Attachments, media.Attachment{
			Field:    field,
			Filename: handle.Name(),
			Content:  handle,
		})
	}

	module, err := moduleBuilder(state.cfg, state.opts)
	if err != nil {
		return "", err
	}
	defer module.Module.Close(context.Background())

	unsubscribe := module.Module.Container().SubscribeCommands()
	defer unsubscribe()

	var page string
	msg.ResultCallback = func(env publishcmd.ResultEnvelope) {
		if env.Result != nil {
			page = env.Result.URL
		}
	}
	if err := dispatcher.Dispatch(ctx, msg); err != nil {
		return "", err
	}
	module.Logger.Info("cli.publish.completed", "file", path, "page", page)
	return page, nil
}
