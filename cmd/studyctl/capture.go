package main

import (
	"fmt"
	"io"
	"strings"

	"studycapture/application/services"
	"studycapture/infrastructure/di"
	"studycapture/infrastructure/extract"

	"github.com/spf13/cobra"
)

type captureOptions struct {
	title    string
	noSync   bool
	markdown bool
}

func newCaptureCmd(opts *options) *cobra.Command {
	co := &captureOptions{}

	cmd := &cobra.Command{
		Use:   "capture <text|url>",
		Short: "Classify, store and mirror a passage",
		Long: `capture runs a passage through the same pipeline as POST /capture.
An http(s) argument is fetched and reduced to its text first; the page title
is used as the note title unless --title is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if co.noSync {
				cfg.Features.SyncToNotion = false
			}

			ctx := cmd.Context()
			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = container.Logger.Sync() }()

			mode := extract.ModeText
			if co.markdown {
				mode = extract.ModeMarkdown
			}
			loader := extract.NewLoader(container.Logger, extract.WithMode(mode))
			content, err := loader.Load(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			title := co.title
			if title == "" {
				title = content.Title
			}
			res, err := container.Pipeline.Capture(ctx, services.CaptureRequest{
				Text:      content.Text,
				SourceURL: content.SourceURL,
				PageTitle: title,
			})
			if err != nil {
				return err
			}
			renderCapture(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&co.title, "title", "t", "", "Note title (default: page title or \"Subject - Topic\")")
	cmd.Flags().BoolVar(&co.noSync, "no-sync", false, "Save locally without mirroring")
	cmd.Flags().BoolVar(&co.markdown, "markdown", false, "Keep headings and lists when reducing a fetched page")
	return cmd
}

func renderCapture(w io.Writer, res *services.CaptureResult) {
	heading(w, "✅ Note saved successfully!")
	field(w, "Note", fmt.Sprintf("%d", res.NoteID))
	field(w, "Subject", res.Subject)
	topic := res.Topic
	if res.TopicCreated {
		topic += mutedStyle.Render(" (new)")
	}
	field(w, "Topic", topic)
	field(w, "Keywords", res.Keywords)
	field(w, "Classifier", string(res.ClassificationPath))

	switch {
	case res.SyncedToNotion:
		field(w, "Notion", res.NotionURL)
	case res.Mirror == services.MirrorFailed:
		field(w, "Notion", errorStyle.Render("not mirrored (saved locally)"))
	default:
		field(w, "Notion", mutedStyle.Render(string(res.Mirror)))
	}
}
