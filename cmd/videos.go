package cmd

import (
	"fmt"
	"strings"

	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/timecode"
	"github.com/spf13/cobra"
)

func newVideosCmd(a *app) *cobra.Command {
	var subfolder string

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List the videos in scope with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.scope(subfolder); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := a.services.Annotation.Entries()
			for _, e := range entries {
				fmt.Fprintf(out, "%4d. %s [%s]", e.Index+1, e.DisplayName, e.Status)
				if e.Segments > 0 {
					fmt.Fprintf(out, " %d segments", e.Segments)
				}
				fmt.Fprintln(out)
			}

			p := a.services.Annotation.Progress()
			fmt.Fprintf(out, "\n%d/%d annotated (%.1f%%)\n", p.Annotated, p.Total, p.Ratio*100)
			return nil
		},
	}

	cmd.Flags().StringVar(&subfolder, "subfolder", "", "limit to one subfolder of the video directory")
	return cmd
}

func newSubfoldersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subfolders",
		Short: "List the subfolders of the video directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			videos := a.services.Catalog
			for _, dir := range videos.ListSubfolders() {
				fmt.Fprintf(out, "%s (%d videos)\n", videos.SubfolderDisplayName(dir), videos.VideoCountIn(dir))
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video>",
		Short: "Print the annotation record of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := a.resolveVideo(args[0])
			if err != nil {
				return err
			}

			printAnnotation(cmd, a.services.Catalog.DisplayName(video), a.services.Annotation.Open(cmd.Context(), video))
			return nil
		},
	}
}

func newNextCmd(a *app) *cobra.Command {
	var (
		from      int
		subfolder string
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the next unannotated video in scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.scope(subfolder); err != nil {
				return err
			}

			// --from is 1-based like the videos listing
			entry, ok := a.services.Annotation.NextUnannotated(from - 1)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no unannotated videos left")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", entry.Index+1, entry.RelPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "search after this position of the videos listing")
	cmd.Flags().StringVar(&subfolder, "subfolder", "", "limit to one subfolder of the video directory")
	return cmd
}

func printAnnotation(cmd *cobra.Command, name string, a *models.Annotation) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "  duration:  %s\n", timecode.Format(a.Duration))
	fmt.Fprintf(out, "  status:    %s\n", a.Status)
	if a.Annotator != "" {
		fmt.Fprintf(out, "  annotator: %s\n", a.Annotator)
	}
	if a.Timestamp != "" {
		fmt.Fprintf(out, "  saved:     %s\n", a.Timestamp)
	}

	if len(a.Segments) == 0 {
		fmt.Fprintln(out, "  no segments")
		return
	}
	for i, seg := range a.Segments {
		fmt.Fprintf(out, "  [%d] %s - %s", i, timecode.Format(seg.StartTime), timecode.Format(seg.EndTime))
		if seg.Noun != "" || seg.Verb != "" {
			fmt.Fprintf(out, "  %s/%s", seg.Noun, seg.Verb)
		}
		if seg.Description != "" {
			fmt.Fprintf(out, "  %s", seg.Description)
		}
		if len(seg.Tags) > 0 {
			fmt.Fprintf(out, "  #%s", strings.Join(seg.Tags, " #"))
		}
		fmt.Fprintln(out)
	}
}
