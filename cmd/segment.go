package cmd

import (
	"fmt"
	"strconv"

	"github.com/sitelabel/annotator/internal/models"
	"github.com/spf13/cobra"
)

func newSegmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Add, edit or delete segments of a video",
	}

	cmd.AddCommand(
		newSegmentAddCmd(a),
		newSegmentDeleteCmd(a),
		newSegmentEditCmd(a),
	)
	return cmd
}

func newSegmentAddCmd(a *app) *cobra.Command {
	var in models.SegmentInput

	cmd := &cobra.Command{
		Use:   "add <video>",
		Short: "Add a segment",
		Example: `  annotator segment add batch-03/1.mp4 --start 00:02.000 --end 00:05.000 \
      --noun 钢梁 --verb 吊装 --desc "crane lifts the beam" --tag crane`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := a.resolveVideo(args[0])
			if err != nil {
				return err
			}

			annotation, err := a.services.Annotation.AddSegment(cmd.Context(), video, in)
			if err != nil {
				return err
			}

			printAnnotation(cmd, a.services.Catalog.DisplayName(video), annotation)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Start, "start", "", "start time, MM:SS.mmm")
	cmd.Flags().StringVar(&in.End, "end", "", "end time, MM:SS.mmm")
	cmd.Flags().StringVar(&in.Description, "desc", "", "description")
	cmd.Flags().StringVar(&in.Noun, "noun", "", "noun")
	cmd.Flags().StringVar(&in.Verb, "verb", "", "verb")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag, repeatable")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newSegmentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video> <index|last>",
		Short: "Delete a segment by index, or the newest one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := a.resolveVideo(args[0])
			if err != nil {
				return err
			}

			var annotation *models.Annotation
			if args[1] == "last" {
				annotation, err = a.services.Annotation.DeleteLastSegment(cmd.Context(), video)
			} else {
				index, convErr := strconv.Atoi(args[1])
				if convErr != nil {
					return fmt.Errorf("segment index must be a number or \"last\", got %q", args[1])
				}
				annotation, err = a.services.Annotation.DeleteSegment(cmd.Context(), video, index)
			}
			if err != nil {
				return err
			}

			printAnnotation(cmd, a.services.Catalog.DisplayName(video), annotation)
			return nil
		},
	}
}

func newSegmentEditCmd(a *app) *cobra.Command {
	var (
		desc, noun, verb string
		tags             []string
	)

	cmd := &cobra.Command{
		Use:   "edit <video> <index>",
		Short: "Change the description, noun, verb or tags of a segment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := a.resolveVideo(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("segment index must be a number, got %q", args[1])
			}

			var patch models.SegmentPatch
			flags := cmd.Flags()
			if flags.Changed("desc") {
				patch.Description = &desc
			}
			if flags.Changed("noun") {
				patch.Noun = &noun
			}
			if flags.Changed("verb") {
				patch.Verb = &verb
			}
			if flags.Changed("tag") {
				patch.Tags = tags
			}

			annotation, err := a.services.Annotation.UpdateSegment(cmd.Context(), video, index, patch)
			if err != nil {
				return err
			}

			printAnnotation(cmd, a.services.Catalog.DisplayName(video), annotation)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&noun, "noun", "", "noun")
	cmd.Flags().StringVar(&verb, "verb", "", "verb")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable; replaces all tags")
	return cmd
}
