package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/timecode"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		subfolder string
		footage   bool
		listPath  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print status counts, progress and footage estimates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.scope(subfolder); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := a.services.Annotation.Progress()
			for _, s := range models.Statuses {
				fmt.Fprintf(out, "%s: %d\n", s, p.Counts[s])
			}
			fmt.Fprintf(out, "annotated: %d/%d (%.1f%%)\n", p.Annotated, p.Total, p.Ratio*100)

			if !footage && listPath == "" {
				return nil
			}

			report := a.services.Stats.Footage()
			printFootage(cmd, report)

			if listPath != "" {
				if err := a.services.Stats.WriteVideoList(listPath, report); err != nil {
					return err
				}
				fmt.Fprintf(out, "video list written to %s\n", listPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subfolder, "subfolder", "", "count only one subfolder of the video directory")
	cmd.Flags().BoolVar(&footage, "footage", false, "estimate total footage and review time")
	cmd.Flags().StringVar(&listPath, "list", "", "write the numbered video list to this file")
	return cmd
}

func printFootage(cmd *cobra.Command, r *models.FootageReport) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("-", 60)

	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "root:        %s\n", r.Root)
	fmt.Fprintf(out, "videos:      %d\n", r.TotalVideos)
	fmt.Fprintf(out, "clip length: %ss\n", strconv.FormatFloat(r.ClipSeconds, 'f', -1, 64))
	fmt.Fprintf(out, "footage:     %s\n", timecode.Human(r.TotalSeconds))

	if len(r.Estimates) > 0 {
		fmt.Fprintln(out, "review time:")
		for _, e := range r.Estimates {
			fmt.Fprintf(out, "  %sx  %s\n", strconv.FormatFloat(e.Factor, 'f', -1, 64), timecode.Human(e.Seconds))
		}
	}

	if len(r.Folders) > 0 {
		fmt.Fprintln(out, "per folder:")
		for _, f := range r.Folders {
			fmt.Fprintf(out, "  %s: %d videos, %s\n", f.Name, f.Videos, timecode.Human(f.Seconds))
		}
	}
	fmt.Fprintln(out, rule)
}
