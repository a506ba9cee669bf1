package cmd

import (
	"fmt"
	"strings"

	"github.com/sitelabel/annotator/internal/models"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	names := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		names = append(names, string(s))
	}

	return &cobra.Command{
		Use:   "status <video> <status>",
		Short: "Set the status of a video",
		Long: fmt.Sprintf(`Set the status of a video to one of %s.

English names are accepted as well: unannotated, annotated, not-needed.
A not-needed video must be reset to unannotated before it can be annotated.`, strings.Join(names, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := a.resolveVideo(args[0])
			if err != nil {
				return err
			}

			status, ok := models.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q, expected one of %s", args[1], strings.Join(names, ", "))
			}

			annotation, err := a.services.Annotation.SetStatus(cmd.Context(), video, status)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", a.services.Catalog.DisplayName(video), annotation.Status)
			return nil
		},
	}
}
