package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var subfolder string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every annotated video into the export bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.scope(subfolder); err != nil {
				return err
			}

			result, err := a.services.Export.ExportAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exported %d videos to %s\n", result.TotalVideos, result.Path)
			for _, video := range result.Skipped {
				fmt.Fprintf(out, "skipped unreadable record of %s\n", a.services.Catalog.Rel(video))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subfolder, "subfolder", "", "export only one subfolder of the video directory")
	return cmd
}
