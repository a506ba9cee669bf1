package cmd

import (
	"fmt"
	"strings"

	"github.com/sitelabel/annotator/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}
	cmd.Flags().BoolP("short", "s", false, "print just the version number")
	return cmd
}

func runVersion(cmd *cobra.Command, args []string) {
	short, _ := cmd.Flags().GetBool("short")

	out := cmd.OutOrStdout()
	if short {
		fmt.Fprintf(out, "v%s\n", version.Version)
		return
	}

	fmt.Fprintln(out, "annotator")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintf(out, "Version:      v%s\n", version.Version)
	fmt.Fprintf(out, "Git Commit:   %s\n", version.GitCommit)
	fmt.Fprintf(out, "Build Time:   %s\n", version.BuildTime)
	fmt.Fprintf(out, "Go Version:   %s\n", version.GoVersion)
	fmt.Fprintf(out, "OS/Arch:      %s/%s\n", version.OS, version.Arch)
	fmt.Fprintln(out, strings.Repeat("-", 40))
}
