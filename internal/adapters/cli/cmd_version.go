package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Example: "  quotes version\n" +
			"  quotes --json version",
		Args: noArgs,
		RunE: func(*cobra.Command, []string) error {
			if r.globals.JSON {
				return mapCommandError(printJSON(r.out, r.build))
			}

			_, err := fmt.Fprintf(r.out, "version=%s commit=%s build_time=%s\n", r.build.Version, r.build.Commit, r.build.BuildTime)

			return mapCommandError(err)
		},
	}
}
