package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/boardbot/core/buildinfo"
)

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "boardbot", buildinfo.String())
		},
	}
}
