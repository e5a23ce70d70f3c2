package cli

import (
	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/bmeta"
)

func newVersionCommand(info bmeta.Info) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version, date and commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bmeta.Fprint(cmd.OutOrStdout(), info) //nolint:wrapcheck
		},
	}
}
