package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newListCommand(r *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the BOMs of the data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				boms, err := src.service.ListBOMs(ctx)
				if err != nil {
					return err
				}
				return r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.BOMs(w, boms, cfg)
				})
			})
		},
	}
}
