package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newCompareCommand(r *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <bom-id-a> <bom-id-b>",
		Short: "Diff two BOM versions of the same product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idA, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			idB, err := parseBOMID(args[1])
			if err != nil {
				return err
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				res, err := src.service.Compare(ctx, idA, idB)
				if err != nil {
					return err
				}
				return r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.Comparison(w, res, cfg)
				})
			})
		},
	}
}
