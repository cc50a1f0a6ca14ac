package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newYieldCommand(r *rootCommand) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "yield <bom-id>",
		Short: "Analyze a BOM's theoretical yield, optionally setting the expected yield",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				var res *entities.YieldAnalysis
				if set == "" {
					res, err = src.service.Yield(ctx, bomID)
				} else {
					pct, perr := decimal.NewFromString(set)
					if perr != nil {
						return fmt.Errorf("invalid --set %q: %w", set, perr)
					}
					res, err = src.service.UpdateExpectedYield(ctx, bomID, pct)
					if err == nil {
						err = src.persist(ctx)
					}
				}
				if err != nil {
					return err
				}

				return r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.Yield(w, res, cfg)
				})
			})
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "Store this expected yield percentage before analyzing")
	return cmd
}
