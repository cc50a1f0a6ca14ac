package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/config"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

type scaleFlags struct {
	target   string
	factor   string
	decimals int32
	apply    bool
}

func newScaleCommand(r *rootCommand) *cobra.Command {
	var flags scaleFlags

	cmd := &cobra.Command{
		Use:   "scale <bom-id>",
		Short: "Rescale a BOM to a new batch size",
		Long: `Scale multiplies every material line by a factor, given directly with --factor
or derived from --target / output quantity. Results are a preview unless --apply
is set, in which case the new quantities are written back to the data source.`,
		Example: `  bomengine scale 4f3c... --target 250
  bomengine scale 4f3c... --factor 1.5 --decimals 2 --apply`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			params, err := flags.params(cmd)
			if err != nil {
				return err
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				start := time.Now()
				res, err := src.service.Scale(ctx, bomID, params)
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				if res.Applied {
					if err := src.persist(ctx); err != nil {
						return fmt.Errorf("failed to persist scaled bom: %w", err)
					}
					r.printVerbose(cmd, "✅ Scale applied to BOM %s\n", bomID)
				}

				return r.render(cmd, elapsed, func(w io.Writer, cfg output.Config) error {
					return output.Scale(w, res, cfg)
				})
			})
		},
	}

	cmd.Flags().StringVar(&flags.target, "target", "", "Target batch size")
	cmd.Flags().StringVar(&flags.factor, "factor", "", "Scale factor")
	cmd.Flags().Int32Var(&flags.decimals, "decimals", 3, "Decimal places to round scaled quantities to")
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "Write the scaled quantities back instead of previewing")
	cmd.MarkFlagsMutuallyExclusive("target", "factor")
	cmd.MarkFlagsOneRequired("target", "factor")
	return cmd
}

func (f scaleFlags) params(cmd *cobra.Command) (entities.ScaleParams, error) {
	var params entities.ScaleParams

	if f.target != "" {
		target, err := decimal.NewFromString(f.target)
		if err != nil {
			return params, fmt.Errorf("invalid --target %q: %w", f.target, err)
		}
		params.TargetBatchSize = &target
	}
	if f.factor != "" {
		factor, err := decimal.NewFromString(f.factor)
		if err != nil {
			return params, fmt.Errorf("invalid --factor %q: %w", f.factor, err)
		}
		params.ScaleFactor = &factor
	}

	decimals := f.decimals
	if !cmd.Flags().Changed("decimals") {
		if env := config.C(); env != nil {
			decimals = env.Engine.RoundDecimals()
		}
	}
	preview := !f.apply
	params.RoundDecimals = &decimals
	params.PreviewOnly = &preview
	return params, nil
}
