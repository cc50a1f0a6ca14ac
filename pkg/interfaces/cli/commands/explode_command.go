package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/config"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newExplodeCommand(r *rootCommand) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "explode <bom-id>",
		Short: "Expand a BOM into per-level component requirements",
		Long: `Explode walks the BOM tree depth first, multiplying quantities down each path
relative to each sub-BOM's output quantity, and prints every level plus a raw
materials summary. Scrap percentages are reported but not applied.`,
		Example: `  bomengine explode 4f3c... --scenario ./testdata/bakery
  bomengine explode 4f3c... --scenario ./testdata/bakery -f xlsx -o explosion.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-depth") {
				if maxDepth < 1 {
					return fmt.Errorf("%w: --max-depth must be at least 1, got %d", entities.ErrInvalidParameter, maxDepth)
				}
			} else if env := config.C(); env != nil {
				maxDepth = env.Engine.MaxDepth()
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				r.printVerbose(cmd, "🚀 Exploding BOM %s (max depth %d)...\n", bomID, maxDepth)

				start := time.Now()
				res, err := src.service.Explode(ctx, bomID, maxDepth)
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				return r.render(cmd, elapsed, func(w io.Writer, cfg output.Config) error {
					return output.Explosion(w, res, cfg)
				})
			})
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Deepest level to expand, 1 to 10 (defaults to the configured depth)")
	return cmd
}
