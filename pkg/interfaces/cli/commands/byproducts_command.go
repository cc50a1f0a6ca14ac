package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newByProductsCommand(r *rootCommand) *cobra.Command {
	var realized string

	cmd := &cobra.Command{
		Use:     "byproducts <bom-id>",
		Aliases: []string{"bp"},
		Short:   "Show expected by-product outputs for a realized main output",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			qty, err := decimal.NewFromString(realized)
			if err != nil {
				return fmt.Errorf("invalid --realized %q: %w", realized, err)
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				exps, err := src.service.ExpectedByProducts(ctx, bomID, qty)
				if err != nil {
					return err
				}
				return r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.ByProducts(w, exps, cfg)
				})
			})
		},
	}
	cmd.Flags().StringVar(&realized, "realized", "", "Realized main output quantity")
	_ = cmd.MarkFlagRequired("realized")

	cmd.AddCommand(newRecordCommand(r), newHistoryCommand(r))
	return cmd
}

func newRecordCommand(r *rootCommand) *cobra.Command {
	var (
		itemID   string
		realized string
		actual   string
		batch    string
	)

	cmd := &cobra.Command{
		Use:   "record <bom-id>",
		Short: "Record the actual output of one by-product line",
		Long: `Record compares an operator's actual by-product output against the expected
quantity and grades the yield green (>= 80%), yellow (>= 70%) or red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			item, err := uuid.Parse(itemID)
			if err != nil {
				return fmt.Errorf("invalid --item %q: %w", itemID, err)
			}
			req := orchestration.RecordActualRequest{MainBatch: batch}
			if req.RealizedMainOutputQty, err = decimal.NewFromString(realized); err != nil {
				return fmt.Errorf("invalid --realized %q: %w", realized, err)
			}
			if req.ActualQuantity, err = decimal.NewFromString(actual); err != nil {
				return fmt.Errorf("invalid --actual %q: %w", actual, err)
			}

			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				outcome, err := src.service.RecordByProductActual(ctx, bomID, item, req)
				if err != nil {
					return err
				}
				if src.scenarioDir != "" {
					r.printVerbose(cmd, "⚠️  CSV scenarios do not keep by-product records; use --db to persist them\n")
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "🧪 %s: expected %s, actual %s %s\n",
					outcome.Expectation.ComponentCode,
					outcome.Record.ExpectedQuantity, outcome.Record.ActualQuantity, outcome.Record.UOM)
				fmt.Fprintf(out, "Yield: %s%% (%s)\n", outcome.YieldPercent.StringFixed(2), outcome.Indicator)
				if outcome.Record.BatchNumber != "" {
					fmt.Fprintf(out, "Batch: %s\n", outcome.Record.BatchNumber)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&itemID, "item", "", "By-product item id")
	cmd.Flags().StringVar(&realized, "realized", "", "Realized main output quantity")
	cmd.Flags().StringVar(&actual, "actual", "", "Actual by-product quantity")
	cmd.Flags().StringVar(&batch, "batch", "", "Main batch number, used to derive the by-product batch")
	for _, name := range []string{"item", "realized", "actual"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newHistoryCommand(r *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "history <bom-id>",
		Short: "List recorded by-product outputs of a BOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bomID, err := parseBOMID(args[0])
			if err != nil {
				return err
			}
			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				records, err := src.service.ByProductHistory(ctx, bomID)
				if err != nil {
					return err
				}
				return r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.History(w, records, cfg)
				})
			})
		},
	}
}
