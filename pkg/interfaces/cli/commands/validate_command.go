package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/domain/services"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
)

func newValidateCommand(r *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the BOM catalogue for cycles, unknown components and duplicate lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				components, err := src.components.GetAllComponents(ctx)
				if err != nil {
					return err
				}
				boms, err := src.repo.ListBOMs(ctx)
				if err != nil {
					return err
				}

				res := services.NewBOMValidator().ValidateCatalog(components, boms)
				if err := r.render(cmd, 0, func(w io.Writer, cfg output.Config) error {
					return output.Validation(w, res, cfg)
				}); err != nil {
					return err
				}
				if !res.Valid() {
					return fmt.Errorf("catalog has %d error(s)", len(res.Errors))
				}
				return nil
			})
		},
	}
}
