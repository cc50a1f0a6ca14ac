package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/domain/services"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/sqlstore"
)

func newImportCommand(r *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "import [scenario-dir]",
		Short: "Load a CSV scenario into the database",
		Long: `Import reads components.csv, boms.csv and bom_items.csv from a scenario
directory and upserts them into the database selected by --db-driver and --db.
Migrations are applied first.`,
		Example: `  bomengine import ./testdata/bakery --db-driver sqlite --db bom.db`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir := r.config.ScenarioDir
			if len(args) == 1 {
				dir = expandHome(args[0])
			}
			if dir == "" {
				return fmt.Errorf("a scenario directory is required")
			}
			if r.config.DBDriver == "" || r.config.DBDSN == "" {
				return fmt.Errorf("--db-driver and --db are required")
			}

			scenario, err := csv.NewLoader().LoadScenario(dir)
			if err != nil {
				return fmt.Errorf("error loading scenario: %w", err)
			}

			if res := services.NewBOMValidator().ValidateCatalog(scenario.Components, scenario.BOMs); !res.Valid() {
				for _, msg := range res.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", msg)
				}
				return fmt.Errorf("scenario has %d error(s), nothing imported", len(res.Errors))
			}

			dialect, err := sqlstore.ParseDialect(r.config.DBDriver)
			if err != nil {
				return err
			}
			store, err := sqlstore.Open(ctx, dialect, r.config.DBDSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			if err := store.Import(ctx, scenario.Components, scenario.BOMs); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d components and %d BOMs into %s database\n",
				len(scenario.Components), len(scenario.BOMs), dialect)
			return nil
		},
	}
}
