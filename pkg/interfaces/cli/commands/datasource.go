package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/repositories"
	"github.com/vsinha/bomengine/pkg/infrastructure/events"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/sqlstore"
	"github.com/vsinha/bomengine/pkg/logger"
)

var errNoDataSource = errors.New("no data source: set --scenario or --db-driver and --db")

// dataSource is an opened store together with the service running on it
type dataSource struct {
	service    *orchestration.BOMService
	repo       repositories.BOMRepository
	components repositories.ComponentRepository
	events     *events.InMemoryEventStore

	// scenarioDir is set when the data came from CSV files
	scenarioDir string
	close       func() error
}

func (r *rootCommand) openSource(ctx context.Context, cmd *cobra.Command) (*dataSource, error) {
	switch {
	case r.config.DBDriver != "":
		return r.openDatabase(ctx, cmd)
	case r.config.ScenarioDir != "":
		return r.openScenario(ctx, cmd)
	default:
		return nil, errNoDataSource
	}
}

func (r *rootCommand) openDatabase(ctx context.Context, cmd *cobra.Command) (*dataSource, error) {
	dialect, err := sqlstore.ParseDialect(r.config.DBDriver)
	if err != nil {
		return nil, err
	}
	if r.config.DBDSN == "" {
		return nil, fmt.Errorf("--db is required with --db-driver %s", dialect)
	}

	store, err := sqlstore.Open(ctx, dialect, r.config.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	r.printVerbose(cmd, "🗄️  Using %s database\n", dialect)

	return newDataSource(store, store, store, "", store.Close), nil
}

func (r *rootCommand) openScenario(ctx context.Context, cmd *cobra.Command) (*dataSource, error) {
	r.printVerbose(cmd, "📂 Loading scenario from %s\n", r.config.ScenarioDir)

	scenario, err := csv.NewLoader().LoadScenario(r.config.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("error loading scenario: %w", err)
	}

	componentRepo := memory.NewComponentRepository(len(scenario.Components))
	if err := componentRepo.LoadComponents(scenario.Components); err != nil {
		return nil, err
	}
	bomRepo := memory.NewBOMRepository(len(scenario.BOMs))
	if err := bomRepo.LoadBOMs(ctx, scenario.BOMs); err != nil {
		return nil, err
	}

	if r.config.Verbose {
		stats := memory.GetMemoryStats()
		r.printVerbose(cmd, "✅ Loaded %d components and %d BOMs (heap %s)\n",
			len(scenario.Components), len(scenario.BOMs), memory.FormatBytes(stats.AllocBytes))
	}

	return newDataSource(bomRepo, bomRepo, componentRepo, r.config.ScenarioDir, func() error { return nil }), nil
}

func newDataSource(
	repo repositories.BOMRepository,
	writer repositories.BOMWriter,
	components repositories.ComponentRepository,
	scenarioDir string,
	closeFn func() error,
) *dataSource {
	eventStore := events.NewInMemoryEventStore()
	types := []string{events.BOMScaledEvent, events.ByProductRecordedEvent, events.ExpectedYieldUpdatedEvent}
	_ = eventStore.Subscribe(types, &events.HandlerFunc{
		Types: types,
		Fn: func(e events.Event) error {
			logger.Info(context.Background(), "bom event",
				logger.String("type", e.Type()),
				logger.String("stream", e.StreamID()),
			)
			return nil
		},
	})

	return &dataSource{
		service:     orchestration.NewBOMService(repo, writer, eventStore),
		repo:        repo,
		components:  components,
		events:      eventStore,
		scenarioDir: scenarioDir,
		close:       closeFn,
	}
}

// persist writes changed BOMs back to a CSV scenario. Database sources
// commit on every write and need nothing here.
func (d *dataSource) persist(ctx context.Context) error {
	d.events.Wait()
	if d.scenarioDir == "" {
		return nil
	}

	components, err := d.components.GetAllComponents(ctx)
	if err != nil {
		return err
	}
	boms, err := d.repo.ListBOMs(ctx)
	if err != nil {
		return err
	}
	return csv.WriteScenario(d.scenarioDir, &csv.Scenario{Components: components, BOMs: boms})
}

func parseBOMID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid bom id %q: %w", arg, err)
	}
	return id, nil
}
