package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/byproduct"
	"github.com/vsinha/bomengine/pkg/application/services/comparison"
	"github.com/vsinha/bomengine/pkg/application/services/explosion"
	"github.com/vsinha/bomengine/pkg/application/services/loader"
	"github.com/vsinha/bomengine/pkg/application/services/scaling"
	"github.com/vsinha/bomengine/pkg/application/services/yieldanalysis"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/repositories"
	"github.com/vsinha/bomengine/pkg/infrastructure/events"
	"github.com/vsinha/bomengine/pkg/logger"
)

// BOMService coordinates loading, the computation engines and persistence
// for one request at a time
type BOMService struct {
	repo       repositories.BOMRepository
	writer     repositories.BOMWriter
	eventStore events.EventStore

	loader     *loader.Loader
	explosion  *explosion.Engine
	scaling    *scaling.Engine
	byProducts *byproduct.Engine
	yields     *yieldanalysis.Analyzer

	now func() time.Time
}

// NewBOMService wires the engines over a store. eventStore may be nil.
func NewBOMService(
	repo repositories.BOMRepository,
	writer repositories.BOMWriter,
	eventStore events.EventStore,
) *BOMService {
	l := loader.New(repo)
	byProducts := byproduct.NewEngine()
	return &BOMService{
		repo:       repo,
		writer:     writer,
		eventStore: eventStore,
		loader:     l,
		explosion:  explosion.NewEngine(l),
		scaling:    scaling.NewEngine(),
		byProducts: byProducts,
		yields:     yieldanalysis.NewAnalyzer(byProducts),
		now:        time.Now,
	}
}

// RecordActualRequest is an operator's by-product output report
type RecordActualRequest struct {
	RealizedMainOutputQty decimal.Decimal `json:"realized_qty"`
	ActualQuantity        decimal.Decimal `json:"actual_qty"`
	// MainBatch, when set, is used to derive the by-product batch number
	MainBatch string `json:"main_batch,omitempty"`
}

// ByProductOutcome is a recorded by-product output with its yield grade
type ByProductOutcome struct {
	Expectation  entities.ByProductExpectation `json:"expectation"`
	Record       entities.ByProductRecord      `json:"record"`
	YieldPercent decimal.Decimal               `json:"yield_percent"`
	Indicator    entities.YieldIndicator       `json:"indicator"`
}

// ListBOMs returns every stored BOM
func (s *BOMService) ListBOMs(ctx context.Context) ([]*entities.BOM, error) {
	const op = "orchestration.ListBOMs"

	boms, err := s.repo.ListBOMs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return boms, nil
}

// GetBOM loads a single BOM
func (s *BOMService) GetBOM(ctx context.Context, bomID uuid.UUID) (*entities.BOM, error) {
	return s.loader.Load(ctx, bomID)
}

// Explode loads a BOM and expands it. maxDepth zero selects the default.
func (s *BOMService) Explode(ctx context.Context, bomID uuid.UUID, maxDepth int) (*entities.ExplosionResult, error) {
	const op = "orchestration.Explode"
	log := logger.With(logger.Stringer("bom_id", bomID), logger.Int("max_depth", maxDepth))

	root, err := s.loader.Load(ctx, bomID)
	if err != nil {
		log.Warn(ctx, "load bom", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.explosion.Explode(ctx, root, explosion.Options{MaxDepth: maxDepth})
	if err != nil {
		log.Warn(ctx, "explode bom", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug(ctx, "bom exploded",
		logger.Int("levels", res.TotalLevels),
		logger.Int("items", res.TotalItems),
	)
	return res, nil
}

// Scale computes a scale result and, unless it is a preview, commits it as
// one atomic write guarded by the BOM's row version
func (s *BOMService) Scale(ctx context.Context, bomID uuid.UUID, params entities.ScaleParams) (*entities.ScaleResult, error) {
	const op = "orchestration.Scale"
	log := logger.With(logger.Stringer("bom_id", bomID), logger.Bool("preview", params.IsPreview()))

	bom, err := s.loader.Load(ctx, bomID)
	if err != nil {
		log.Warn(ctx, "load bom", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.scaling.Scale(bom, params)
	if err != nil {
		log.Warn(ctx, "scale bom", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if params.IsPreview() {
		return res, nil
	}

	if err := s.writer.ApplyScale(ctx, entities.NewScaleCommit(bom, res)); err != nil {
		log.Error(ctx, "apply scale", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res.Applied = true

	s.publish(bomID, events.BOMScaledEvent, events.BOMScaled{
		BOMID:             bomID,
		OriginalBatchSize: res.OriginalBatchSize,
		NewBatchSize:      res.NewBatchSize,
		ScaleFactor:       res.ScaleFactor,
		ItemCount:         len(res.Items),
		Warnings:          res.Warnings,
	})
	log.Info(ctx, "bom scaled",
		logger.String("factor", res.ScaleFactor.String()),
		logger.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// ExpectedByProducts returns the pending by-product expectations for a
// realized main output
func (s *BOMService) ExpectedByProducts(ctx context.Context, bomID uuid.UUID, realized decimal.Decimal) ([]entities.ByProductExpectation, error) {
	const op = "orchestration.ExpectedByProducts"

	bom, err := s.loader.Load(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	exps, err := s.byProducts.ExpectedQuantities(bom, realized)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return exps, nil
}

// RecordByProductActual reconciles an operator's actual output for one
// by-product line and stores it
func (s *BOMService) RecordByProductActual(ctx context.Context, bomID, itemID uuid.UUID, req RecordActualRequest) (*ByProductOutcome, error) {
	const op = "orchestration.RecordByProductActual"
	log := logger.With(logger.Stringer("bom_id", bomID), logger.Stringer("item_id", itemID))

	exps, err := s.ExpectedByProducts(ctx, bomID, req.RealizedMainOutputQty)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var exp *entities.ByProductExpectation
	for i := range exps {
		if exps[i].ItemID == itemID {
			exp = &exps[i]
			break
		}
	}
	if exp == nil {
		return nil, fmt.Errorf("%s: %w: %s is not a by-product of bom %s", op, entities.ErrItemNotFound, itemID, bomID)
	}

	recorded, err := s.byProducts.RecordActual(*exp, req.ActualQuantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch := ""
	if req.MainBatch != "" {
		if batch, err = byproduct.BatchNumber(req.MainBatch, recorded.ComponentCode); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	record, err := entities.NewByProductRecord(recorded, batch, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writer.RecordByProductActual(ctx, *record); err != nil {
		log.Error(ctx, "record by-product actual", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pct := byproduct.YieldPercent(req.ActualQuantity, recorded.ExpectedQuantity)
	outcome := &ByProductOutcome{
		Expectation:  recorded,
		Record:       *record,
		YieldPercent: pct,
		Indicator:    byproduct.Indicator(pct),
	}

	s.publish(bomID, events.ByProductRecordedEvent, events.ByProductRecorded{
		Record:    *record,
		YieldPct:  pct,
		Indicator: outcome.Indicator,
	})
	log.Info(ctx, "by-product actual recorded",
		logger.String("actual", req.ActualQuantity.String()),
		logger.String("indicator", string(outcome.Indicator)),
	)
	return outcome, nil
}

// ByProductHistory returns the stored actuals of a BOM
func (s *BOMService) ByProductHistory(ctx context.Context, bomID uuid.UUID) ([]entities.ByProductRecord, error) {
	const op = "orchestration.ByProductHistory"

	records, err := s.repo.ListByProductRecords(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// Yield analyzes the theoretical yield of a BOM
func (s *BOMService) Yield(ctx context.Context, bomID uuid.UUID) (*entities.YieldAnalysis, error) {
	const op = "orchestration.Yield"

	bom, err := s.loader.Load(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.yields.Analyze(bom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateExpectedYield stores a new configured yield and returns the
// refreshed analysis
func (s *BOMService) UpdateExpectedYield(ctx context.Context, bomID uuid.UUID, pct decimal.Decimal) (*entities.YieldAnalysis, error) {
	const op = "orchestration.UpdateExpectedYield"

	if err := yieldanalysis.ValidateExpectedYield(pct); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writer.UpdateExpectedYield(ctx, bomID, pct); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(bomID, events.ExpectedYieldUpdatedEvent, events.ExpectedYieldUpdated{
		BOMID:         bomID,
		ExpectedYield: pct,
	})
	return s.Yield(ctx, bomID)
}

// Compare diffs two BOM versions of the same product
func (s *BOMService) Compare(ctx context.Context, idA, idB uuid.UUID) (*entities.BOMComparison, error) {
	const op = "orchestration.Compare"

	if idA == idB {
		return nil, fmt.Errorf("%s: %w", op, entities.ErrSameVersion)
	}
	a, err := s.loader.Load(ctx, idA)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b, err := s.loader.Load(ctx, idB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := comparison.Compare(a, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *BOMService) publish(bomID uuid.UUID, eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}
	stream := events.StreamForBOM(bomID)
	if err := s.eventStore.AppendEvent(stream, events.NewEvent(eventType, stream, data)); err != nil {
		logger.L().Warn("append event",
			logger.String("event_type", eventType),
			logger.ErrorF(err),
		)
	}
}
