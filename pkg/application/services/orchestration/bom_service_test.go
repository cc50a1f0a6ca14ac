package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/repositories/mocks"
	"github.com/vsinha/bomengine/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func TestServiceScale(t *testing.T) {
	t.Parallel()

	type deps struct {
		writer *mocks.MockBOMWriter
		events *events.InMemoryEventStore
	}

	repo, _, root := testhelpers.BuildBakeryTestData()
	newSvc := func(d deps) *BOMService {
		return NewBOMService(repo, d.writer, d.events)
	}

	type testCase struct {
		name   string
		bomID  uuid.UUID
		params entities.ScaleParams
		setup  func(d deps)
		assert func(t *testing.T, res *entities.ScaleResult, err error, d deps)
	}

	tests := []testCase{
		{
			name:   "preview never writes",
			bomID:  root.ID,
			params: entities.ScaleParams{TargetBatchSize: ptr(dec("150"))},
			setup:  func(d deps) {},
			assert: func(t *testing.T, res *entities.ScaleResult, err error, d deps) {
				require.NoError(t, err)
				assert.False(t, res.Applied)
				assert.True(t, res.ScaleFactor.Equal(dec("1.5")))
				d.writer.AssertNotCalled(t, "ApplyScale", mock.Anything, mock.Anything)

				all, _ := d.events.ReadAllEvents(0)
				assert.Empty(t, all)
			},
		},
		{
			name:   "commit applies atomically and emits an event",
			bomID:  root.ID,
			params: entities.ScaleParams{ScaleFactor: ptr(dec("2")), PreviewOnly: ptr(false)},
			setup: func(d deps) {
				d.writer.
					On("ApplyScale", mock.Anything, mock.MatchedBy(func(c entities.ScaleCommit) bool {
						return c.BOMID == root.ID &&
							c.ExpectedRowVersion == 1 &&
							c.NewOutputQty.Equal(dec("200")) &&
							len(c.Items) == 3
					})).
					Return(nil).
					Once()
			},
			assert: func(t *testing.T, res *entities.ScaleResult, err error, d deps) {
				require.NoError(t, err)
				assert.True(t, res.Applied)

				stream, _ := d.events.ReadEvents(events.StreamForBOM(root.ID), 1)
				require.Len(t, stream, 1)
				assert.Equal(t, events.BOMScaledEvent, stream[0].Type())
			},
		},
		{
			name:   "concurrent modification is propagated unchanged",
			bomID:  root.ID,
			params: entities.ScaleParams{ScaleFactor: ptr(dec("2")), PreviewOnly: ptr(false)},
			setup: func(d deps) {
				d.writer.
					On("ApplyScale", mock.Anything, mock.Anything).
					Return(entities.ErrConcurrentModification).
					Once()
			},
			assert: func(t *testing.T, res *entities.ScaleResult, err error, d deps) {
				require.Error(t, err)
				assert.ErrorIs(t, err, entities.ErrConcurrentModification)
				assert.Nil(t, res)

				all, _ := d.events.ReadAllEvents(0)
				assert.Empty(t, all)
			},
		},
		{
			name:   "missing bom",
			bomID:  uuid.New(),
			params: entities.ScaleParams{ScaleFactor: ptr(dec("2"))},
			setup:  func(d deps) {},
			assert: func(t *testing.T, res *entities.ScaleResult, err error, d deps) {
				assert.ErrorIs(t, err, entities.ErrBOMNotFound)
				assert.Nil(t, res)
			},
		},
		{
			name:   "invalid params never reach the writer",
			bomID:  root.ID,
			params: entities.ScaleParams{PreviewOnly: ptr(false)},
			setup:  func(d deps) {},
			assert: func(t *testing.T, res *entities.ScaleResult, err error, d deps) {
				assert.ErrorIs(t, err, entities.ErrMissingScaleParam)
				d.writer.AssertNotCalled(t, "ApplyScale", mock.Anything, mock.Anything)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := deps{
				writer: mocks.NewMockBOMWriter(t),
				events: events.NewInMemoryEventStore(),
			}
			tc.setup(d)

			res, err := newSvc(d).Scale(context.Background(), tc.bomID, tc.params)
			tc.assert(t, res, err, d)
		})
	}
}

func TestServiceScaleAgainstStore(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	svc := NewBOMService(repo, repo, nil)
	ctx := context.Background()

	res, err := svc.Scale(ctx, root.ID, entities.ScaleParams{TargetBatchSize: ptr(dec("150")), PreviewOnly: ptr(false)})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, err := svc.GetBOM(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, stored.OutputQty.Equal(dec("150")))
	assert.True(t, stored.Items[0].Quantity.Equal(dec("120")))
	assert.EqualValues(t, 2, stored.RowVersion)

	// a writer that computed its result from the old version loses
	stale := entities.ScaleCommit{BOMID: root.ID, ExpectedRowVersion: 1, NewOutputQty: dec("1")}
	assert.ErrorIs(t, repo.ApplyScale(ctx, stale), entities.ErrConcurrentModification)
}

func TestServiceExplode(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	svc := NewBOMService(repo, repo, nil)

	res, err := svc.Explode(context.Background(), root.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalLevels)

	_, err = svc.Explode(context.Background(), root.ID, 12)
	assert.ErrorIs(t, err, entities.ErrInvalidParameter)

	_, err = svc.Explode(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, entities.ErrBOMNotFound)
}

func TestServiceExplodeTimeout(t *testing.T) {
	t.Parallel()

	repo, root := testhelpers.BuildChainTestData(10, false)
	svc := NewBOMService(repo, repo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := svc.Explode(ctx, root.ID, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceRecordByProductActual(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	store := events.NewInMemoryEventStore()
	svc := NewBOMService(repo, repo, store)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	exps, err := svc.ExpectedByProducts(ctx, root.ID, dec("100"))
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.True(t, exps[0].ExpectedQuantity.Equal(dec("15")))

	batch := gofakeit.Regex(`B-2026-[0-9]{3}`)
	over, err := svc.RecordByProductActual(ctx, root.ID, exps[0].ItemID, RecordActualRequest{
		RealizedMainOutputQty: dec("100"),
		ActualQuantity:        dec("18"),
		MainBatch:             batch,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ByProductRecorded, over.Expectation.Status)
	assert.Equal(t, batch+"-BP-BRAN", over.Record.BatchNumber)
	assert.Equal(t, fixed, over.Record.RecordedAt)
	assert.True(t, over.YieldPercent.Equal(dec("120")))
	assert.Equal(t, entities.YieldGreen, over.Indicator)

	under, err := svc.RecordByProductActual(ctx, root.ID, exps[0].ItemID, RecordActualRequest{
		RealizedMainOutputQty: dec("100"),
		ActualQuantity:        dec("12"),
	})
	require.NoError(t, err)
	assert.Empty(t, under.Record.BatchNumber)
	assert.True(t, under.YieldPercent.Equal(dec("80")))

	history, err := svc.ByProductHistory(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].ActualQuantity.Equal(dec("18")))

	_, err = svc.RecordByProductActual(ctx, root.ID, exps[0].ItemID, RecordActualRequest{
		RealizedMainOutputQty: dec("100"),
		ActualQuantity:        dec("-1"),
	})
	assert.ErrorIs(t, err, entities.ErrInvalidQuantity)

	// a material line is not a by-product
	_, err = svc.RecordByProductActual(ctx, root.ID, root.Items[0].ID, RecordActualRequest{
		RealizedMainOutputQty: dec("100"),
		ActualQuantity:        dec("1"),
	})
	assert.ErrorIs(t, err, entities.ErrItemNotFound)

	store.Wait()
	stream, _ := store.ReadEvents(events.StreamForBOM(root.ID), 1)
	assert.Len(t, stream, 2)
}

func TestServiceRecordByProductActualWriterFailure(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	writer := mocks.NewMockBOMWriter(t)
	writer.On("RecordByProductActual", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	svc := NewBOMService(repo, writer, nil)

	exps, err := svc.ExpectedByProducts(context.Background(), root.ID, dec("10"))
	require.NoError(t, err)

	_, err = svc.RecordByProductActual(context.Background(), root.ID, exps[0].ItemID, RecordActualRequest{
		RealizedMainOutputQty: dec("10"),
		ActualQuantity:        dec("1.5"),
	})
	assert.EqualError(t, err, "orchestration.RecordByProductActual: disk full")
}

func TestServiceYield(t *testing.T) {
	t.Parallel()

	repo, _, root := testhelpers.BuildBakeryTestData()
	svc := NewBOMService(repo, repo, nil)
	ctx := context.Background()

	res, err := svc.Yield(ctx, root.ID)
	require.NoError(t, err)
	assert.False(t, res.ExpectedYieldPercent.Valid)

	updated, err := svc.UpdateExpectedYield(ctx, root.ID, dec("90"))
	require.NoError(t, err)
	require.True(t, updated.ExpectedYieldPercent.Valid)
	assert.True(t, updated.ExpectedYieldPercent.Decimal.Equal(dec("90")))
	assert.True(t, updated.VarianceFromExpected.Valid)

	_, err = svc.UpdateExpectedYield(ctx, root.ID, dec("101"))
	assert.ErrorIs(t, err, entities.ErrInvalidYield)

	_, err = svc.UpdateExpectedYield(ctx, uuid.New(), dec("50"))
	assert.ErrorIs(t, err, entities.ErrBOMNotFound)
}

func TestServiceCompare(t *testing.T) {
	t.Parallel()

	b := testhelpers.NewBuilder()
	b.Component("SOUP", entities.Finished)
	b.Component("LEEK", entities.Raw)
	b.Component("POTATO", entities.Raw)
	v1 := b.BOMWithStatus("SOUP", "1.0", entities.StatusArchived, "10", testhelpers.Material("LEEK", "2"))
	v2 := b.BOM("SOUP", "10", testhelpers.Material("LEEK", "3"), testhelpers.Material("POTATO", "4"))
	repo, _ := b.Build()
	svc := NewBOMService(repo, repo, nil)

	res, err := svc.Compare(context.Background(), v1.ID, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Added)
	assert.Equal(t, 1, res.Summary.Modified)

	_, err = svc.Compare(context.Background(), v1.ID, v1.ID)
	assert.ErrorIs(t, err, entities.ErrSameVersion)
}
