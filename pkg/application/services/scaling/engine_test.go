package scaling

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func pastryBOM() *entities.BOM {
	b := testhelpers.NewBuilder()
	b.NamedComponent("PASTRY", "Pastry", entities.Finished)
	b.NamedComponent("FLOUR", "Flour", entities.Raw)
	b.NamedComponent("BUTTER", "Butter", entities.Raw)
	b.NamedComponent("SALT", "Salt", entities.Raw)
	b.NamedComponent("CRUMBS", "Crumbs", entities.Raw)
	return b.BOM("PASTRY", "100",
		testhelpers.Material("FLOUR", "60").WithScrap("3"),
		testhelpers.Material("BUTTER", "20"),
		testhelpers.Material("SALT", "1"),
		testhelpers.Output("PASTRY", "100"),
		testhelpers.ByProduct("CRUMBS", "5"),
	)
}

func TestScaleTargetBatchSize(t *testing.T) {
	t.Parallel()

	bom := pastryBOM()
	res, err := NewEngine().Scale(bom, entities.ScaleParams{TargetBatchSize: ptr(dec("150"))})
	require.NoError(t, err)

	assert.True(t, res.ScaleFactor.Equal(dec("1.5")))
	assert.True(t, res.OriginalBatchSize.Equal(dec("100")))
	assert.True(t, res.NewBatchSize.Equal(dec("150")))
	assert.False(t, res.Applied)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Items, 3, "output and by-product lines are not scaled")
	want := map[entities.ComponentID]string{"FLOUR": "90", "BUTTER": "30", "SALT": "1.5"}
	for _, item := range res.Items {
		assert.True(t, item.NewQuantity.Equal(dec(want[item.ComponentID])), "%s: %s", item.ComponentID, item.NewQuantity)
		assert.False(t, item.Rounded)
	}
	assert.True(t, res.Items[0].ScrapPercent.Equal(dec("3")), "scrap is carried unchanged")

	// the input BOM is never modified
	assert.True(t, bom.OutputQty.Equal(dec("100")))
	assert.True(t, bom.Items[0].Quantity.Equal(dec("60")))
}

func TestScaleFactorInverse(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	for _, f := range []string{"3", "0.7", "12.5", "1.01"} {
		bom := pastryBOM()

		up, err := engine.Scale(bom, entities.ScaleParams{ScaleFactor: ptr(dec(f)), RoundDecimals: ptr(int32(6))})
		require.NoError(t, err)

		scaled := bom.Clone()
		for i := range scaled.Items {
			for _, item := range up.Items {
				if item.ID == scaled.Items[i].ID {
					scaled.Items[i].Quantity = item.NewQuantity
				}
			}
		}
		scaled.OutputQty = up.NewBatchSize

		inverse := decimal.NewFromInt(1).DivRound(dec(f), 16)
		down, err := engine.Scale(scaled, entities.ScaleParams{ScaleFactor: &inverse, RoundDecimals: ptr(int32(3))})
		require.NoError(t, err)

		for i, item := range down.Items {
			diff := item.NewQuantity.Sub(bom.MaterialItems()[i].Quantity).Abs()
			assert.True(t, diff.LessThanOrEqual(dec("0.001")), "factor %s item %s: %s", f, item.ComponentID, item.NewQuantity)
		}
	}
}

func TestScaleRoundingWarning(t *testing.T) {
	t.Parallel()

	b := testhelpers.NewBuilder()
	b.Component("BREAD", entities.Finished)
	b.NamedComponent("YEAST", "Yeast", entities.Raw)
	b.NamedComponent("FLOUR", "Flour", entities.Raw)
	bom := b.BOM("BREAD", "1",
		testhelpers.Material("YEAST", "0.0006"),
		testhelpers.Material("FLOUR", "0.5"),
	)

	res, err := NewEngine().Scale(bom, entities.ScaleParams{ScaleFactor: ptr(dec("1"))})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Yeast (YEAST) rounded from 0.0006 to 0.001", res.Warnings[0])
	assert.True(t, res.Items[0].NewQuantity.Equal(dec("0.001")))
	assert.True(t, res.Items[0].Rounded)
	assert.False(t, res.Items[1].Rounded)
}

func TestScaleSmallQuantityKeptExactly(t *testing.T) {
	t.Parallel()

	b := testhelpers.NewBuilder()
	b.Component("BREAD", entities.Finished)
	b.NamedComponent("YEAST", "Yeast", entities.Raw)
	bom := b.BOM("BREAD", "1",
		testhelpers.Material("YEAST", "0.0005"),
	)

	res, err := NewEngine().Scale(bom, entities.ScaleParams{
		ScaleFactor:   ptr(dec("1")),
		RoundDecimals: ptr(int32(6)),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Warnings, "an unrounded quantity never warns")
	assert.False(t, res.Items[0].Rounded)
	assert.True(t, res.Items[0].NewQuantity.Equal(dec("0.0005")))
}

func TestScaleRoundsToZero(t *testing.T) {
	t.Parallel()

	b := testhelpers.NewBuilder()
	b.Component("TEA", entities.Finished)
	b.NamedComponent("AROMA", "Aroma", entities.Raw)
	b.NamedComponent("ZERO", "Zero", entities.Raw)
	bom := b.BOM("TEA", "10",
		testhelpers.Material("AROMA", "0.0004"),
		testhelpers.Material("ZERO", "0"),
	)

	res, err := NewEngine().Scale(bom, entities.ScaleParams{TargetBatchSize: ptr(dec("5"))})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1, "zero quantities never warn")
	assert.True(t, strings.HasPrefix(res.Warnings[0], "Aroma (AROMA) rounded from 0.0002 to 0.000"), res.Warnings[0])
	assert.True(t, res.Items[0].NewQuantity.IsZero())
	assert.False(t, res.Items[1].Rounded)
}

func TestScaleParamErrors(t *testing.T) {
	t.Parallel()

	bom := pastryBOM()
	engine := NewEngine()

	tests := []struct {
		name   string
		params entities.ScaleParams
		want   error
	}{
		{"neither param", entities.ScaleParams{}, entities.ErrMissingScaleParam},
		{"both params", entities.ScaleParams{TargetBatchSize: ptr(dec("1")), ScaleFactor: ptr(dec("1"))}, entities.ErrInvalidParameter},
		{"zero target", entities.ScaleParams{TargetBatchSize: ptr(dec("0"))}, entities.ErrInvalidScale},
		{"negative factor", entities.ScaleParams{ScaleFactor: ptr(dec("-2"))}, entities.ErrInvalidScale},
		{"decimals below range", entities.ScaleParams{ScaleFactor: ptr(dec("2")), RoundDecimals: ptr(int32(-1))}, entities.ErrInvalidParameter},
		{"decimals above range", entities.ScaleParams{ScaleFactor: ptr(dec("2")), RoundDecimals: ptr(int32(7))}, entities.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Scale(bom, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestScaleEmptyBOM(t *testing.T) {
	t.Parallel()

	b := testhelpers.NewBuilder()
	b.Component("KIT", entities.Finished)
	bom := b.BOM("KIT", "4", testhelpers.Output("KIT", "4"))

	res, err := NewEngine().Scale(bom, entities.ScaleParams{ScaleFactor: ptr(dec("2"))})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Warnings)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.NewBatchSize.Equal(dec("8")))
}

func TestScaleDeterministic(t *testing.T) {
	t.Parallel()

	bom := pastryBOM()
	factor := decimal.NewFromFloat(gofakeit.Float64Range(0.1, 50)).Round(4)
	params := entities.ScaleParams{ScaleFactor: &factor, RoundDecimals: ptr(int32(gofakeit.IntRange(0, 6)))}

	first, err := NewEngine().Scale(bom, params)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewEngine().Scale(bom, params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScaleParamsDefaults(t *testing.T) {
	t.Parallel()

	var p entities.ScaleParams
	assert.True(t, p.IsPreview())
	assert.EqualValues(t, 3, p.Decimals())

	p.PreviewOnly = ptr(false)
	p.RoundDecimals = ptr(int32(0))
	assert.False(t, p.IsPreview())
	assert.EqualValues(t, 0, p.Decimals())
}
