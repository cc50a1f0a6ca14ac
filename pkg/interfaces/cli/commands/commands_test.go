package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/services"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
)

// bakeryScenario writes the bakery fixture as a CSV scenario and returns its
// directory and root BOM
func bakeryScenario(t *testing.T) (string, *entities.BOM) {
	t.Helper()
	ctx := context.Background()

	bomRepo, componentRepo, root := testhelpers.BuildBakeryTestData()
	boms, err := bomRepo.ListBOMs(ctx)
	require.NoError(t, err)
	components, err := componentRepo.GetAllComponents(ctx)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, csv.WriteScenario(dir, &csv.Scenario{Components: components, BOMs: boms}))
	return dir, root
}

// run executes the command tree with an empty config file
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "bomengine.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log_level: error\n"), 0o644))

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configFile}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func findItem(t *testing.T, bom *entities.BOM, code string) entities.BOMItem {
	t.Helper()
	for _, item := range bom.Items {
		if item.Component.Code == code {
			return item
		}
	}
	t.Fatalf("item %s not found in bom %s", code, bom.ID)
	return entities.BOMItem{}
}

func reload(t *testing.T, dir string, id uuid.UUID) *entities.BOM {
	t.Helper()
	scenario, err := csv.NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	for _, bom := range scenario.BOMs {
		if bom.ID == id {
			return bom
		}
	}
	t.Fatalf("bom %s not found", id)
	return nil
}

func TestListCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	out, err := run(t, "list", "--scenario", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "BOMs: 2")
	assert.Contains(t, out, root.ID.String())

	out, err = run(t, "list", "--scenario", dir, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "id,product_id,version,status")
}

func TestExplodeCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	out, err := run(t, "explode", root.ID.String(), "--scenario", dir, "-f", "json")
	require.NoError(t, err)

	var res entities.ExplosionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.TotalLevels)
	assert.Equal(t, 6, res.TotalItems)
	require.Len(t, res.RawMaterialsSummary, 4)
	assert.Equal(t, "FLOUR", res.RawMaterialsSummary[1].ComponentCode)
	assert.True(t, res.RawMaterialsSummary[1].TotalQty.Equal(testhelpers.MustDecimal("40")))

	t.Run("depth limit", func(t *testing.T) {
		out, err := run(t, "explode", root.ID.String(), "--scenario", dir, "--max-depth", "1", "-f", "json")
		require.NoError(t, err)
		var res entities.ExplosionResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 1, res.TotalLevels)
	})

	t.Run("explicit zero depth is rejected", func(t *testing.T) {
		_, err := run(t, "explode", root.ID.String(), "--scenario", dir, "--max-depth", "0")
		assert.ErrorIs(t, err, entities.ErrInvalidParameter)
	})

	t.Run("depth above the limit is rejected", func(t *testing.T) {
		_, err := run(t, "explode", root.ID.String(), "--scenario", dir, "--max-depth", "11")
		assert.ErrorIs(t, err, entities.ErrInvalidParameter)
	})

	t.Run("to xlsx file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "out", "explosion.xlsx")
		_, err := run(t, "explode", root.ID.String(), "--scenario", dir, "-f", "xlsx", "-o", file)
		require.NoError(t, err)
		info, err := os.Stat(file)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestExplodeHelp(t *testing.T) {
	out, err := run(t, "explode", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Scrap percentages are reported but not applied")
	assert.NotContains(t, out, "applying scrap")
}

func TestScaleCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	t.Run("preview leaves the scenario untouched", func(t *testing.T) {
		out, err := run(t, "scale", root.ID.String(), "--scenario", dir, "--factor", "2", "-f", "json")
		require.NoError(t, err)

		var res entities.ScaleResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.False(t, res.Applied)
		assert.True(t, res.NewBatchSize.Equal(testhelpers.MustDecimal("200")))

		dough := findItem(t, reload(t, dir, root.ID), "DOUGH")
		assert.True(t, dough.Quantity.Equal(testhelpers.MustDecimal("80")))
	})

	t.Run("apply writes back", func(t *testing.T) {
		_, err := run(t, "scale", root.ID.String(), "--scenario", dir, "--target", "250", "--apply")
		require.NoError(t, err)

		bom := reload(t, dir, root.ID)
		assert.True(t, bom.OutputQty.Equal(testhelpers.MustDecimal("250")))
		dough := findItem(t, bom, "DOUGH")
		assert.True(t, dough.Quantity.Equal(testhelpers.MustDecimal("200")))
	})

	t.Run("target and factor are exclusive", func(t *testing.T) {
		_, err := run(t, "scale", root.ID.String(), "--scenario", dir, "--target", "1", "--factor", "2")
		require.Error(t, err)
	})

	t.Run("one of target or factor is required", func(t *testing.T) {
		_, err := run(t, "scale", root.ID.String(), "--scenario", dir)
		require.Error(t, err)
	})
}

func TestByProductsCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	out, err := run(t, "byproducts", root.ID.String(), "--scenario", dir, "--realized", "200", "-f", "json")
	require.NoError(t, err)

	var exps []entities.ByProductExpectation
	require.NoError(t, json.Unmarshal([]byte(out), &exps))
	require.Len(t, exps, 1)
	assert.Equal(t, "BRAN", exps[0].ComponentCode)
	assert.True(t, exps[0].ExpectedQuantity.Equal(testhelpers.MustDecimal("30")))

	out, err = run(t, "byproducts", "record", root.ID.String(), "--scenario", dir,
		"--item", exps[0].ItemID.String(), "--realized", "200", "--actual", "27", "--batch", "B-17")
	require.NoError(t, err)
	assert.Contains(t, out, "Yield: 90.00% (green)")
	assert.Contains(t, out, "Batch: B-17-BP-BRAN")
}

func TestYieldCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	_, err := run(t, "yield", root.ID.String(), "--scenario", dir, "--set", "90")
	require.NoError(t, err)

	bom := reload(t, dir, root.ID)
	require.True(t, bom.ExpectedYieldPercent.Valid)
	assert.True(t, bom.ExpectedYieldPercent.Decimal.Equal(testhelpers.MustDecimal("90")))

	_, err = run(t, "yield", root.ID.String(), "--scenario", dir, "--set", "101")
	assert.ErrorIs(t, err, entities.ErrInvalidYield)
}

func TestCompareCommand(t *testing.T) {
	dir, root := bakeryScenario(t)

	_, err := run(t, "compare", root.ID.String(), root.ID.String(), "--scenario", dir)
	assert.ErrorIs(t, err, entities.ErrSameVersion)

	_, err = run(t, "compare", root.ID.String(), "not-a-uuid", "--scenario", dir)
	require.Error(t, err)
}

func TestImportThenQueryDatabase(t *testing.T) {
	dir, root := bakeryScenario(t)
	db := filepath.Join(t.TempDir(), "bom.db")

	out, err := run(t, "import", dir, "--db-driver", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 8 components and 2 BOMs")

	out, err = run(t, "explode", root.ID.String(), "--db-driver", "sqlite", "--db", db, "-f", "json")
	require.NoError(t, err)
	var res entities.ExplosionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.TotalItems)

	_, err = run(t, "byproducts", "record", root.ID.String(), "--db-driver", "sqlite", "--db", db,
		"--item", findItem(t, root, "BRAN").ID.String(), "--realized", "100", "--actual", "10")
	require.NoError(t, err)

	out, err = run(t, "byproducts", "history", root.ID.String(), "--db-driver", "sqlite", "--db", db, "-f", "json")
	require.NoError(t, err)
	var records []entities.ByProductRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.True(t, records[0].ActualQuantity.Equal(testhelpers.MustDecimal("10")))
}

func TestValidateCommand(t *testing.T) {
	dir, _ := bakeryScenario(t)

	out, err := run(t, "validate", "--scenario", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog is valid")

	out, err = run(t, "validate", "--scenario", dir, "-f", "json")
	require.NoError(t, err)
	var res services.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.HasCycles)
}

func TestNoDataSource(t *testing.T) {
	_, err := run(t, "list")
	assert.ErrorIs(t, err, errNoDataSource)
}

func TestGenerateCommand(t *testing.T) {
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	_, err := run(t, "generate", dirA, "--components", "60", "--depth", "4", "--seed", "42")
	require.NoError(t, err)
	_, err = run(t, "generate", dirB, "--components", "60", "--depth", "4", "--seed", "42")
	require.NoError(t, err)

	for _, name := range []string{csv.ComponentsFile, csv.BOMsFile, csv.BOMItemsFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), "%s differs for the same seed", name)
	}
}

func TestGenerator_ProducesExplodableScenario(t *testing.T) {
	ctx := context.Background()

	scenario, err := NewGenerator(GenerateConfig{
		Components:    120,
		MaxDepth:      5,
		ByProductRate: 0.5,
		DraftRate:     1,
		Seed:          7,
	}).Generate()
	require.NoError(t, err)
	require.NotEmpty(t, scenario.BOMs)

	report := services.NewBOMValidator().ValidateCatalog(scenario.Components, scenario.BOMs)
	require.True(t, report.Valid(), "generated catalog errors: %v", report.Errors)
	assert.False(t, report.HasCycles)

	bomRepo := memory.NewBOMRepository(len(scenario.BOMs))
	require.NoError(t, bomRepo.LoadBOMs(ctx, scenario.BOMs))
	service := orchestration.NewBOMService(bomRepo, bomRepo, nil)

	drafts := 0
	for _, bom := range scenario.BOMs {
		if bom.Status == entities.StatusDraft {
			drafts++
			continue
		}
		res, err := service.Explode(ctx, bom.ID, 0)
		require.NoError(t, err, "bom %s (%s)", bom.ID, bom.ProductCode)
		assert.Positive(t, res.TotalItems)
	}
	assert.Positive(t, drafts)

	assert.Error(t, func() error {
		_, err := NewGenerator(GenerateConfig{Components: 1, MaxDepth: 2}).Generate()
		return err
	}())
}
