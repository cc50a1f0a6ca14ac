package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

const (
	ComponentsFile = "components.csv"
	BOMsFile       = "boms.csv"
	BOMItemsFile   = "bom_items.csv"
)

var (
	componentsHeader = []string{"id", "code", "name", "type"}
	bomsHeader       = []string{"id", "product_id", "version", "status", "output_qty", "output_uom", "expected_yield_percent"}
	bomItemsHeader   = []string{"item_id", "bom_id", "component_id", "quantity", "uom", "scrap_percent", "is_output", "is_by_product", "yield_percentage", "sequence"}
)

// Scenario is the content of one scenario directory
type Scenario struct {
	Components []*entities.Component
	BOMs       []*entities.BOM
}

// Loader handles loading BOM data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads components.csv, boms.csv and bom_items.csv from dir
// and assembles validated BOMs with items in sequence order
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	components, err := l.LoadComponents(filepath.Join(dir, ComponentsFile))
	if err != nil {
		return nil, err
	}

	byID := make(map[entities.ComponentID]entities.Component, len(components))
	for _, c := range components {
		byID[c.ID] = *c
	}

	boms, err := l.LoadBOMs(filepath.Join(dir, BOMsFile), byID)
	if err != nil {
		return nil, err
	}

	bomIndex := make(map[uuid.UUID]*entities.BOM, len(boms))
	for _, bom := range boms {
		bomIndex[bom.ID] = bom
	}
	if err := l.LoadBOMItems(filepath.Join(dir, BOMItemsFile), byID, bomIndex); err != nil {
		return nil, err
	}

	for _, bom := range boms {
		if err := bom.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", BOMsFile, err)
		}
	}

	return &Scenario{Components: components, BOMs: boms}, nil
}

// LoadComponents loads components from a CSV file
func (l *Loader) LoadComponents(filename string) ([]*entities.Component, error) {
	records, err := readCSV(filename, componentsHeader)
	if err != nil {
		return nil, err
	}

	components := make([]*entities.Component, 0, len(records))
	for i, record := range records {
		ct, err := entities.ParseComponentType(record[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ComponentsFile, i+2, err)
		}
		c, err := entities.NewComponent(entities.ComponentID(record[0]), record[1], record[2], ct)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ComponentsFile, i+2, err)
		}
		components = append(components, c)
	}
	return components, nil
}

// LoadBOMs loads BOM headers from a CSV file. Items are attached by
// LoadBOMItems.
func (l *Loader) LoadBOMs(filename string, components map[entities.ComponentID]entities.Component) ([]*entities.BOM, error) {
	records, err := readCSV(filename, bomsHeader)
	if err != nil {
		return nil, err
	}

	boms := make([]*entities.BOM, 0, len(records))
	for i, record := range records {
		bom, err := parseBOM(record, components)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", BOMsFile, i+2, err)
		}
		boms = append(boms, bom)
	}
	return boms, nil
}

// LoadBOMItems reads BOM lines and appends each to its BOM in boms
func (l *Loader) LoadBOMItems(filename string, components map[entities.ComponentID]entities.Component, boms map[uuid.UUID]*entities.BOM) error {
	records, err := readCSV(filename, bomItemsHeader)
	if err != nil {
		return err
	}

	for i, record := range records {
		bomID, err := uuid.Parse(record[1])
		if err != nil {
			return fmt.Errorf("%s row %d: %w: invalid bom_id %q", BOMItemsFile, i+2, entities.ErrValidation, record[1])
		}
		bom, ok := boms[bomID]
		if !ok {
			return fmt.Errorf("%s row %d: %w: %s", BOMItemsFile, i+2, entities.ErrBOMNotFound, bomID)
		}

		item, err := parseBOMItem(record, components)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", BOMItemsFile, i+2, err)
		}
		bom.Items = append(bom.Items, *item)
	}
	return nil
}

func readCSV(filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s must have a header row", filepath.Base(filename))
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s header mismatch. Expected: %v, Got: %v", filepath.Base(filename), expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", filepath.Base(filename), i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range actual {
		if strings.TrimSpace(strings.ToLower(col)) != expected[i] {
			return false
		}
	}
	return true
}

func parseBOM(record []string, components map[entities.ComponentID]entities.Component) (*entities.BOM, error) {
	id, err := uuid.Parse(record[0])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", entities.ErrValidation, record[0])
	}

	status, err := entities.ParseBOMStatus(record[3])
	if err != nil {
		return nil, err
	}

	outputQty, err := parseDecimal("output_qty", record[4])
	if err != nil {
		return nil, err
	}

	expectedYield, err := parseNullDecimal("expected_yield_percent", record[6])
	if err != nil {
		return nil, err
	}

	productID := entities.ComponentID(record[1])
	product, ok := components[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", entities.ErrComponentNotFound, productID)
	}

	return &entities.BOM{
		ID:                   id,
		ProductID:            productID,
		ProductCode:          product.Code,
		ProductName:          product.Name,
		Version:              record[2],
		Status:               status,
		OutputQty:            outputQty,
		OutputUOM:            record[5],
		ExpectedYieldPercent: expectedYield,
	}, nil
}

func parseBOMItem(record []string, components map[entities.ComponentID]entities.Component) (*entities.BOMItem, error) {
	var id uuid.UUID
	if record[0] != "" {
		parsed, err := uuid.Parse(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid item_id %q", entities.ErrValidation, record[0])
		}
		id = parsed
	}

	componentID := entities.ComponentID(record[2])
	component, ok := components[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrComponentNotFound, componentID)
	}

	quantity, err := parseDecimal("quantity", record[3])
	if err != nil {
		return nil, err
	}
	scrap, err := parseNullDecimal("scrap_percent", record[5])
	if err != nil {
		return nil, err
	}
	isOutput, err := parseBool("is_output", record[6])
	if err != nil {
		return nil, err
	}
	isByProduct, err := parseBool("is_by_product", record[7])
	if err != nil {
		return nil, err
	}
	yield, err := parseNullDecimal("yield_percentage", record[8])
	if err != nil {
		return nil, err
	}
	sequence, err := strconv.Atoi(record[9])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sequence: %s", entities.ErrValidation, record[9])
	}

	return entities.NewBOMItem(entities.BOMItemSpec{
		ID:              id,
		Component:       component,
		Quantity:        quantity,
		UOM:             record[4],
		ScrapPercent:    scrap,
		IsOutput:        isOutput,
		IsByProduct:     isByProduct,
		YieldPercentage: yield,
		Sequence:        sequence,
	})
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s: %s", entities.ErrValidation, field, s)
	}
	return d, nil
}

func parseNullDecimal(field, s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func parseBool(field, s string) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s: %s", entities.ErrValidation, field, s)
	}
	return b, nil
}
