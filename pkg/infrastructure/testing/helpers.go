package testing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/memory"
)

// Line describes one BOM line for the fixture builder
type Line struct {
	Component string
	Qty       string
	UOM       string
	Scrap     string
	Kind      entities.ItemKind
	Yield     string
}

// Material returns a material input line in kg
func Material(component, qty string) Line {
	return Line{Component: component, Qty: qty, UOM: "kg", Kind: entities.ItemKindMaterial}
}

// ByProduct returns a by-product line with the given yield percentage
func ByProduct(component, yield string) Line {
	return Line{Component: component, Qty: "0", UOM: "kg", Kind: entities.ItemKindByProduct, Yield: yield}
}

// Output returns a line marking the BOM's own output
func Output(component, qty string) Line {
	return Line{Component: component, Qty: qty, UOM: "kg", Kind: entities.ItemKindOutput}
}

// WithScrap sets the scrap percent of a line
func (l Line) WithScrap(scrap string) Line {
	l.Scrap = scrap
	return l
}

// WithUOM sets the unit of measure of a line
func (l Line) WithUOM(uom string) Line {
	l.UOM = uom
	return l
}

// Builder assembles components and active BOMs for tests. It panics on
// invalid fixtures.
type Builder struct {
	components map[entities.ComponentID]entities.Component
	order      []entities.ComponentID
	boms       []*entities.BOM
}

// NewBuilder creates an empty fixture builder
func NewBuilder() *Builder {
	return &Builder{components: make(map[entities.ComponentID]entities.Component)}
}

// Component registers a component whose code and name derive from id
func (b *Builder) Component(id string, ct entities.ComponentType) entities.Component {
	return b.NamedComponent(id, id, ct)
}

// NamedComponent registers a component with an explicit display name
func (b *Builder) NamedComponent(id, name string, ct entities.ComponentType) entities.Component {
	c, err := entities.NewComponent(entities.ComponentID(id), id, name, ct)
	if err != nil {
		panic(err)
	}
	if _, exists := b.components[c.ID]; !exists {
		b.order = append(b.order, c.ID)
	}
	b.components[c.ID] = *c
	return *c
}

// BOM adds an active BOM for product producing outputQty kg
func (b *Builder) BOM(product, outputQty string, lines ...Line) *entities.BOM {
	return b.BOMWithStatus(product, "1.0", entities.StatusActive, outputQty, lines...)
}

// BOMWithStatus adds a BOM with an explicit version and status
func (b *Builder) BOMWithStatus(product, version string, status entities.BOMStatus, outputQty string, lines ...Line) *entities.BOM {
	items := make([]entities.BOMItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, b.item(line, i+1))
	}

	bom, err := entities.NewBOM(entities.ComponentID(product), version, MustDecimal(outputQty), "kg", items)
	if err != nil {
		panic(err)
	}
	bom.Status = status
	if c, ok := b.components[bom.ProductID]; ok {
		bom.ProductCode = c.Code
		bom.ProductName = c.Name
	}

	b.boms = append(b.boms, bom)
	return bom
}

func (b *Builder) item(line Line, sequence int) entities.BOMItem {
	component, ok := b.components[entities.ComponentID(line.Component)]
	if !ok {
		panic(fmt.Sprintf("fixture component %s is not registered", line.Component))
	}

	spec := entities.BOMItemSpec{
		ID:          uuid.New(),
		Component:   component,
		Quantity:    MustDecimal(line.Qty),
		UOM:         line.UOM,
		IsOutput:    line.Kind == entities.ItemKindOutput,
		IsByProduct: line.Kind == entities.ItemKindByProduct,
		Sequence:    sequence,
	}
	if line.Scrap != "" {
		spec.ScrapPercent = decimal.NewNullDecimal(MustDecimal(line.Scrap))
	}
	if line.Yield != "" {
		spec.YieldPercentage = decimal.NewNullDecimal(MustDecimal(line.Yield))
	}

	item, err := entities.NewBOMItem(spec)
	if err != nil {
		panic(err)
	}
	return *item
}

// Catalog returns the registered components in registration order and the
// BOMs in the order they were added
func (b *Builder) Catalog() ([]*entities.Component, []*entities.BOM) {
	components := make([]*entities.Component, 0, len(b.order))
	for _, id := range b.order {
		c := b.components[id]
		components = append(components, &c)
	}
	return components, b.boms
}

// Build loads everything into fresh in-memory repositories
func (b *Builder) Build() (*memory.BOMRepository, *memory.ComponentRepository) {
	bomRepo := memory.NewBOMRepository(len(b.boms))
	componentRepo := memory.NewComponentRepository(len(b.components))

	components, _ := b.Catalog()
	if err := componentRepo.LoadComponents(components); err != nil {
		panic(err)
	}
	if err := bomRepo.LoadBOMs(context.Background(), b.boms); err != nil {
		panic(err)
	}
	return bomRepo, componentRepo
}

// MustDecimal parses a decimal literal and panics on failure
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// BuildBakeryTestData builds a two-level bread recipe:
//
//	BREAD (100 kg) = DOUGH 80 + SALT 2 + BOX 10 ea, by-product BRAN 15%
//	DOUGH (1 kg)   = FLOUR 0.5 + BUTTER 0.2 + WATER 0.3
func BuildBakeryTestData() (*memory.BOMRepository, *memory.ComponentRepository, *entities.BOM) {
	b := NewBuilder()
	b.NamedComponent("BREAD", "Bread", entities.Finished)
	b.NamedComponent("DOUGH", "Dough", entities.SemiFinished)
	b.NamedComponent("FLOUR", "Flour", entities.Raw)
	b.NamedComponent("BUTTER", "Butter", entities.Raw)
	b.NamedComponent("WATER", "Water", entities.Raw)
	b.NamedComponent("SALT", "Salt", entities.Raw)
	b.NamedComponent("BOX", "Box", entities.Packaging)
	b.NamedComponent("BRAN", "Bran", entities.Raw)

	b.BOM("DOUGH", "1",
		Material("FLOUR", "0.5"),
		Material("BUTTER", "0.2").WithScrap("2"),
		Material("WATER", "0.3"),
	)
	root := b.BOM("BREAD", "100",
		Material("DOUGH", "80"),
		Material("SALT", "2"),
		Material("BOX", "10").WithUOM("ea"),
		Output("BREAD", "100"),
		ByProduct("BRAN", "15"),
	)

	bomRepo, componentRepo := b.Build()
	return bomRepo, componentRepo, root
}

// BuildChainTestData builds a linear chain of depth semi-finished levels
// ending in a raw leaf. Every BOM uses 2 of its child per unit of output.
// With cyclic set the deepest BOM consumes the first semi-finished product
// again instead of the leaf.
func BuildChainTestData(depth int, cyclic bool) (*memory.BOMRepository, *entities.BOM) {
	b := NewBuilder()
	b.Component("ROOT", entities.Finished)
	for i := 1; i <= depth; i++ {
		b.Component(chainID(i), entities.SemiFinished)
	}
	b.Component("LEAF", entities.Raw)

	root := b.BOM("ROOT", "1", Material(chainID(1), "2"))
	for i := 1; i <= depth; i++ {
		child := "LEAF"
		if i < depth {
			child = chainID(i + 1)
		} else if cyclic {
			child = chainID(1)
		}
		b.BOM(chainID(i), "1", Material(child, "2"))
	}

	bomRepo, _ := b.Build()
	return bomRepo, root
}

func chainID(i int) string {
	return fmt.Sprintf("P%04d", i)
}
