package commands

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Components    int     // Total number of components to generate
	MaxDepth      int     // Maximum depth of BOM tree
	ByProductRate float64 // Chance that a BOM gets a by-product line
	DraftRate     float64 // Chance that a finished product gets a second draft version
	OutputDir     string
	Seed          uint64 // Random seed for reproducible generation
}

// bomNode represents a component in the generated tree
type bomNode struct {
	component *entities.Component
	level     int
	children  []*bomNode
	parents   []*bomNode
}

func (n *bomNode) hasBOM() bool { return len(n.children) > 0 }

// Generator builds random but valid BOM scenarios
type Generator struct {
	config GenerateConfig
	faker  *gofakeit.Faker
	seq    int

	// waste is the shared by-product component, added to the scenario once used
	waste     *entities.Component
	wasteUsed bool
}

// NewGenerator creates a generator. A zero seed picks one from the clock.
func NewGenerator(config GenerateConfig) *Generator {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		config: config,
		faker:  gofakeit.New(seed),
		waste: &entities.Component{
			ID:   "BP-WASTE",
			Code: "BP-WASTE",
			Name: "Process Waste",
			Type: entities.Raw,
		},
	}
}

func newGenerateCommand(r *rootCommand) *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate <output-dir>",
		Short: "Generate a random CSV scenario",
		Long: `Generate writes components.csv, boms.csv and bom_items.csv describing a
multi-level product tree with shared sub-assemblies, scrap, by-products and
draft BOM versions. The same seed always produces the same scenario.`,
		Example: `  bomengine generate ./scenarios/large --components 500 --depth 6 --seed 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.OutputDir = expandHome(args[0])

			r.printVerbose(cmd, "🔧 Generating scenario with %d components, max depth %d\n",
				config.Components, config.MaxDepth)
			r.printVerbose(cmd, "📁 Output directory: %s\n", config.OutputDir)
			r.printVerbose(cmd, "🎲 Random seed: %d\n", config.Seed)

			scenario, err := NewGenerator(config).Generate()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := csv.WriteScenario(config.OutputDir, scenario); err != nil {
				return fmt.Errorf("failed to write scenario: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Generated %d components and %d BOMs in %s\n",
				len(scenario.Components), len(scenario.BOMs), config.OutputDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&config.Components, "components", 50, "Total number of components")
	flags.IntVar(&config.MaxDepth, "depth", 4, "Maximum BOM depth")
	flags.Float64Var(&config.ByProductRate, "byproduct-rate", 0.3, "Chance that a BOM gets a by-product line")
	flags.Float64Var(&config.DraftRate, "draft-rate", 0.3, "Chance that a finished product gets a draft version")
	flags.Uint64Var(&config.Seed, "seed", 0, "Random seed (0 picks one from the clock)")
	return cmd
}

// Generate builds the component tree and one active BOM for every component
// that has children
func (g *Generator) Generate() (*csv.Scenario, error) {
	if g.config.Components < 2 {
		return nil, fmt.Errorf("at least 2 components are required, got %d", g.config.Components)
	}
	if g.config.MaxDepth < 1 {
		return nil, fmt.Errorf("max depth must be at least 1, got %d", g.config.MaxDepth)
	}

	nodes := g.generateTree()

	scenario := &csv.Scenario{Components: make([]*entities.Component, 0, len(nodes))}
	for _, node := range nodes {
		scenario.Components = append(scenario.Components, node.component)
	}

	for _, node := range nodes {
		if !node.hasBOM() {
			continue
		}
		bom, err := g.generateBOM(node, "1.0", entities.StatusActive)
		if err != nil {
			return nil, err
		}
		scenario.BOMs = append(scenario.BOMs, bom)

		if node.level == 0 && g.chance(g.config.DraftRate) {
			draft, err := g.generateDraft(bom)
			if err != nil {
				return nil, err
			}
			scenario.BOMs = append(scenario.BOMs, draft)
		}
	}

	if g.wasteUsed {
		scenario.Components = append(scenario.Components, g.waste)
	}
	return scenario, nil
}

// generateTree creates the product tree level by level, sharing some
// existing sub-assemblies between parents without creating cycles
func (g *Generator) generateTree() []*bomNode {
	var nodes []*bomNode

	numRoots := max(1, g.config.Components/40+g.faker.IntRange(0, 2))
	numRoots = min(numRoots, g.config.Components-1)

	var roots []*bomNode
	for i := 0; i < numRoots; i++ {
		node := g.newNode(0, entities.Finished)
		nodes = append(nodes, node)
		roots = append(roots, node)
	}

	currentLevel := roots
	level := 0
	for level < g.config.MaxDepth && len(nodes) < g.config.Components {
		level++
		var nextLevel []*bomNode

		for _, parent := range currentLevel {
			numChildren := g.faker.IntRange(2, 6)

			for child := 0; child < numChildren && len(nodes) < g.config.Components; child++ {
				var childNode *bomNode
				if level > 1 && g.chance(0.2) {
					candidates := g.shareable(nodes, level, parent)
					if len(candidates) > 0 {
						childNode = candidates[g.faker.IntRange(0, len(candidates)-1)]
					}
				}

				if childNode == nil {
					childNode = g.newNode(level, g.componentType(level))
					nodes = append(nodes, childNode)
					if childNode.component.Type.IsExplodable() {
						nextLevel = append(nextLevel, childNode)
					}
				}

				parent.children = append(parent.children, childNode)
				childNode.parents = append(childNode.parents, parent)
			}
		}

		if len(nextLevel) == 0 {
			break
		}
		currentLevel = nextLevel
	}

	// Explodable components that never got children become raw materials
	for _, node := range nodes {
		if node.level > 0 && !node.hasBOM() && node.component.Type.IsExplodable() {
			node.component.Type = entities.Raw
		}
	}
	return nodes
}

func (g *Generator) newNode(level int, componentType entities.ComponentType) *bomNode {
	g.seq++
	prefix := map[entities.ComponentType]string{
		entities.Finished:     "FG",
		entities.SemiFinished: "SF",
		entities.WIP:          "WIP",
		entities.Raw:          "RM",
		entities.Packaging:    "PK",
	}[componentType]

	code := fmt.Sprintf("%s-%04d", prefix, g.seq)
	return &bomNode{
		component: &entities.Component{
			ID:   entities.ComponentID(code),
			Code: code,
			Name: g.componentName(componentType),
			Type: componentType,
		},
		level: level,
	}
}

// componentType picks intermediates near the top and leaves further down
func (g *Generator) componentType(level int) entities.ComponentType {
	if level < g.config.MaxDepth && g.chance(0.5/float64(level)) {
		if g.chance(0.5) {
			return entities.SemiFinished
		}
		return entities.WIP
	}
	if g.chance(0.15) {
		return entities.Packaging
	}
	return entities.Raw
}

func (g *Generator) componentName(componentType entities.ComponentType) string {
	switch componentType {
	case entities.Finished:
		return g.faker.ProductName()
	case entities.SemiFinished, entities.WIP:
		return fmt.Sprintf("%s %s Mix", g.faker.Adjective(), g.faker.Noun())
	case entities.Packaging:
		return fmt.Sprintf("%s Carton", g.faker.Color())
	default:
		return g.faker.Noun()
	}
}

// shareable finds existing intermediates and leaves that can be reused by
// parent without making parent its own descendant
func (g *Generator) shareable(nodes []*bomNode, level int, parent *bomNode) []*bomNode {
	var candidates []*bomNode
	for _, node := range nodes {
		if node.level >= level-1 && node.level > 0 && len(node.parents) < 3 &&
			node != parent && !slices.Contains(parent.children, node) &&
			!isAncestor(node, parent, map[*bomNode]bool{}) {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

// isAncestor reports whether candidate appears above node in the tree
func isAncestor(candidate, node *bomNode, visited map[*bomNode]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true

	for _, parent := range node.parents {
		if parent == candidate || isAncestor(candidate, parent, visited) {
			return true
		}
	}
	return false
}

func (g *Generator) generateBOM(node *bomNode, version string, status entities.BOMStatus) (*entities.BOM, error) {
	outputQty := decimal.NewFromInt(int64(g.faker.IntRange(1, 20) * 10))
	outputUOM := "kg"
	if node.level == 0 {
		outputUOM = "ea"
	}

	items := make([]entities.BOMItem, 0, len(node.children)+2)
	for i, child := range node.children {
		spec := entities.BOMItemSpec{
			ID:        g.uuid(),
			Component: *child.component,
			Quantity:  g.quantity(0.1, 50),
			UOM:       "kg",
			Sequence:  (i + 1) * 10,
		}
		if child.component.Type == entities.Packaging {
			spec.Quantity = decimal.NewFromInt(int64(g.faker.IntRange(1, 12)))
			spec.UOM = "ea"
		}
		if g.chance(0.25) {
			spec.ScrapPercent = decimal.NewNullDecimal(decimal.NewFromInt(int64(g.faker.IntRange(1, 8))))
		}

		item, err := entities.NewBOMItem(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	output, err := entities.NewBOMItem(entities.BOMItemSpec{
		ID:        g.uuid(),
		Component: *node.component,
		Quantity:  outputQty,
		UOM:       outputUOM,
		IsOutput:  true,
		Sequence:  (len(items) + 1) * 10,
	})
	if err != nil {
		return nil, err
	}
	items = append(items, *output)

	if g.chance(g.config.ByProductRate) {
		byProduct, err := g.generateByProduct(outputQty, len(items))
		if err != nil {
			return nil, err
		}
		items = append(items, *byProduct)
	}

	bom := &entities.BOM{
		ID:          g.uuid(),
		ProductID:   node.component.ID,
		ProductCode: node.component.Code,
		ProductName: node.component.Name,
		Version:     version,
		Status:      status,
		OutputQty:   outputQty,
		OutputUOM:   outputUOM,
		Items:       items,
	}
	if g.chance(0.5) {
		bom.ExpectedYieldPercent = decimal.NewNullDecimal(decimal.NewFromInt(int64(g.faker.IntRange(70, 98))))
	}
	if err := bom.Validate(); err != nil {
		return nil, fmt.Errorf("generated invalid bom for %s: %w", node.component.Code, err)
	}
	return bom, nil
}

// generateByProduct returns a process waste line yielding a share of the
// BOM's output
func (g *Generator) generateByProduct(outputQty decimal.Decimal, position int) (*entities.BOMItem, error) {
	g.wasteUsed = true
	yield := decimal.NewFromFloat(g.faker.Float64Range(1, 30)).Round(2)
	return entities.NewBOMItem(entities.BOMItemSpec{
		ID:              g.uuid(),
		Component:       *g.waste,
		Quantity:        outputQty.Mul(yield).Div(decimal.NewFromInt(100)).Round(3),
		UOM:             "kg",
		IsByProduct:     true,
		YieldPercentage: decimal.NewNullDecimal(yield),
		Sequence:        (position + 1) * 10,
	})
}

// generateDraft copies an active BOM into the next draft version with a few
// quantities changed and one line dropped
func (g *Generator) generateDraft(active *entities.BOM) (*entities.BOM, error) {
	version, err := entities.NextVersion(active.Version)
	if err != nil {
		return nil, err
	}

	draft := active.Clone()
	draft.ID = g.uuid()
	draft.Version = version
	draft.Status = entities.StatusDraft

	items := make([]entities.BOMItem, 0, len(draft.Items))
	dropped := false
	for _, item := range draft.Items {
		item.ID = g.uuid()
		if item.IsMaterial() {
			if !dropped && len(active.MaterialItems()) > 1 && g.chance(0.3) {
				dropped = true
				continue
			}
			if g.chance(0.5) {
				item.Quantity = item.Quantity.Mul(decimal.NewFromFloat(g.faker.Float64Range(0.8, 1.2))).Round(3)
			}
		}
		items = append(items, item)
	}
	draft.Items = items

	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("generated invalid draft for %s: %w", active.ProductCode, err)
	}
	return draft, nil
}

func (g *Generator) quantity(lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(lo, hi)).Round(3)
}

func (g *Generator) chance(p float64) bool {
	return g.faker.Float64Range(0, 1) < p
}

// uuid draws ids from the seeded faker so scenarios are reproducible
func (g *Generator) uuid() uuid.UUID {
	return uuid.MustParse(g.faker.UUID())
}
