package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMStatus represents the lifecycle state of a BOM version
type BOMStatus string

const (
	StatusDraft    BOMStatus = "draft"
	StatusActive   BOMStatus = "active"
	StatusArchived BOMStatus = "archived"
)

// ParseBOMStatus parses a BOM status name
func ParseBOMStatus(s string) (BOMStatus, error) {
	switch BOMStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusActive:
		return StatusActive, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", fmt.Errorf("%w: unknown bom status %q", ErrValidation, s)
	}
}

// ItemKind distinguishes material inputs, the BOM's own output line and
// by-products. A by-product is the only kind that carries a yield.
type ItemKind int

const (
	ItemKindMaterial ItemKind = iota
	ItemKindOutput
	ItemKindByProduct
)

// String method for ItemKind enum
func (k ItemKind) String() string {
	switch k {
	case ItemKindMaterial:
		return "material"
	case ItemKindOutput:
		return "output"
	case ItemKindByProduct:
		return "by_product"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes the kind from its name
func (k *ItemKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "material":
		*k = ItemKindMaterial
	case "output":
		*k = ItemKindOutput
	case "by_product":
		*k = ItemKindByProduct
	default:
		return fmt.Errorf("%w: unknown item kind %q", ErrValidation, text)
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// BOMItem represents a single line in a Bill of Materials
type BOMItem struct {
	ID              uuid.UUID           `json:"item_id"`
	Component       Component           `json:"component"`
	Quantity        decimal.Decimal     `json:"quantity"`
	UOM             string              `json:"uom"`
	ScrapPercent    decimal.NullDecimal `json:"scrap_percent"`
	Kind            ItemKind            `json:"kind"`
	YieldPercentage decimal.NullDecimal `json:"yield_percentage"`
	Sequence        int                 `json:"sequence"`
}

// BOMItemSpec is the flag-based row shape a BOM line is stored in
type BOMItemSpec struct {
	ID              uuid.UUID
	Component       Component
	Quantity        decimal.Decimal
	UOM             string
	ScrapPercent    decimal.NullDecimal
	IsOutput        bool
	IsByProduct     bool
	YieldPercentage decimal.NullDecimal
	Sequence        int
}

// NewBOMItem creates a validated BOMItem from its row shape. The output and
// by-product flags are mutually exclusive, and a yield percentage is accepted
// only together with the by-product flag.
func NewBOMItem(spec BOMItemSpec) (*BOMItem, error) {
	if spec.IsOutput && spec.IsByProduct {
		return nil, fmt.Errorf("%w: item cannot be both output and by-product", ErrValidation)
	}

	kind := ItemKindMaterial
	switch {
	case spec.IsOutput:
		kind = ItemKindOutput
	case spec.IsByProduct:
		kind = ItemKindByProduct
	}

	id := spec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	item := &BOMItem{
		ID:              id,
		Component:       spec.Component,
		Quantity:        spec.Quantity,
		UOM:             spec.UOM,
		ScrapPercent:    spec.ScrapPercent,
		Kind:            kind,
		YieldPercentage: spec.YieldPercentage,
		Sequence:        spec.Sequence,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// NewMaterialItem creates a validated material input line
func NewMaterialItem(component Component, quantity decimal.Decimal, uom string, scrapPercent decimal.NullDecimal) (*BOMItem, error) {
	return NewBOMItem(BOMItemSpec{
		Component:    component,
		Quantity:     quantity,
		UOM:          uom,
		ScrapPercent: scrapPercent,
	})
}

// NewOutputItem creates a validated line for the BOM's own output
func NewOutputItem(component Component, quantity decimal.Decimal, uom string) (*BOMItem, error) {
	return NewBOMItem(BOMItemSpec{
		Component: component,
		Quantity:  quantity,
		UOM:       uom,
		IsOutput:  true,
	})
}

// NewByProductItem creates a validated by-product line
func NewByProductItem(component Component, quantity decimal.Decimal, uom string, yieldPercentage decimal.Decimal) (*BOMItem, error) {
	return NewBOMItem(BOMItemSpec{
		Component:       component,
		Quantity:        quantity,
		UOM:             uom,
		IsByProduct:     true,
		YieldPercentage: decimal.NewNullDecimal(yieldPercentage),
	})
}

// Validate checks the line invariants
func (i *BOMItem) Validate() error {
	if i.Component.ID == "" {
		return fmt.Errorf("%w: item component cannot be empty", ErrValidation)
	}
	if i.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative, got %s", ErrValidation, i.Quantity)
	}
	if i.ScrapPercent.Valid && i.ScrapPercent.Decimal.IsNegative() {
		return fmt.Errorf("%w: scrap percent cannot be negative, got %s", ErrValidation, i.ScrapPercent.Decimal)
	}

	if i.Kind != ItemKindByProduct {
		if i.YieldPercentage.Valid {
			return fmt.Errorf("%w: yield percentage is only allowed on by-products (%s)", ErrInvalidYield, i.Component.Code)
		}
		return nil
	}

	if !i.YieldPercentage.Valid {
		return fmt.Errorf("%w: by-product %s requires a yield percentage", ErrInvalidYield, i.Component.Code)
	}
	return ValidateYieldPercentage(i.YieldPercentage.Decimal)
}

// ValidateYieldPercentage checks that a by-product yield lies in (0,100]
// with at most two decimal places
func ValidateYieldPercentage(pct decimal.Decimal) error {
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: must be in (0,100], got %s", ErrInvalidYield, pct)
	}
	if !pct.Equal(pct.Round(2)) {
		return fmt.Errorf("%w: at most 2 decimal places allowed, got %s", ErrInvalidYield, pct)
	}
	return nil
}

// IsOutput reports whether the line represents the BOM's own output
func (i *BOMItem) IsOutput() bool { return i.Kind == ItemKindOutput }

// IsByProduct reports whether the line is a by-product
func (i *BOMItem) IsByProduct() bool { return i.Kind == ItemKindByProduct }

// IsMaterial reports whether the line is a consumed input
func (i *BOMItem) IsMaterial() bool { return i.Kind == ItemKindMaterial }

// Scrap returns the scrap percent, treating null as zero
func (i *BOMItem) Scrap() decimal.Decimal {
	if !i.ScrapPercent.Valid {
		return decimal.Zero
	}
	return i.ScrapPercent.Decimal
}

// BOM is a versioned recipe for producing OutputQty units of OutputUOM
type BOM struct {
	ID                   uuid.UUID           `json:"id"`
	ProductID            ComponentID         `json:"product_id"`
	ProductCode          string              `json:"product_code"`
	ProductName          string              `json:"product_name"`
	Version              string              `json:"version"`
	Status               BOMStatus           `json:"status"`
	OutputQty            decimal.Decimal     `json:"output_qty"`
	OutputUOM            string              `json:"output_uom"`
	ExpectedYieldPercent decimal.NullDecimal `json:"expected_yield_percent"`
	Items                []BOMItem           `json:"items"`
	RowVersion           int64               `json:"row_version"`
}

// NewBOM creates a validated draft BOM
func NewBOM(productID ComponentID, version string, outputQty decimal.Decimal, outputUOM string, items []BOMItem) (*BOM, error) {
	bom := &BOM{
		ID:        uuid.New(),
		ProductID: productID,
		Version:   version,
		Status:    StatusDraft,
		OutputQty: outputQty,
		OutputUOM: outputUOM,
		Items:     items,
	}
	if err := bom.Validate(); err != nil {
		return nil, err
	}
	return bom, nil
}

// Validate checks the header invariants and every line
func (b *BOM) Validate() error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("%w: bom id cannot be empty", ErrValidation)
	}
	if b.ProductID == "" {
		return fmt.Errorf("%w: bom product cannot be empty", ErrValidation)
	}
	if !b.OutputQty.IsPositive() {
		return fmt.Errorf("%w: output quantity must be positive, got %s", ErrValidation, b.OutputQty)
	}
	if _, err := ParseBOMStatus(string(b.Status)); err != nil {
		return err
	}
	if b.ExpectedYieldPercent.Valid {
		y := b.ExpectedYieldPercent.Decimal
		if y.IsNegative() || y.GreaterThan(hundred) {
			return fmt.Errorf("%w: expected yield must be in [0,100], got %s", ErrInvalidYield, y)
		}
	}

	seen := make(map[uuid.UUID]bool, len(b.Items))
	for idx := range b.Items {
		item := &b.Items[idx]
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate item id %s", ErrValidation, item.ID)
		}
		seen[item.ID] = true

		if err := item.Validate(); err != nil {
			return fmt.Errorf("bom %s item %d: %w", b.ID, idx+1, err)
		}
	}
	return nil
}

// MaterialItems returns the consumed input lines in item order
func (b *BOM) MaterialItems() []BOMItem {
	return b.itemsOfKind(ItemKindMaterial)
}

// ByProducts returns the by-product lines in item order
func (b *BOM) ByProducts() []BOMItem {
	return b.itemsOfKind(ItemKindByProduct)
}

// OutputItems returns the lines marking the BOM's own output
func (b *BOM) OutputItems() []BOMItem {
	return b.itemsOfKind(ItemKindOutput)
}

func (b *BOM) itemsOfKind(kind ItemKind) []BOMItem {
	items := make([]BOMItem, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Kind == kind {
			items = append(items, item)
		}
	}
	return items
}

// FindItem returns the line with the given id
func (b *BOM) FindItem(id uuid.UUID) (*BOMItem, error) {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Clone returns a deep copy so callers can never mutate stored data
func (b *BOM) Clone() *BOM {
	clone := *b
	clone.Items = make([]BOMItem, len(b.Items))
	copy(clone.Items, b.Items)
	return &clone
}

// NextVersion increments a "major.minor" version, rolling the minor
// digit over at 9: 1.0 -> 1.1, 1.9 -> 2.0
func NextVersion(version string) (string, error) {
	if version == "" {
		return "1.0", nil
	}

	majorStr, minorStr, ok := strings.Cut(version, ".")
	if !ok {
		return "", fmt.Errorf("%w: version must look like major.minor, got %q", ErrValidation, version)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return "", fmt.Errorf("%w: invalid major version %q", ErrValidation, majorStr)
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return "", fmt.Errorf("%w: invalid minor version %q", ErrValidation, minorStr)
	}

	if minor >= 9 {
		return fmt.Sprintf("%d.0", major+1), nil
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}
