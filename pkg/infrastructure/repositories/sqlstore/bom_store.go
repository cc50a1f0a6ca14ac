package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

var bomColumns = []string{
	"b.id", "b.product_id", "c.code", "c.name", "b.version", "b.status",
	"b.output_qty", "b.output_uom", "b.expected_yield_percent", "b.row_version",
}

var itemColumns = []string{
	"i.id", "i.component_id", "c.code", "c.name", "c.type", "i.quantity", "i.uom",
	"i.scrap_percent", "i.is_output", "i.is_by_product", "i.yield_percentage", "i.sequence",
}

// SaveBOM inserts or replaces a BOM with its items in one transaction.
// Items missing from bom are deleted; the row version is bumped on update.
func (s *Store) SaveBOM(ctx context.Context, bom *entities.BOM) error {
	const op = "sqlstore.SaveBOM"

	if err := bom.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var rowVersion int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if bom.Status == entities.StatusActive {
			if err := s.ensureSingleActive(ctx, tx, bom); err != nil {
				return err
			}
		}

		current, found, err := s.rowVersion(ctx, tx, bom.ID)
		if err != nil {
			return err
		}

		if found {
			rowVersion = current + 1
			_, err = exec(ctx, tx, s.sb.
				Update("boms").
				SetMap(sq.Eq{
					"product_id":             string(bom.ProductID),
					"version":                bom.Version,
					"status":                 string(bom.Status),
					"output_qty":             bom.OutputQty,
					"output_uom":             bom.OutputUOM,
					"expected_yield_percent": bom.ExpectedYieldPercent,
					"row_version":            rowVersion,
				}).
				Where(sq.Eq{"id": bom.ID.String()}))
		} else {
			rowVersion = 1
			_, err = exec(ctx, tx, s.sb.
				Insert("boms").
				Columns("id", "product_id", "version", "status", "output_qty", "output_uom", "expected_yield_percent", "row_version").
				Values(bom.ID, string(bom.ProductID), bom.Version, string(bom.Status), bom.OutputQty, bom.OutputUOM, bom.ExpectedYieldPercent, rowVersion))
		}
		if err != nil {
			return err
		}

		return s.replaceItems(ctx, tx, bom)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	bom.RowVersion = rowVersion
	return nil
}

func (s *Store) ensureSingleActive(ctx context.Context, tx *sql.Tx, bom *entities.BOM) error {
	row, err := queryRow(ctx, tx, s.sb.
		Select("id").
		From("boms").
		Where(sq.Eq{"product_id": string(bom.ProductID), "status": string(entities.StatusActive)}).
		Where(sq.NotEq{"id": bom.ID.String()}))
	if err != nil {
		return err
	}

	var other uuid.UUID
	switch err := row.Scan(&other); {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: product %s already has active bom %s", entities.ErrValidation, bom.ProductID, other)
	}
}

func (s *Store) rowVersion(ctx context.Context, q querier, id uuid.UUID) (int64, bool, error) {
	row, err := queryRow(ctx, q, s.sb.Select("row_version").From("boms").Where(sq.Eq{"id": id.String()}))
	if err != nil {
		return 0, false, err
	}

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return version, true, nil
}

func (s *Store) replaceItems(ctx context.Context, tx *sql.Tx, bom *entities.BOM) error {
	keep := make([]string, 0, len(bom.Items))
	for position, item := range bom.Items {
		keep = append(keep, item.ID.String())

		_, err := exec(ctx, tx, s.sb.
			Insert("bom_items").
			Columns("id", "bom_id", "component_id", "quantity", "uom", "scrap_percent",
				"is_output", "is_by_product", "yield_percentage", "sequence", "position").
			Values(item.ID, bom.ID, string(item.Component.ID), item.Quantity, item.UOM, item.ScrapPercent,
				item.IsOutput(), item.IsByProduct(), item.YieldPercentage, item.Sequence, position).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				component_id = excluded.component_id,
				quantity = excluded.quantity,
				uom = excluded.uom,
				scrap_percent = excluded.scrap_percent,
				is_output = excluded.is_output,
				is_by_product = excluded.is_by_product,
				yield_percentage = excluded.yield_percentage,
				sequence = excluded.sequence,
				position = excluded.position`))
		if err != nil {
			return err
		}
	}

	del := s.sb.Delete("bom_items").Where(sq.Eq{"bom_id": bom.ID.String()})
	if len(keep) > 0 {
		del = del.Where(sq.NotEq{"id": keep})
	}
	_, err := exec(ctx, tx, del)
	return err
}

// GetBOM returns the BOM with its items in sequence order
func (s *Store) GetBOM(ctx context.Context, id uuid.UUID) (*entities.BOM, error) {
	const op = "sqlstore.GetBOM"

	bom, err := s.getBOM(ctx, s.db, sq.Eq{"b.id": id.String()})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: %s", op, entities.ErrBOMNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bom, nil
}

// GetActiveBOM returns the active BOM producing productID
func (s *Store) GetActiveBOM(ctx context.Context, productID entities.ComponentID) (*entities.BOM, error) {
	const op = "sqlstore.GetActiveBOM"

	bom, err := s.getBOM(ctx, s.db, sq.Eq{
		"b.product_id": string(productID),
		"b.status":     string(entities.StatusActive),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: %s", op, entities.ErrNoActiveBOM, productID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bom, nil
}

// ListBOMs returns every BOM ordered by product and version
func (s *Store) ListBOMs(ctx context.Context) ([]*entities.BOM, error) {
	const op = "sqlstore.ListBOMs"

	rows, err := query(ctx, s.db, s.bomSelect().OrderBy("b.product_id", "b.version"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var boms []*entities.BOM
	for rows.Next() {
		bom, err := scanBOM(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		boms = append(boms, bom)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, bom := range boms {
		if bom.Items, err = s.loadItems(ctx, s.db, bom.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return boms, nil
}

func (s *Store) bomSelect() sq.SelectBuilder {
	return s.sb.
		Select(bomColumns...).
		From("boms b").
		Join("components c ON c.id = b.product_id")
}

func (s *Store) getBOM(ctx context.Context, q querier, where sq.Eq) (*entities.BOM, error) {
	row, err := queryRow(ctx, q, s.bomSelect().Where(where))
	if err != nil {
		return nil, err
	}

	bom, err := scanBOM(row)
	if err != nil {
		return nil, err
	}
	if bom.Items, err = s.loadItems(ctx, q, bom.ID); err != nil {
		return nil, err
	}
	return bom, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBOM(row scanner) (*entities.BOM, error) {
	var (
		bom       entities.BOM
		productID string
		status    string
	)
	err := row.Scan(
		&bom.ID,
		&productID,
		&bom.ProductCode,
		&bom.ProductName,
		&bom.Version,
		&status,
		&bom.OutputQty,
		&bom.OutputUOM,
		&bom.ExpectedYieldPercent,
		&bom.RowVersion,
	)
	if err != nil {
		return nil, err
	}

	bom.ProductID = entities.ComponentID(productID)
	if bom.Status, err = entities.ParseBOMStatus(status); err != nil {
		return nil, err
	}
	return &bom, nil
}

func (s *Store) loadItems(ctx context.Context, q querier, bomID uuid.UUID) ([]entities.BOMItem, error) {
	rows, err := query(ctx, q, s.sb.
		Select(itemColumns...).
		From("bom_items i").
		Join("components c ON c.id = i.component_id").
		Where(sq.Eq{"i.bom_id": bomID.String()}).
		OrderBy("i.sequence", "i.position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entities.BOMItem, 0)
	for rows.Next() {
		var (
			spec          entities.BOMItemSpec
			componentID   string
			componentType string
		)
		if err := rows.Scan(
			&spec.ID,
			&componentID,
			&spec.Component.Code,
			&spec.Component.Name,
			&componentType,
			&spec.Quantity,
			&spec.UOM,
			&spec.ScrapPercent,
			&spec.IsOutput,
			&spec.IsByProduct,
			&spec.YieldPercentage,
			&spec.Sequence,
		); err != nil {
			return nil, err
		}

		spec.Component.ID = entities.ComponentID(componentID)
		if spec.Component.Type, err = entities.ParseComponentType(componentType); err != nil {
			return nil, err
		}

		item, err := entities.NewBOMItem(spec)
		if err != nil {
			return nil, fmt.Errorf("bom %s: %w", bomID, err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ApplyScale writes new item quantities and the new output quantity in one
// transaction guarded by the row version
func (s *Store) ApplyScale(ctx context.Context, commit entities.ScaleCommit) error {
	const op = "sqlstore.ApplyScale"

	if !commit.NewOutputQty.IsPositive() {
		return fmt.Errorf("%s: %w: output quantity must be positive, got %s", op, entities.ErrValidation, commit.NewOutputQty)
	}
	for id, qty := range commit.Items {
		if qty.IsNegative() {
			return fmt.Errorf("%s: %w: item %s quantity cannot be negative", op, entities.ErrValidation, id)
		}
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, found, err := s.rowVersion(ctx, tx, commit.BOMID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", entities.ErrBOMNotFound, commit.BOMID)
		}
		if current != commit.ExpectedRowVersion {
			return fmt.Errorf("%w: bom %s is at version %d, expected %d",
				entities.ErrConcurrentModification, commit.BOMID, current, commit.ExpectedRowVersion)
		}

		for itemID, qty := range commit.Items {
			res, err := exec(ctx, tx, s.sb.
				Update("bom_items").
				Set("quantity", qty).
				Where(sq.Eq{"id": itemID.String(), "bom_id": commit.BOMID.String()}))
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return fmt.Errorf("%w: %s", entities.ErrItemNotFound, itemID)
			}
		}

		res, err := exec(ctx, tx, s.sb.
			Update("boms").
			Set("output_qty", commit.NewOutputQty).
			Set("row_version", sq.Expr("row_version + 1")).
			Where(sq.Eq{"id": commit.BOMID.String(), "row_version": commit.ExpectedRowVersion}))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%w: bom %s changed during commit", entities.ErrConcurrentModification, commit.BOMID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RecordByProductActual stores an actual by-product output. The item must
// be a by-product line of the BOM.
func (s *Store) RecordByProductActual(ctx context.Context, record entities.ByProductRecord) error {
	const op = "sqlstore.RecordByProductActual"

	if record.ActualQuantity.IsNegative() {
		return fmt.Errorf("%s: %w: actual quantity cannot be negative", op, entities.ErrInvalidQuantity)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, found, err := s.rowVersion(ctx, tx, record.BOMID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: %s", entities.ErrBOMNotFound, record.BOMID)
		}

		row, err := queryRow(ctx, tx, s.sb.
			Select("is_by_product").
			From("bom_items").
			Where(sq.Eq{"id": record.ItemID.String(), "bom_id": record.BOMID.String()}))
		if err != nil {
			return err
		}
		var isByProduct bool
		if err := row.Scan(&isByProduct); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", entities.ErrItemNotFound, record.ItemID)
			}
			return err
		}
		if !isByProduct {
			return fmt.Errorf("%w: item %s is not a by-product", entities.ErrValidation, record.ItemID)
		}

		_, err = exec(ctx, tx, s.sb.
			Insert("byproduct_records").
			Columns("id", "bom_id", "item_id", "batch_number", "expected_quantity", "actual_quantity", "uom", "recorded_at").
			Values(record.ID, record.BOMID, record.ItemID, record.BatchNumber,
				record.ExpectedQuantity, record.ActualQuantity, record.UOM, record.RecordedAt.UTC()))
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListByProductRecords returns the recorded actuals of a BOM, oldest first
func (s *Store) ListByProductRecords(ctx context.Context, bomID uuid.UUID) ([]entities.ByProductRecord, error) {
	const op = "sqlstore.ListByProductRecords"

	if _, found, err := s.rowVersion(ctx, s.db, bomID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	} else if !found {
		return nil, fmt.Errorf("%s: %w: %s", op, entities.ErrBOMNotFound, bomID)
	}

	rows, err := query(ctx, s.db, s.sb.
		Select("id", "bom_id", "item_id", "batch_number", "expected_quantity", "actual_quantity", "uom", "recorded_at").
		From("byproduct_records").
		Where(sq.Eq{"bom_id": bomID.String()}).
		OrderBy("recorded_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records := make([]entities.ByProductRecord, 0)
	for rows.Next() {
		var r entities.ByProductRecord
		if err := rows.Scan(&r.ID, &r.BOMID, &r.ItemID, &r.BatchNumber,
			&r.ExpectedQuantity, &r.ActualQuantity, &r.UOM, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.RecordedAt = r.RecordedAt.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// UpdateExpectedYield sets the configured yield of a BOM
func (s *Store) UpdateExpectedYield(ctx context.Context, bomID uuid.UUID, pct decimal.Decimal) error {
	const op = "sqlstore.UpdateExpectedYield"

	res, err := exec(ctx, s.db, s.sb.
		Update("boms").
		Set("expected_yield_percent", pct).
		Set("row_version", sq.Expr("row_version + 1")).
		Where(sq.Eq{"id": bomID.String()}))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w: %s", op, entities.ErrBOMNotFound, bomID)
	}
	return nil
}
