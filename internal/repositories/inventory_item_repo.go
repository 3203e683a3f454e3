package repositories

import (
	"context"
	"errors"
	"fmt"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryItemRepository is the persistence boundary for the stock ledger.
// Quantity is only ever changed through AdjustQuantity, which applies a
// relative update so the store serializes concurrent writers on the row.
type InventoryItemRepository interface {
	WithTx(tx pgx.Tx) InventoryItemRepository
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error)
	GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error)
	ExistsActiveSKU(ctx context.Context, companyID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	AdjustQuantity(ctx context.Context, companyID, id uuid.UUID, delta int) (int, error)
	UpdateCost(ctx context.Context, companyID, id uuid.UUID, costPrice float64) error
	UpdateLocation(ctx context.Context, companyID, id, locationID uuid.UUID) error
	SyncPricing(ctx context.Context, companyID uuid.UUID, sku string, sellingPrice, costPrice float64) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	Search(ctx context.Context, companyID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryItem, error)
	LowStock(ctx context.Context, companyID uuid.UUID) ([]*models.InventoryItem, error)
}

type inventoryItemRepo struct {
	db Database
}

func NewInventoryItemRepo(db Database) InventoryItemRepository {
	return &inventoryItemRepo{db: db}
}

func (r *inventoryItemRepo) WithTx(tx pgx.Tx) InventoryItemRepository {
	return &inventoryItemRepo{db: tx}
}

const inventoryItemColumns = `id, company_id, location_id, sku, name, category, brand, model, description,
		cost_price, selling_price, quantity, reorder_level, track_quantity, is_active, created_at, updated_at`

func scanInventoryItem(row pgx.Row) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(&item.ID, &item.CompanyID, &item.LocationID, &item.SKU, &item.Name,
		&item.Category, &item.Brand, &item.Model, &item.Description,
		&item.CostPrice, &item.SellingPrice, &item.Quantity, &item.ReorderLevel,
		&item.TrackQuantity, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("inventory item")
		}
		return nil, err
	}
	return item, nil
}

func (r *inventoryItemRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, company_id, location_id, sku, name, category, brand, model, description,
			cost_price, selling_price, quantity, reorder_level, track_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.CompanyID, item.LocationID, item.SKU, item.Name,
		item.Category, item.Brand, item.Model, item.Description,
		item.CostPrice, item.SellingPrice, item.Quantity, item.ReorderLevel,
		item.TrackQuantity, item.IsActive)
	return err
}

func (r *inventoryItemRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	return scanInventoryItem(r.db.QueryRow(ctx, query, companyID, id))
}

// GetByIDForUpdate reads the row with a row lock so a surrounding
// transaction serializes concurrent mutators of the same item.
func (r *inventoryItemRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
		FOR UPDATE
	`
	return scanInventoryItem(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *inventoryItemRepo) ExistsActiveSKU(ctx context.Context, companyID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_items
			WHERE company_id = $1 AND sku = $2 AND deleted_at IS NULL AND ($3::uuid IS NULL OR id <> $3)
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, companyID, sku, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update writes every mutable field except quantity, which is owned by
// AdjustQuantity.
func (r *inventoryItemRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET location_id = $1, sku = $2, name = $3, category = $4, brand = $5, model = $6, description = $7,
			cost_price = $8, selling_price = $9, reorder_level = $10, track_quantity = $11, is_active = $12,
			updated_at = NOW()
		WHERE company_id = $13 AND id = $14 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, item.LocationID, item.SKU, item.Name, item.Category, item.Brand,
		item.Model, item.Description, item.CostPrice, item.SellingPrice, item.ReorderLevel,
		item.TrackQuantity, item.IsActive, item.CompanyID, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("inventory item")
	}
	return nil
}

// AdjustQuantity applies a relative delta and returns the new quantity.
// Negative results are allowed: backorder is a valid terminal state.
func (r *inventoryItemRepo) AdjustQuantity(ctx context.Context, companyID, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL
		RETURNING quantity
	`
	var quantity int
	err := r.db.QueryRow(ctx, query, delta, companyID, id).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.NewNotFound("inventory item")
		}
		return 0, err
	}
	return quantity, nil
}

func (r *inventoryItemRepo) UpdateCost(ctx context.Context, companyID, id uuid.UUID, costPrice float64) error {
	query := `
		UPDATE inventory_items
		SET cost_price = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, costPrice, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("inventory item")
	}
	return nil
}

func (r *inventoryItemRepo) UpdateLocation(ctx context.Context, companyID, id, locationID uuid.UUID) error {
	query := `
		UPDATE inventory_items
		SET location_id = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, locationID, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("inventory item")
	}
	return nil
}

// SyncPricing propagates prices to every non-deleted row sharing the SKU.
// Quantity is excluded: each location's row owns its own quantity.
func (r *inventoryItemRepo) SyncPricing(ctx context.Context, companyID uuid.UUID, sku string, sellingPrice, costPrice float64) error {
	query := `
		UPDATE inventory_items
		SET selling_price = $1, cost_price = $2, updated_at = NOW()
		WHERE company_id = $3 AND sku = $4 AND deleted_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, sellingPrice, costPrice, companyID, sku)
	return err
}

func (r *inventoryItemRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE inventory_items
		SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("inventory item")
	}
	return nil
}

func (r *inventoryItemRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInventoryItems(rows)
}

func (r *inventoryItemRepo) Search(ctx context.Context, companyID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryItem, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}

	queryBase := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{companyID}
	argCount := 1

	if filter.Query != "" {
		argCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR brand ILIKE $%d)`, argCount, argCount, argCount)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.LocationID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND location_id = $%d`, argCount)
		args = append(args, *filter.LocationID)
	}
	if filter.Category != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND category = $%d`, argCount)
		args = append(args, *filter.Category)
	}
	if filter.MinQuantity != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND quantity >= $%d`, argCount)
		args = append(args, *filter.MinQuantity)
	}
	if filter.MaxQuantity != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND quantity <= $%d`, argCount)
		args = append(args, *filter.MaxQuantity)
	}
	if filter.LowStock {
		queryBase += ` AND track_quantity AND quantity <= reorder_level`
	}

	sortField := "name"
	switch filter.SortBy {
	case "quantity":
		sortField = "quantity"
	case "sku":
		sortField = "sku"
	case "updated_at":
		sortField = "updated_at"
	}
	sortOrder := "ASC"
	if filter.SortOrder == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	argCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, argCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		argCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInventoryItems(rows)
}

func (r *inventoryItemRepo) LowStock(ctx context.Context, companyID uuid.UUID) ([]*models.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND deleted_at IS NULL AND track_quantity AND quantity <= reorder_level
		ORDER BY quantity ASC
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInventoryItems(rows)
}

func collectInventoryItems(rows pgx.Rows) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
