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

type PurchaseOrderRepository interface {
	WithTx(tx pgx.Tx) PurchaseOrderRepository
	Create(ctx context.Context, po *models.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error)
	ExistsPONumber(ctx context.Context, companyID uuid.UUID, poNumber string) (bool, error)
	Update(ctx context.Context, po *models.PurchaseOrder) error
	ReplaceItems(ctx context.Context, po *models.PurchaseOrder) error
	UpdateItemReceipt(ctx context.Context, itemID uuid.UUID, quantityReceived int, subtotal float64) error
	UpdateStatus(ctx context.Context, po *models.PurchaseOrder) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter *models.PurchaseOrderFilter) ([]*models.PurchaseOrder, error)
}

type purchaseOrderRepo struct {
	db Database
}

func NewPurchaseOrderRepo(db Database) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) WithTx(tx pgx.Tx) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: tx}
}

const purchaseOrderColumns = `id, company_id, po_number, supplier, status, order_date,
		expected_delivery_date, received_date, total_amount, notes, created_at, updated_at`

func scanPurchaseOrder(row pgx.Row) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{}
	err := row.Scan(&po.ID, &po.CompanyID, &po.PONumber, &po.Supplier, &po.Status, &po.OrderDate,
		&po.ExpectedDeliveryDate, &po.ReceivedDate, &po.TotalAmount, &po.Notes, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("purchase order")
		}
		return nil, err
	}
	return po, nil
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, company_id, po_number, supplier, status, order_date,
			expected_delivery_date, received_date, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, po.ID, po.CompanyID, po.PONumber, po.Supplier, po.Status,
		po.OrderDate, po.ExpectedDeliveryDate, po.ReceivedDate, po.TotalAmount, po.Notes)
	if err != nil {
		return err
	}
	return r.insertItems(ctx, po)
}

func (r *purchaseOrderRepo) insertItems(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_order_items (id, purchase_order_id, inventory_item_id,
			quantity_ordered, quantity_received, unit_cost, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, item := range po.Items {
		if _, err := r.db.Exec(ctx, query, item.ID, po.ID, item.InventoryItemID,
			item.QuantityOrdered, item.QuantityReceived, item.UnitCost, item.Subtotal); err != nil {
			return err
		}
	}
	return nil
}

func (r *purchaseOrderRepo) getByID(ctx context.Context, companyID, id uuid.UUID, forUpdate bool) (*models.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseOrderColumns + `
		FROM purchase_orders
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	po, err := scanPurchaseOrder(r.db.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, err
	}

	itemsQuery := `
		SELECT id, purchase_order_id, inventory_item_id, quantity_ordered, quantity_received, unit_cost, subtotal
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, itemsQuery, po.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item := &models.PurchaseOrderItem{}
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.InventoryItemID,
			&item.QuantityOrdered, &item.QuantityReceived, &item.UnitCost, &item.Subtotal); err != nil {
			return nil, err
		}
		po.Items = append(po.Items, item)
	}
	return po, rows.Err()
}

func (r *purchaseOrderRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.getByID(ctx, companyID, id, false)
}

func (r *purchaseOrderRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.getByID(ctx, companyID, id, true)
}

func (r *purchaseOrderRepo) ExistsPONumber(ctx context.Context, companyID uuid.UUID, poNumber string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchase_orders
			WHERE company_id = $1 AND po_number = $2 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, companyID, poNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *purchaseOrderRepo) Update(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET supplier = $1, order_date = $2, expected_delivery_date = $3, total_amount = $4, notes = $5,
			updated_at = NOW()
		WHERE company_id = $6 AND id = $7 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, po.Supplier, po.OrderDate, po.ExpectedDeliveryDate,
		po.TotalAmount, po.Notes, po.CompanyID, po.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("purchase order")
	}
	return nil
}

// ReplaceItems swaps the entire item set, permitted only while the order is
// still a draft; the service enforces the status gate.
func (r *purchaseOrderRepo) ReplaceItems(ctx context.Context, po *models.PurchaseOrder) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, po.ID); err != nil {
		return err
	}
	return r.insertItems(ctx, po)
}

func (r *purchaseOrderRepo) UpdateItemReceipt(ctx context.Context, itemID uuid.UUID, quantityReceived int, subtotal float64) error {
	query := `
		UPDATE purchase_order_items
		SET quantity_received = $1, subtotal = $2
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, quantityReceived, subtotal, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("purchase order item")
	}
	return nil
}

func (r *purchaseOrderRepo) UpdateStatus(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET status = $1, received_date = $2, total_amount = $3, updated_at = NOW()
		WHERE company_id = $4 AND id = $5 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, po.Status, po.ReceivedDate, po.TotalAmount, po.CompanyID, po.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("purchase order")
	}
	return nil
}

func (r *purchaseOrderRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE purchase_orders
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("purchase order")
	}
	return nil
}

func (r *purchaseOrderRepo) List(ctx context.Context, companyID uuid.UUID, filter *models.PurchaseOrderFilter) ([]*models.PurchaseOrder, error) {
	if filter == nil {
		filter = &models.PurchaseOrderFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT ` + purchaseOrderColumns + `
		FROM purchase_orders
		WHERE company_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{companyID}
	argCount := 1

	if filter.Status != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, argCount)
		args = append(args, *filter.Status)
	}
	if filter.Supplier != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND supplier ILIKE $%d`, argCount)
		args = append(args, "%"+*filter.Supplier+"%")
	}

	queryBase += ` ORDER BY order_date DESC`
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

	var orders []*models.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
