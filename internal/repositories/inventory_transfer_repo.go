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

type InventoryTransferRepository interface {
	WithTx(tx pgx.Tx) InventoryTransferRepository
	Create(ctx context.Context, transfer *models.InventoryTransfer) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error)
	GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error)
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error
	List(ctx context.Context, companyID uuid.UUID, filter *models.TransferFilter) ([]*models.InventoryTransfer, error)
}

type inventoryTransferRepo struct {
	db Database
}

func NewInventoryTransferRepo(db Database) InventoryTransferRepository {
	return &inventoryTransferRepo{db: db}
}

func (r *inventoryTransferRepo) WithTx(tx pgx.Tx) InventoryTransferRepository {
	return &inventoryTransferRepo{db: tx}
}

const transferColumns = `id, company_id, from_location_id, to_location_id, inventory_item_id,
		quantity, status, notes, transferred_by, created_at, updated_at`

func scanTransfer(row pgx.Row) (*models.InventoryTransfer, error) {
	t := &models.InventoryTransfer{}
	err := row.Scan(&t.ID, &t.CompanyID, &t.FromLocationID, &t.ToLocationID, &t.InventoryItemID,
		&t.Quantity, &t.Status, &t.Notes, &t.TransferredBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("inventory transfer")
		}
		return nil, err
	}
	return t, nil
}

func (r *inventoryTransferRepo) Create(ctx context.Context, transfer *models.InventoryTransfer) error {
	query := `
		INSERT INTO inventory_transfers (id, company_id, from_location_id, to_location_id, inventory_item_id,
			quantity, status, notes, transferred_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, transfer.ID, transfer.CompanyID, transfer.FromLocationID,
		transfer.ToLocationID, transfer.InventoryItemID, transfer.Quantity, transfer.Status,
		transfer.Notes, transfer.TransferredBy)
	return err
}

func (r *inventoryTransferRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM inventory_transfers
		WHERE company_id = $1 AND id = $2
	`
	return scanTransfer(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *inventoryTransferRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM inventory_transfers
		WHERE company_id = $1 AND id = $2
		FOR UPDATE
	`
	return scanTransfer(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *inventoryTransferRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	query := `
		UPDATE inventory_transfers
		SET status = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("inventory transfer")
	}
	return nil
}

func (r *inventoryTransferRepo) List(ctx context.Context, companyID uuid.UUID, filter *models.TransferFilter) ([]*models.InventoryTransfer, error) {
	if filter == nil {
		filter = &models.TransferFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT ` + transferColumns + `
		FROM inventory_transfers
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argCount := 1

	if filter.Status != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, argCount)
		args = append(args, *filter.Status)
	}
	if filter.FromLocationID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND from_location_id = $%d`, argCount)
		args = append(args, *filter.FromLocationID)
	}
	if filter.ToLocationID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND to_location_id = $%d`, argCount)
		args = append(args, *filter.ToLocationID)
	}

	queryBase += ` ORDER BY created_at DESC`
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

	var transfers []*models.InventoryTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
