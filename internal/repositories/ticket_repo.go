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

type TicketRepository interface {
	WithTx(tx pgx.Tx) TicketRepository
	Create(ctx context.Context, ticket *models.RepairTicket) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.RepairTicket, error)
	Update(ctx context.Context, ticket *models.RepairTicket) error
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.RepairTicket, error)
	AddPart(ctx context.Context, part *models.TicketPart) error
	ListParts(ctx context.Context, ticketID uuid.UUID) ([]*models.TicketPart, error)
}

type ticketRepo struct {
	db Database
}

func NewTicketRepo(db Database) TicketRepository {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) WithTx(tx pgx.Tx) TicketRepository {
	return &ticketRepo{db: tx}
}

const ticketColumns = `id, company_id, location_id, customer_id, assigned_to, ticket_number,
		device_type, device_brand, device_model, serial_number, issue_description, status, labor_cost,
		created_at, updated_at`

func scanTicket(row pgx.Row) (*models.RepairTicket, error) {
	t := &models.RepairTicket{}
	err := row.Scan(&t.ID, &t.CompanyID, &t.LocationID, &t.CustomerID, &t.AssignedTo, &t.TicketNumber,
		&t.DeviceType, &t.DeviceBrand, &t.DeviceModel, &t.SerialNumber, &t.IssueDescription,
		&t.Status, &t.LaborCost, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("repair ticket")
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepo) Create(ctx context.Context, ticket *models.RepairTicket) error {
	query := `
		INSERT INTO repair_tickets (id, company_id, location_id, customer_id, assigned_to, ticket_number,
			device_type, device_brand, device_model, serial_number, issue_description, status, labor_cost,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, ticket.ID, ticket.CompanyID, ticket.LocationID, ticket.CustomerID,
		ticket.AssignedTo, ticket.TicketNumber, ticket.DeviceType, ticket.DeviceBrand, ticket.DeviceModel,
		ticket.SerialNumber, ticket.IssueDescription, ticket.Status, ticket.LaborCost)
	return err
}

func (r *ticketRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.RepairTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM repair_tickets
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, err
	}
	ticket.Parts, err = r.ListParts(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepo) Update(ctx context.Context, ticket *models.RepairTicket) error {
	query := `
		UPDATE repair_tickets
		SET assigned_to = $1, device_type = $2, device_brand = $3, device_model = $4, serial_number = $5,
			issue_description = $6, labor_cost = $7, updated_at = NOW()
		WHERE company_id = $8 AND id = $9 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, ticket.AssignedTo, ticket.DeviceType, ticket.DeviceBrand,
		ticket.DeviceModel, ticket.SerialNumber, ticket.IssueDescription, ticket.LaborCost,
		ticket.CompanyID, ticket.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("repair ticket")
	}
	return nil
}

func (r *ticketRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	query := `
		UPDATE repair_tickets
		SET status = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, status, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("repair ticket")
	}
	return nil
}

func (r *ticketRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE repair_tickets
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("repair ticket")
	}
	return nil
}

func (r *ticketRepo) List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.RepairTicket, error) {
	queryBase := `
		SELECT ` + ticketColumns + `
		FROM repair_tickets
		WHERE company_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{companyID}
	argCount := 1
	if status != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, argCount)
		args = append(args, *status)
	}
	queryBase += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argCount+1, argCount+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.RepairTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepo) AddPart(ctx context.Context, part *models.TicketPart) error {
	query := `
		INSERT INTO ticket_parts (id, ticket_id, inventory_item_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, part.ID, part.TicketID, part.InventoryItemID, part.Quantity, part.UnitPrice)
	return err
}

func (r *ticketRepo) ListParts(ctx context.Context, ticketID uuid.UUID) ([]*models.TicketPart, error) {
	query := `
		SELECT id, ticket_id, inventory_item_id, quantity, unit_price, created_at
		FROM ticket_parts
		WHERE ticket_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*models.TicketPart
	for rows.Next() {
		part := &models.TicketPart{}
		if err := rows.Scan(&part.ID, &part.TicketID, &part.InventoryItemID, &part.Quantity,
			&part.UnitPrice, &part.CreatedAt); err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}
