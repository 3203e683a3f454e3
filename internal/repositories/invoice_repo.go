package repositories

import (
	"context"
	"errors"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string, paidAt *time.Time) error
	SetPDFObjectKey(ctx context.Context, companyID, id uuid.UUID, objectKey string) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.Invoice, error)
	MarkOverdue(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error)
	ExistsInvoiceNumber(ctx context.Context, companyID uuid.UUID, invoiceNumber string) (bool, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, company_id, customer_id, ticket_id, invoice_number, status, total_amount,
		due_date, paid_at, pdf_object_key, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.TicketID, &inv.InvoiceNumber,
		&inv.Status, &inv.TotalAmount, &inv.DueDate, &inv.PaidAt, &inv.PDFObjectKey,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("invoice")
		}
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, company_id, customer_id, ticket_id, invoice_number, status, total_amount,
			due_date, paid_at, pdf_object_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, invoice.ID, invoice.CompanyID, invoice.CustomerID, invoice.TicketID,
		invoice.InvoiceNumber, invoice.Status, invoice.TotalAmount, invoice.DueDate, invoice.PaidAt,
		invoice.PDFObjectKey)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	return scanInvoice(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET total_amount = $1, due_date = $2, updated_at = NOW()
		WHERE company_id = $3 AND id = $4 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, invoice.TotalAmount, invoice.DueDate, invoice.CompanyID, invoice.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("invoice")
	}
	return nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string, paidAt *time.Time) error {
	query := `
		UPDATE invoices
		SET status = $1, paid_at = $2, updated_at = NOW()
		WHERE company_id = $3 AND id = $4 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, status, paidAt, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("invoice")
	}
	return nil
}

func (r *invoiceRepo) SetPDFObjectKey(ctx context.Context, companyID, id uuid.UUID, objectKey string) error {
	query := `
		UPDATE invoices
		SET pdf_object_key = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, objectKey, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("invoice")
	}
	return nil
}

func (r *invoiceRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("invoice")
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1 AND deleted_at IS NULL AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// MarkOverdue flips unpaid invoices past their due date to overdue.
func (r *invoiceRepo) MarkOverdue(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error) {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE company_id = $2 AND deleted_at IS NULL AND status = $3 AND due_date IS NOT NULL AND due_date < $4
	`
	tag, err := r.db.Exec(ctx, query, models.InvoiceStatusOverdue, companyID, models.InvoiceStatusUnpaid, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *invoiceRepo) ExistsInvoiceNumber(ctx context.Context, companyID uuid.UUID, invoiceNumber string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE company_id = $1 AND invoice_number = $2 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, companyID, invoiceNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
