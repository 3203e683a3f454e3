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

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	Search(ctx context.Context, companyID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db Database
}

func NewCustomerRepo(db Database) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, company_id, first_name, last_name, email, phone, address, notes, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(&customer.ID, &customer.CompanyID, &customer.FirstName, &customer.LastName,
		&customer.Email, &customer.Phone, &customer.Address, &customer.Notes,
		&customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("customer")
		}
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, company_id, first_name, last_name, email, phone, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.CompanyID, customer.FirstName,
		customer.LastName, customer.Email, customer.Phone, customer.Address, customer.Notes)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	return scanCustomer(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE company_id = $7 AND id = $8 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.Notes, customer.CompanyID, customer.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("customer")
	}
	return nil
}

func (r *customerRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("customer")
	}
	return nil
}

func (r *customerRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func (r *customerRepo) Search(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE company_id = $1 AND deleted_at IS NULL
			AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2 OR phone ILIKE $2)
		ORDER BY last_name, first_name
		LIMIT $3 OFFSET $4
	`, customerColumns)
	rows, err := r.db.Query(ctx, query, companyID, "%"+search+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func collectCustomers(rows pgx.Rows) ([]*models.Customer, error) {
	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
