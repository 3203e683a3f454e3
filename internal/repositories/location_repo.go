package repositories

import (
	"context"
	"errors"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Location, error)
}

type locationRepo struct {
	db Database
}

func NewLocationRepo(db Database) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, company_id, name, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.CompanyID, location.Name,
		location.Address, location.Phone, location.IsActive)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Location, error) {
	location := &models.Location{}
	query := `
		SELECT id, company_id, name, address, phone, is_active, created_at, updated_at
		FROM locations
		WHERE company_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, companyID, id).Scan(&location.ID, &location.CompanyID,
		&location.Name, &location.Address, &location.Phone, &location.IsActive,
		&location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("location")
		}
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) Update(ctx context.Context, location *models.Location) error {
	query := `
		UPDATE locations
		SET name = $1, address = $2, phone = $3, is_active = $4, updated_at = NOW()
		WHERE company_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, location.Name, location.Address, location.Phone,
		location.IsActive, location.CompanyID, location.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("location")
	}
	return nil
}

func (r *locationRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM locations WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFound("location")
	}
	return nil
}

func (r *locationRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Location, error) {
	query := `
		SELECT id, company_id, name, address, phone, is_active, created_at, updated_at
		FROM locations
		WHERE company_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(&location.ID, &location.CompanyID, &location.Name, &location.Address,
			&location.Phone, &location.IsActive, &location.CreatedAt, &location.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}
