package repositories

import (
	"context"
	"errors"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByName(ctx context.Context, companyID uuid.UUID, name string) (*models.Role, error)
	AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error
	GrantPermission(ctx context.Context, roleID uuid.UUID, permission string) error
	GetUserPermissions(ctx context.Context, companyID, userID uuid.UUID) ([]string, error)
}

type roleRepo struct {
	db Database
}

func NewRoleRepo(db Database) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, company_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (company_id, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.CompanyID, role.Name, role.Description)
	return err
}

func (r *roleRepo) GetByName(ctx context.Context, companyID uuid.UUID, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, company_id, name, description, created_at, updated_at
		FROM roles
		WHERE company_id = $1 AND name = $2
	`
	err := r.db.QueryRow(ctx, query, companyID, name).Scan(&role.ID, &role.CompanyID, &role.Name,
		&role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFound("role")
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, roleID)
	return err
}

func (r *roleRepo) GrantPermission(ctx context.Context, roleID uuid.UUID, permission string) error {
	query := `
		INSERT INTO role_permissions (role_id, permission, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (role_id, permission) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, roleID, permission)
	return err
}

func (r *roleRepo) GetUserPermissions(ctx context.Context, companyID, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT rp.permission
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id AND ro.company_id = $1
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		WHERE ur.user_id = $2
	`
	rows, err := r.db.Query(ctx, query, companyID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permission string
		if err := rows.Scan(&permission); err != nil {
			return nil, err
		}
		permissions = append(permissions, permission)
	}
	return permissions, rows.Err()
}
