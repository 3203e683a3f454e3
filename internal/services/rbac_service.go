package services

import (
	"context"

	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
)

// Permission names used by the route guards.
const (
	PermInventoryRead  = "inventory:read"
	PermInventoryWrite = "inventory:write"
	PermPurchasing     = "purchasing:manage"
	PermTransfers      = "transfers:manage"
	PermTickets        = "tickets:manage"
	PermInvoices       = "invoices:manage"
	PermUsersManage    = "users:manage"
)

type RBACService interface {
	UserHasPermission(ctx context.Context, companyID, userID uuid.UUID, permission string) (bool, error)
	GetUserPermissions(ctx context.Context, companyID, userID uuid.UUID) ([]string, error)
	SetupDefaultRoles(ctx context.Context, companyID uuid.UUID) error
	AssignRole(ctx context.Context, companyID, userID uuid.UUID, roleName string) error
}

type rbacService struct {
	roleRepo repositories.RoleRepository
}

func NewRBACService(roleRepo repositories.RoleRepository) RBACService {
	return &rbacService{roleRepo: roleRepo}
}

func (s *rbacService) UserHasPermission(ctx context.Context, companyID, userID uuid.UUID, permission string) (bool, error) {
	permissions, err := s.roleRepo.GetUserPermissions(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *rbacService) GetUserPermissions(ctx context.Context, companyID, userID uuid.UUID) ([]string, error) {
	return s.roleRepo.GetUserPermissions(ctx, companyID, userID)
}

// SetupDefaultRoles seeds admin, manager and technician for a new company.
// The underlying inserts are idempotent, so re-running is safe.
func (s *rbacService) SetupDefaultRoles(ctx context.Context, companyID uuid.UUID) error {
	defaults := map[string][]string{
		"admin": {
			PermInventoryRead, PermInventoryWrite, PermPurchasing,
			PermTransfers, PermTickets, PermInvoices, PermUsersManage,
		},
		"manager": {
			PermInventoryRead, PermInventoryWrite, PermPurchasing,
			PermTransfers, PermTickets, PermInvoices,
		},
		"technician": {
			PermInventoryRead, PermTickets,
		},
	}

	for name, perms := range defaults {
		role := &models.Role{
			ID:        uuid.New(),
			CompanyID: companyID,
			Name:      name,
		}
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return err
		}
		existing, err := s.roleRepo.GetByName(ctx, companyID, name)
		if err != nil {
			return err
		}
		for _, perm := range perms {
			if err := s.roleRepo.GrantPermission(ctx, existing.ID, perm); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *rbacService) AssignRole(ctx context.Context, companyID, userID uuid.UUID, roleName string) error {
	role, err := s.roleRepo.GetByName(ctx, companyID, roleName)
	if err != nil {
		return err
	}
	return s.roleRepo.AssignToUser(ctx, userID, role.ID)
}
